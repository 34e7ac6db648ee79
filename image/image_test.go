package image_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pablo-Barros/folia-docker/builds"
	"github.com/Pablo-Barros/folia-docker/image"
)

func TestTag(t *testing.T) {
	t.Parallel()

	stable := builds.Resolved{
		Version: "1.21.11",
		Build:   2,
		Channel: builds.ChannelDefault,
	}
	exp := builds.Resolved{
		Version: "1.21.11",
		Build:   2,
		Channel: builds.ChannelExperimental,
	}

	assert.Equal(t, "1.21.11", image.Tag(stable))
	assert.Equal(t, "1.21.11-exp2", image.Tag(exp))
	assert.Equal(t, image.Tag(exp), image.Tag(exp))
}

func TestNaming_Reference(t *testing.T) {
	t.Parallel()

	n := image.Naming{Namespace: "ns"}

	ref, err := n.Reference(builds.Resolved{
		Version: "1.21.11",
		Build:   2,
		Channel: builds.ChannelDefault,
	})
	require.NoError(t, err)
	assert.Equal(t, "ns/folia:1.21.11", ref)

	ref, err = n.Reference(builds.Resolved{
		Version: "1.21.11",
		Build:   2,
		Channel: builds.ChannelExperimental,
	})
	require.NoError(t, err)
	assert.Equal(t, "ns/folia:1.21.11-exp2", ref)
}

func TestNaming_Name(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		naming image.Naming
		tag    string
		want   string
	}{
		{
			name:   "default registry",
			naming: image.Naming{Namespace: "blackao"},
			tag:    "latest",
			want:   "blackao/folia:latest",
		},
		{
			name:   "docker hub is implicit",
			naming: image.Naming{Namespace: "blackao", Registry: "docker.io/"},
			tag:    "experimental",
			want:   "blackao/folia:experimental",
		},
		{
			name: "custom registry and repository",
			naming: image.Naming{
				Namespace:  "team",
				Registry:   "registry.example.com:5000",
				Repository: "server",
			},
			tag:  "1.21.4",
			want: "registry.example.com:5000/team/server:1.21.4",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.naming.Name(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNaming_Name_invalid(t *testing.T) {
	t.Parallel()

	for _, n := range []image.Naming{
		{Namespace: "UPPER"},
		{Namespace: "MyOrg"},
		{Namespace: "my.org"},
		{Namespace: "localhost"},
		{Namespace: "MyOrg", Registry: "ghcr.io"},
		{Namespace: ""},
	} {
		_, err := n.Name("1.21.11")
		assert.ErrorIs(t, err, image.ErrInvalidReference, "%+v", n)
	}

	_, err := image.Naming{Namespace: "MyOrg"}.Name("1.21.11")
	assert.ErrorContains(t, err, `resolves to registry "MyOrg"`)

	_, err = image.Naming{Namespace: "ns"}.Name("bad tag")
	assert.ErrorIs(t, err, image.ErrInvalidReference)
}

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	got := image.BuildArgs(image.Target{
		Ref:     "ns/folia:1.21.11-exp2",
		Context: "versions/1.21.11",
		Version: "1.21.11",
		Build:   2,
	})

	assert.Equal(t, []string{
		"build",
		"--build-arg", "VERSION=1.21.11",
		"--build-arg", "BUILD=2",
		"-t", "ns/folia:1.21.11-exp2",
		"versions/1.21.11",
	}, got)
}

func TestBuildArgs_without_build(t *testing.T) {
	t.Parallel()

	got := image.BuildArgs(image.Target{
		Ref:     "ns/folia:1.20.4",
		Context: "versions/1.20.4",
	})

	assert.Equal(t, []string{
		"build", "-t", "ns/folia:1.20.4", "versions/1.20.4",
	}, got)
}

func TestPushArgs(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"push", "ns/folia:latest"},
		image.PushArgs("ns/folia:latest"),
	)
}

func TestRunner(t *testing.T) {
	t.Parallel()

	r := image.Runner{Binary: "echo"}

	out, err := r.Build(context.Background(), image.Target{
		Ref:     "ns/folia:1.21.4",
		Context: ".",
		Version: "1.21.4",
		Build:   7,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"build --build-arg VERSION=1.21.4 --build-arg BUILD=7 -t ns/folia:1.21.4 .",
		strings.TrimSpace(out),
	)

	out, err = r.Push(context.Background(), "ns/folia:1.21.4")
	require.NoError(t, err)
	assert.Equal(t, "push ns/folia:1.21.4", strings.TrimSpace(out))
}

func TestRunner_failure(t *testing.T) {
	t.Parallel()

	_, err := image.Runner{Binary: "false"}.Push(
		context.Background(), "ns/folia:1.21.4",
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "docker push ns/folia:1.21.4")
}

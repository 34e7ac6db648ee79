package scaffold_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pablo-Barros/folia-docker/builds"
	"github.com/Pablo-Barros/folia-docker/image"
	"github.com/Pablo-Barros/folia-docker/scaffold"
	"github.com/Pablo-Barros/folia-docker/versions"
)

type fakeSource struct {
	versions    []string
	versionsErr error
	latestIn    map[string]builds.Resolved
	latestInErr map[string]error
}

func (f *fakeSource) Versions(context.Context) ([]string, error) {
	return f.versions, f.versionsErr
}

func (f *fakeSource) LatestIn(
	_ context.Context,
	version string,
	_ builds.Channel,
) (builds.Resolved, error) {
	if err := f.latestInErr[version]; err != nil {
		return builds.Resolved{}, err
	}

	res, ok := f.latestIn[version]
	if !ok {
		return builds.Resolved{}, builds.ErrNoBuilds
	}

	return res, nil
}

func (f *fakeSource) Latest(
	ctx context.Context,
	channel builds.Channel,
) (builds.Resolved, error) {
	for _, v := range versions.Newest(f.versions) {
		if res, err := f.LatestIn(ctx, v, channel); err == nil {
			return res, nil
		}
	}

	return builds.Resolved{}, builds.ErrNoBuilds
}

func exp(version string, build int) builds.Resolved {
	return builds.Resolved{
		Version: version,
		Build:   build,
		Channel: builds.ChannelExperimental,
	}
}

func write(tb testing.TB, path, content string) {
	tb.Helper()

	require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(tb, os.WriteFile(path, []byte(content), 0o600))
}

func read(tb testing.TB, path string) string {
	tb.Helper()

	by, err := os.ReadFile(path) //nolint:gosec // test file
	require.NoError(tb, err)

	return string(by)
}

// newSyncer lays out a workspace with a template directory
// holding a Dockerfile and entrypoint but no requirements.txt.
func newSyncer(tb testing.TB, src scaffold.Source) *scaffold.Syncer {
	tb.Helper()

	base := tb.TempDir()
	tpl := filepath.Join(base, "versions", "latest")

	write(tb, filepath.Join(tpl, "Dockerfile"), "FROM eclipse-temurin:21\n")
	write(tb, filepath.Join(tpl, "entrypoint.sh"), "#!/bin/sh\n")
	write(tb, filepath.Join(base, "get-folia-enhanced.py"),
		"# Supports Experimental Builds\n")

	return &scaffold.Syncer{
		Root:                filepath.Join(base, "versions"),
		TemplateDir:         tpl,
		DownloadScript:      filepath.Join(base, "get-folia-enhanced.py"),
		Naming:              image.Naming{Namespace: "ns"},
		Source:              src,
		ExperimentalEnabled: true,
		AutoSync:            true,
	}
}

func TestSyncVersion_creates_directory(t *testing.T) {
	t.Parallel()

	sy := newSyncer(t, nil)

	got, err := sy.SyncVersion(exp("1.21.11", 2))
	require.NoError(t, err)
	assert.Equal(t, scaffold.Created, got)

	dir := filepath.Join(sy.Root, "1.21.11")

	assert.Equal(t, "FROM eclipse-temurin:21\n", read(t, filepath.Join(dir, "Dockerfile")))
	assert.NoFileExists(t, filepath.Join(dir, "requirements.txt"))

	info, err := os.Stat(filepath.Join(dir, scaffold.ScriptName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	readme := read(t, filepath.Join(dir, scaffold.ReadmeName))
	assert.Contains(t, readme, "# Folia 1.21.11 (Experimental)\n")
	assert.Contains(t, readme, "version 1.21.11 build 2 (experimental channel).")
	assert.Contains(t, readme, "--build-arg BUILD=2 -t ns/folia:1.21.11-exp2 .")
	assert.Contains(t, readme, "## Experimental Build Information")

	assert.True(t, versions.IsExperimentalDir(dir))
}

func TestSyncVersion_stable_readme(t *testing.T) {
	t.Parallel()

	sy := newSyncer(t, nil)

	_, err := sy.SyncVersion(builds.Resolved{
		Version: "1.21.4",
		Build:   7,
		Channel: builds.ChannelDefault,
	})
	require.NoError(t, err)

	readme := read(t, filepath.Join(sy.Root, "1.21.4", scaffold.ReadmeName))
	assert.Contains(t, readme, "# Folia 1.21.4\n")
	assert.Contains(t, readme, "-e MINECRAFT_EULA=true ns/folia:1.21.4\n")
	assert.NotContains(t, readme, "Experimental")
	assert.NotContains(t, readme, "{{")
}

func TestSyncVersion_refreshes_in_place(t *testing.T) {
	t.Parallel()

	sy := newSyncer(t, nil)
	dir := filepath.Join(sy.Root, "1.21.11")

	_, err := sy.SyncVersion(exp("1.21.11", 2))
	require.NoError(t, err)

	got, err := sy.SyncVersion(exp("1.21.11", 2))
	require.NoError(t, err)
	assert.Equal(t, scaffold.Unchanged, got)

	require.NoError(t, os.Remove(filepath.Join(dir, "Dockerfile")))

	got, err = sy.SyncVersion(exp("1.21.11", 3))
	require.NoError(t, err)
	assert.Equal(t, scaffold.Refreshed, got)

	assert.Contains(t,
		read(t, filepath.Join(dir, scaffold.ReadmeName)),
		"ns/folia:1.21.11-exp3",
	)
	assert.NoFileExists(t, filepath.Join(dir, "Dockerfile"),
		"template files are only copied on creation")
}

func TestSyncVersion_missing_template(t *testing.T) {
	t.Parallel()

	sy := newSyncer(t, nil)
	sy.TemplateDir = filepath.Join(sy.Root, "nope")

	_, err := sy.SyncVersion(exp("1.21.11", 2))

	require.ErrorIs(t, err, scaffold.ErrTemplateNotFound)
	assert.NoDirExists(t, filepath.Join(sy.Root, "1.21.11"))
}

func TestSyncVersion_missing_download_script(t *testing.T) {
	t.Parallel()

	sy := newSyncer(t, nil)
	sy.DownloadScript = filepath.Join(sy.Root, "missing.py")

	_, err := sy.SyncVersion(exp("1.21.11", 2))

	require.ErrorIs(t, err, scaffold.ErrTemplateNotFound)
}

func TestSyncAll_disabled(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name         string
		experimental bool
		autoSync     bool
	}{
		{name: "experimental off", experimental: false, autoSync: true},
		{name: "auto sync off", experimental: true, autoSync: false},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// A nil source would panic if consulted.
			sy := newSyncer(t, nil)
			sy.ExperimentalEnabled = tt.experimental
			sy.AutoSync = tt.autoSync

			got, err := sy.SyncAll(context.Background())

			require.NoError(t, err)
			assert.Equal(t, scaffold.Report{}, got)
		})
	}
}

func TestSyncAll(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		versions: []string{"1.20.4", "1.21.4", "1.21.11"},
		latestIn: map[string]builds.Resolved{
			"1.21.4":  exp("1.21.4", 5),
			"1.21.11": exp("1.21.11", 2),
		},
		latestInErr: map[string]error{
			"1.20.4": builds.ErrUpstreamUnavailable,
		},
	}

	sy := newSyncer(t, src)
	write(t, filepath.Join(sy.Root, "1.21.4", "Dockerfile"), "custom\n")

	got, err := sy.SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, scaffold.Report{
		Created:      []string{"1.21.11-exp2"},
		Refreshed:    []string{"1.21.4-exp5"},
		Experimental: "1.21.11-exp2",
	}, got)

	assert.Equal(t, "custom\n",
		read(t, filepath.Join(sy.Root, "1.21.4", "Dockerfile")))

	expDir := filepath.Join(sy.Root, versions.ExperimentalDir)
	readme := read(t, filepath.Join(expDir, scaffold.ReadmeName))
	assert.Contains(t, readme, "**Current version:** 1.21.11 build 2")
	assert.Contains(t, readme, "ns/folia:experimental")
	assert.FileExists(t, filepath.Join(expDir, "Dockerfile"))
	assert.FileExists(t, filepath.Join(expDir, scaffold.ScriptName))
}

func TestSyncAll_nothing_experimental(t *testing.T) {
	t.Parallel()

	sy := newSyncer(t, &fakeSource{versions: []string{"1.21.4"}})

	got, err := sy.SyncAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, scaffold.Report{}, got)
	assert.NoDirExists(t, filepath.Join(sy.Root, versions.ExperimentalDir))
}

func TestSyncAll_versions_failure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	sy := newSyncer(t, &fakeSource{versionsErr: boom})

	_, err := sy.SyncAll(context.Background())

	assert.ErrorIs(t, err, boom)
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "created", scaffold.Created.String())
	assert.Equal(t, "refreshed", scaffold.Refreshed.String())
	assert.Equal(t, "unchanged", scaffold.Unchanged.String())
}

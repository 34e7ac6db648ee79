package cli_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pablo-Barros/folia-docker/cli"
	"github.com/Pablo-Barros/folia-docker/config"
)

var routes = map[string]string{ //nolint:gochecknoglobals // test fixture
	"/projects/folia": `{"project_id":"folia","versions":["1.21.4","1.21.11"]}`,
	"/projects/folia/versions/1.21.11": `{"version":"1.21.11","builds":[
		{"build":1,"channel":"experimental"},
		{"build":2,"channel":"default"}]}`,
	"/projects/folia/versions/1.21.11/builds/1": `{"build":1,"channel":"experimental"}`,
	"/projects/folia/versions/1.21.4": `{"version":"1.21.4","builds":[
		{"build":6,"channel":"experimental"},
		{"build":7,"channel":"experimental"}]}`,
	"/projects/folia/versions/1.21.4/builds/7/downloads/folia-1.21.4-7.jar":   "JAR",
	"/projects/folia/versions/1.21.11/builds/2/downloads/folia-1.21.11-2.jar": "STABLE",
	"/projects/folia/versions/1.21.11/builds/1/downloads/folia-1.21.11-1.jar": "EXP",
}

type harness struct {
	env  map[string]string
	root string
}

func newHarness(tb testing.TB) *harness {
	tb.Helper()

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			body, ok := routes[r.URL.Path]
			if !ok {
				http.NotFound(w, r)

				return
			}

			_, _ = io.WriteString(w, body)
		},
	))
	tb.Cleanup(srv.Close)

	root := tb.TempDir()

	return &harness{
		root: root,
		env: map[string]string{
			"PAPERMC_API_URL":  srv.URL,
			"VERSIONS_DIR":     root,
			"DOCKER_NAMESPACE": "ns",
		},
	}
}

func (h *harness) mkdir(tb testing.TB, dirs ...string) {
	tb.Helper()

	for _, d := range dirs {
		require.NoError(tb, os.MkdirAll(filepath.Join(h.root, d), 0o755))
	}
}

func (h *harness) run(args ...string) (string, error) {
	var out bytes.Buffer

	cmd := cli.NewRootCmd(cli.Options{
		Lookup: func(key string) (string, bool) {
			v, ok := h.env[key]

			return v, ok
		},
		Stdout: &out,
		Stderr: io.Discard,
	})
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := newHarness(t).run("version")

	require.NoError(t, err)
	assert.Equal(t, cli.Version+"\n", out)
}

func TestTag(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	out, err := h.run("tag", "1.21.11")
	require.NoError(t, err)
	assert.Equal(t, "ns/folia:1.21.11\n", out)

	out, err = h.run("tag", "1.21.4", "--namespace", "other")
	require.NoError(t, err)
	assert.Equal(t, "other/folia:1.21.4-exp7\n", out)
}

func TestTag_latest(t *testing.T) {
	t.Parallel()

	out, err := newHarness(t).run("tag", "latest")

	require.NoError(t, err)
	assert.Equal(t, "ns/folia:latest\n", out)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	out, err := newHarness(t).run("resolve", "1.21.4", "latest")

	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t,
		[]string{"1.21.4", "7", "experimental", "ns/folia:1.21.4-exp7"},
		strings.Fields(lines[1]),
	)
	assert.Equal(t,
		[]string{"1.21.11", "2", "default", "ns/folia:1.21.11"},
		strings.Fields(lines[2]),
	)
}

func TestResolve_unknown_version(t *testing.T) {
	t.Parallel()

	_, err := newHarness(t).run("resolve", "9.9.9")

	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	out, err := h.run("classify", "1.21.11", "1")
	require.NoError(t, err)
	assert.Equal(t, "experimental\n", out)

	_, err = h.run("classify", "1.21.11", "two")
	assert.ErrorContains(t, err, "invalid build number")
}

func TestBuilds_json(t *testing.T) {
	t.Parallel()

	out, err := newHarness(t).run("builds", "1.21.4", "--json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, "1.21.4", got["version"])
	assert.Equal(t, []any{}, got["stable"])
	assert.Equal(t, []any{float64(6), float64(7)}, got["experimental"])
	assert.Equal(t, float64(7), got["latest_experimental"])
	assert.NotContains(t, got, "latest_stable")
}

func TestBuilds_text(t *testing.T) {
	t.Parallel()

	out, err := newHarness(t).run("builds", "1.21.11")

	require.NoError(t, err)
	assert.Contains(t, out, "stable:              [2]\n")
	assert.Contains(t, out, "latest experimental: 1\n")
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.mkdir(t, "1.21.11", "1.21.4", "1.20.4", "1.21.4-exp2")
	require.NoError(t, os.WriteFile(
		filepath.Join(h.root, "1.20.4", ".disabled"), nil, 0o600,
	))

	out, err := h.run("discover")
	require.NoError(t, err)
	assert.Equal(t, "1.21.4\n1.21.11\n", out)

	out, err = h.run("discover", "--experimental")
	require.NoError(t, err)
	assert.Equal(t, "1.21.4-exp2\n1.21.4\n1.21.11\n", out)

	out, err = h.run("discover", "--all")
	require.NoError(t, err)
	assert.Equal(t, "1.20.4\n1.21.4-exp2\n1.21.4\n1.21.11\n", out)
}

func TestDiscover_missing_root(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.env["VERSIONS_DIR"] = filepath.Join(h.root, "nope")

	_, err := h.run("discover")

	assert.ErrorContains(t, err, "not found")
}

func TestBuild_dry_run(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.mkdir(t, "1.21.11", "1.21.4")

	out, err := h.run("build", "--dry-run")

	require.NoError(t, err)
	assert.Equal(t, "ns/folia:1.21.4-exp7\nns/folia:1.21.11\n", out)
}

func TestPush_reports_failures(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.mkdir(t, "1.21.11")
	h.env["DOCKER_BIN"] = "false"

	_, err := h.run("push", "1.21.11", "missing")

	assert.ErrorContains(t, err, "only 0/2 succeeded")
}

func TestDownload(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	dest := t.TempDir()

	out, err := h.run("download", "1.21.4", "-o", dest)
	require.NoError(t, err)

	path := filepath.Join(dest, "folia-1.21.4-7.jar")
	assert.Equal(t, path+"\n", out)

	got, err := os.ReadFile(path) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Equal(t, "JAR", string(got))
}

func TestDownload_latest(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	tests := []struct {
		args []string
		jar  string
		want string
	}{
		{args: []string{"latest"}, jar: "folia-1.21.11-2.jar", want: "STABLE"},
		{args: []string{"latest", "1"}, jar: "folia-1.21.11-1.jar", want: "EXP"},
	}

	for _, tt := range tests {
		dest := t.TempDir()

		out, err := h.run(append([]string{"download", "-o", dest}, tt.args...)...)
		require.NoError(t, err, tt.args)

		path := filepath.Join(dest, tt.jar)
		assert.Equal(t, path+"\n", out)

		got, err := os.ReadFile(path) //nolint:gosec // test file
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}
}

func TestCheckUpdates_dry_run(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.mkdir(t, "1.21.4")

	out, err := h.run("check-updates", "--dry-run")

	require.NoError(t, err)
	assert.Equal(t, "created\t1.21.11\n", out)
}

func TestConfig(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.env["GITHUB_TOKEN"] = "ghp_secret"

	out, err := h.run("config", "--registry", "registry.example.com")
	require.NoError(t, err)

	assert.NotContains(t, out, "ghp_secret")
	assert.Contains(t, out, "namespace: ns")
	assert.Contains(t, out, "registry: registry.example.com")
}

func TestInvalid_environment(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.env["PREFER_STABLE"] = "maybe"

	_, err := h.run("tag", "1.21.11")

	assert.ErrorIs(t, err, config.ErrInvalid)
}

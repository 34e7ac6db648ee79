package papermc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const (
	// DefaultBaseURL is the public PaperMC API root.
	DefaultBaseURL = "https://api.papermc.io/v2"
	// DefaultProject is the project whose builds are tracked.
	DefaultProject = "folia"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "folia-docker"
)

var (
	// ErrUnavailable is wrapped by every error caused by a
	// transport failure or a non-2xx response.
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrDecode is wrapped by errors caused by a response body
	// that does not match the expected schema.
	ErrDecode = errors.New("malformed upstream response")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
}

// Unwrap lets errors.Is match ErrUnavailable.
func (e *StatusError) Unwrap() error {
	return ErrUnavailable
}

// Config holds the settings of a Client. Zero values select the
// public API and the folia project.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.papermc.io/v2".
	BaseURL string
	// Project is the PaperMC project name.
	Project string
	// HTTPClient overrides the HTTP client. Leave nil for a
	// client with a 30 second timeout.
	HTTPClient *http.Client
	// UserAgent is sent with every request.
	UserAgent string
}

// Client talks to the PaperMC build API.
type Client struct {
	baseURL   string
	project   string
	http      *http.Client
	userAgent string
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	const errCtx = "creating papermc client"

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}

	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf(
			"%s: invalid base url %q: %w", errCtx, base, err,
		)
	}

	project := strings.TrimSpace(cfg.Project)
	if project == "" {
		project = DefaultProject
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Client{
		baseURL:   base,
		project:   project,
		http:      hc,
		userAgent: ua,
	}, nil
}

// Project returns the configured project name.
func (c *Client) Project() string {
	return c.project
}

// Versions lists every version published for the project, in
// upstream order.
func (c *Client) Versions(ctx context.Context) ([]string, error) {
	const errCtx = "listing versions"

	var resp projectResponse
	if err := c.getJSON(ctx, c.projectPath(), &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return resp.Versions, nil
}

// Builds lists the builds of version, ascending by build number
// as published upstream.
func (c *Client) Builds(
	ctx context.Context,
	version string,
) ([]Build, error) {
	const errCtx = "listing builds"

	var resp versionResponse
	if err := c.getJSON(ctx, c.versionPath(version), &resp); err != nil {
		return nil, fmt.Errorf(
			"%s for %s: %w", errCtx, version, err,
		)
	}

	return resp.Builds, nil
}

// Build fetches the metadata of a single build.
func (c *Client) Build(
	ctx context.Context,
	version string,
	build int,
) (Build, error) {
	const errCtx = "fetching build"

	var resp Build
	if err := c.getJSON(ctx, c.buildPath(version, build), &resp); err != nil {
		return Build{}, fmt.Errorf(
			"%s %s#%d: %w", errCtx, version, build, err,
		)
	}

	if resp.Number == 0 {
		resp.Number = build
	}

	return resp, nil
}

// ArtifactName returns the jar name published for a build.
func (c *Client) ArtifactName(version string, build int) string {
	return fmt.Sprintf("%s-%s-%d.jar", c.project, version, build)
}

// Download streams the server jar of a build into w.
func (c *Client) Download(
	ctx context.Context,
	version string,
	build int,
	w io.Writer,
) error {
	const errCtx = "downloading artifact"

	target := c.buildPath(version, build) +
		"/downloads/" + url.PathEscape(c.ArtifactName(version, build))

	body, err := c.get(ctx, target)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	defer body.Close() //nolint:errcheck // read-only body

	n, err := io.Copy(w, body)
	if err != nil {
		return fmt.Errorf(
			"%s: %w: %w", errCtx, ErrUnavailable, err,
		)
	}

	slog.Info(
		"downloaded artifact",
		"version", version,
		"build", build,
		"bytes", n,
	)

	return nil
}

// DownloadFile downloads the server jar of a build to path,
// creating parent directories as needed.
func (c *Client) DownloadFile(
	ctx context.Context,
	version string,
	build int,
	path string,
) (retErr error) {
	const errCtx = "downloading artifact to file"

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	fi, err := os.Create(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("%s: %w", errCtx, closeErr)
		}
	}()

	if err := c.Download(ctx, version, build, fi); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func (c *Client) projectPath() string {
	return "/projects/" + url.PathEscape(c.project)
}

func (c *Client) versionPath(version string) string {
	return c.projectPath() + "/versions/" + url.PathEscape(version)
}

func (c *Client) buildPath(version string, build int) string {
	return c.versionPath(version) + "/builds/" + strconv.Itoa(build)
}

func (c *Client) getJSON(
	ctx context.Context,
	path string,
	out any,
) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}

	defer body.Close() //nolint:errcheck // read-only body

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}

	return nil
}

// get issues a GET request and returns the body of a 2xx
// response. The caller closes the body.
func (c *Client) get(
	ctx context.Context,
	path string,
) (io.ReadCloser, error) {
	target := c.baseURL + path

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, target, nil,
	)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	slog.Debug("papermc request", "url", target)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close() //nolint:errcheck // status already decided

		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        target,
		}
	}

	return resp.Body, nil
}

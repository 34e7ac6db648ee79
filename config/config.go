package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/Pablo-Barros/folia-docker/builds"
	"github.com/Pablo-Barros/folia-docker/image"
	"github.com/Pablo-Barros/folia-docker/papermc"
)

// Tracker kinds.
const (
	TrackerGitHub = "github"
	TrackerGitLab = "gitlab"
)

// ErrInvalid reports a configuration value that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete run configuration.
type Config struct {
	Namespace   string `yaml:"namespace"`
	Registry    string `yaml:"registry,omitempty"`
	Repository  string `yaml:"repository"`
	VersionsDir string `yaml:"versions_dir"`
	DockerBin   string `yaml:"docker_bin"`

	EnableExperimental   bool   `yaml:"enable_experimental"`
	PreferStable         bool   `yaml:"prefer_stable"`
	ExperimentalChannel  string `yaml:"experimental_channel"`
	AutoSyncExperimental bool   `yaml:"auto_sync_experimental"`

	// TemplateDir and DownloadScript feed the scaffolder.
	TemplateDir    string `yaml:"template_dir"`
	DownloadScript string `yaml:"download_script"`

	PaperMC PaperMC `yaml:"papermc"`
	Tracker Tracker `yaml:"tracker"`
}

// PaperMC configures the upstream build API.
type PaperMC struct {
	APIURL  string `yaml:"api_url"`
	Project string `yaml:"project"`
}

// Tracker configures the issue tracker used by the update
// checker.
type Tracker struct {
	Kind      string   `yaml:"kind"`
	Assignees []string `yaml:"assignees,omitempty"`
	Labels    []string `yaml:"labels,omitempty"`
	GitHub    GitHub   `yaml:"github"`
	GitLab    GitLab   `yaml:"gitlab"`
}

// GitHub configures the GitHub tracker.
type GitHub struct {
	Owner          string `yaml:"owner"`
	Repo           string `yaml:"repo"`
	Token          string `yaml:"token,omitempty"`
	EnterpriseHost string `yaml:"enterprise_host,omitempty"`
	APIURL         string `yaml:"api_url,omitempty"`
}

// GitLab configures the GitLab tracker.
type GitLab struct {
	Host    string `yaml:"host,omitempty"`
	Project string `yaml:"project,omitempty"`
	Token   string `yaml:"token,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Namespace:            "blackao",
		Repository:           image.DefaultRepository,
		VersionsDir:          "versions",
		DockerBin:            image.DefaultBinary,
		PreferStable:         true,
		ExperimentalChannel:  string(builds.ChannelExperimental),
		AutoSyncExperimental: true,
		TemplateDir:          "versions/latest",
		DownloadScript:       "get-folia-enhanced.py",
		PaperMC: PaperMC{
			APIURL:  papermc.DefaultBaseURL,
			Project: papermc.DefaultProject,
		},
		Tracker: Tracker{
			Kind:      TrackerGitHub,
			Assignees: []string{"Endkind"},
			Labels:    []string{"update"},
			GitHub: GitHub{
				Owner: "Endkind",
				Repo:  "folia",
			},
		},
	}
}

// LookupFunc reads one environment variable. os.LookupEnv
// satisfies it.
type LookupFunc func(key string) (string, bool)

// Load returns the defaults overlaid with the YAML file at path
// (skipped when path is empty) and then the environment.
func Load(path string, lookup LookupFunc) (Config, error) {
	const errCtx = "loading configuration"

	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return cfg, nil
}

// Validate checks the values every command relies on.
func (c Config) Validate() error {
	switch {
	case c.Namespace == "":
		return fmt.Errorf("%w: namespace must be set", ErrInvalid)
	case c.VersionsDir == "":
		return fmt.Errorf("%w: versions dir must be set", ErrInvalid)
	case c.PaperMC.Project == "":
		return fmt.Errorf("%w: papermc project must be set", ErrInvalid)
	}

	switch c.Tracker.Kind {
	case TrackerGitHub, TrackerGitLab:
	default:
		return fmt.Errorf(
			"%w: unknown issue tracker %q", ErrInvalid, c.Tracker.Kind,
		)
	}

	return nil
}

// Policy returns the resolver policy.
func (c Config) Policy() builds.Policy {
	label := c.ExperimentalChannel
	if strings.EqualFold(label, string(builds.ChannelExperimental)) {
		label = ""
	}

	return builds.Policy{
		PreferStable:      c.PreferStable,
		ExperimentalLabel: label,
	}
}

// Naming returns the image naming.
func (c Config) Naming() image.Naming {
	return image.Naming{
		Namespace:  c.Namespace,
		Registry:   c.Registry,
		Repository: c.Repository,
	}
}

// Redacted returns a copy with access tokens masked.
func (c Config) Redacted() Config {
	const mask = "********"

	if c.Tracker.GitHub.Token != "" {
		c.Tracker.GitHub.Token = mask
	}

	if c.Tracker.GitLab.Token != "" {
		c.Tracker.GitLab.Token = mask
	}

	return c
}

// YAML renders the configuration as YAML.
func (c Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}

	return out, nil
}

func (c *Config) readFile(path string) error {
	const errCtx = "reading config file"

	raw, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := yaml.UnmarshalWithOptions(
		raw, c, yaml.Strict(),
	); err != nil {
		return fmt.Errorf(
			"%s %s: %w: %w", errCtx, path, ErrInvalid, err,
		)
	}

	return nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok {
			*dst = splitList(v)
		}
	}

	str("DOCKER_NAMESPACE", &c.Namespace)
	str("DOCKER_REGISTRY_URL", &c.Registry)
	str("DOCKER_BIN", &c.DockerBin)
	str("VERSIONS_DIR", &c.VersionsDir)
	str("EXPERIMENTAL_CHANNEL", &c.ExperimentalChannel)
	str("TEMPLATE_DIR", &c.TemplateDir)
	str("DOWNLOAD_SCRIPT", &c.DownloadScript)
	str("PAPERMC_API_URL", &c.PaperMC.APIURL)
	str("PAPERMC_PROJECT", &c.PaperMC.Project)
	str("ISSUE_TRACKER", &c.Tracker.Kind)
	str("GITHUB_TOKEN", &c.Tracker.GitHub.Token)
	str("GITHUB_API_URL", &c.Tracker.GitHub.APIURL)
	str("GITHUB_ENTERPRISE_HOST", &c.Tracker.GitHub.EnterpriseHost)
	str("REPO_OWNER", &c.Tracker.GitHub.Owner)
	str("REPO_NAME", &c.Tracker.GitHub.Repo)
	str("GITLAB_HOST", &c.Tracker.GitLab.Host)
	str("GITLAB_TOKEN", &c.Tracker.GitLab.Token)
	str("GITLAB_PROJECT", &c.Tracker.GitLab.Project)
	list("ISSUE_ASSIGNEES", &c.Tracker.Assignees)
	list("ISSUE_LABELS", &c.Tracker.Labels)

	if v, ok := lookup("REPO"); ok && v != "" {
		owner, repo, found := strings.Cut(v, "/")
		if !found || owner == "" || repo == "" {
			return fmt.Errorf(
				"%w: REPO must be owner/name, got %q", ErrInvalid, v,
			)
		}

		c.Tracker.GitHub.Owner = owner
		c.Tracker.GitHub.Repo = repo
	}

	for key, dst := range map[string]*bool{
		"ENABLE_EXPERIMENTAL":    &c.EnableExperimental,
		"PREFER_STABLE":          &c.PreferStable,
		"AUTO_SYNC_EXPERIMENTAL": &c.AutoSyncExperimental,
	} {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}

		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf(
				"%w: %s=%q is not a boolean", ErrInvalid, key, v,
			)
		}

		*dst = b
	}

	return nil
}

func splitList(v string) []string {
	var out []string

	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}

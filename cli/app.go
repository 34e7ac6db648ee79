package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Pablo-Barros/folia-docker/builds"
	"github.com/Pablo-Barros/folia-docker/config"
	"github.com/Pablo-Barros/folia-docker/image"
	"github.com/Pablo-Barros/folia-docker/papermc"
	"github.com/Pablo-Barros/folia-docker/tracker"
	ghtr "github.com/Pablo-Barros/folia-docker/tracker/github"
	gltr "github.com/Pablo-Barros/folia-docker/tracker/gitlab"
)

// app carries the loaded configuration and builds components
// from it.
type app struct {
	lookup config.LookupFunc
	stderr io.Writer

	configPath string
	debug      bool
	flags      flagValues

	cfg config.Config
}

// flagValues holds global flags that override configuration
// when set.
type flagValues struct {
	namespace    string
	registry     string
	versionsDir  string
	dockerBin    string
	apiURL       string
	project      string
	experimental bool
	preferStable bool
}

func (a *app) bindFlags(cmd *cobra.Command) {
	fl := cmd.PersistentFlags()

	fl.StringVar(&a.configPath, "config", "", "YAML configuration file")
	fl.BoolVar(&a.debug, "debug", false, "enable debug logging")
	fl.StringVar(&a.flags.namespace, "namespace", "", "Docker namespace")
	fl.StringVar(&a.flags.registry, "registry", "", "Docker registry host")
	fl.StringVar(&a.flags.versionsDir, "versions-dir", "", "version directories root")
	fl.StringVar(&a.flags.dockerBin, "docker-bin", "", "container runtime binary")
	fl.StringVar(&a.flags.apiURL, "api-url", "", "PaperMC API root")
	fl.StringVar(&a.flags.project, "project", "", "PaperMC project")
	fl.BoolVar(&a.flags.experimental, "experimental", false, "include experimental versions")
	fl.BoolVar(&a.flags.preferStable, "prefer-stable", true, "prefer stable builds over newer experimental ones")
}

// setup installs the logger and loads the configuration.
func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		a.stderr, &slog.HandlerOptions{Level: level},
	)))

	cfg, err := config.Load(a.configPath, a.lookup)
	if err != nil {
		return err //nolint:wrapcheck // already wrapped
	}

	fl := cmd.Flags()

	override := func(name string, dst *string, val string) {
		if fl.Changed(name) {
			*dst = val
		}
	}

	override("namespace", &cfg.Namespace, a.flags.namespace)
	override("registry", &cfg.Registry, a.flags.registry)
	override("versions-dir", &cfg.VersionsDir, a.flags.versionsDir)
	override("docker-bin", &cfg.DockerBin, a.flags.dockerBin)
	override("api-url", &cfg.PaperMC.APIURL, a.flags.apiURL)
	override("project", &cfg.PaperMC.Project, a.flags.project)

	if fl.Changed("experimental") {
		cfg.EnableExperimental = a.flags.experimental
	}

	if fl.Changed("prefer-stable") {
		cfg.PreferStable = a.flags.preferStable
	}

	if err := cfg.Validate(); err != nil {
		return err //nolint:wrapcheck // sentinel carries context
	}

	a.cfg = cfg

	return nil
}

func (a *app) client() (*papermc.Client, error) {
	return papermc.NewClient(papermc.Config{ //nolint:wrapcheck // already wrapped
		BaseURL: a.cfg.PaperMC.APIURL,
		Project: a.cfg.PaperMC.Project,
	})
}

// resolver returns a resolver with a cache scoped to the
// running command.
func (a *app) resolver() (*builds.Resolver, error) {
	cl, err := a.client()
	if err != nil {
		return nil, err
	}

	return builds.NewResolver(cl, builds.NewCache(), a.cfg.Policy()), nil
}

func (a *app) runner() image.Runner {
	return image.Runner{Binary: a.cfg.DockerBin}
}

func (a *app) tracker(dryRun bool) (tracker.Tracker, error) {
	const errCtx = "creating issue tracker"

	tc := a.cfg.Tracker

	var (
		tr  tracker.Tracker
		err error
	)

	switch tc.Kind {
	case config.TrackerGitLab:
		tr, err = gltr.NewTracker(gltr.Config{
			Host:        tc.GitLab.Host,
			Project:     tc.GitLab.Project,
			AccessToken: tc.GitLab.Token,
		})
	default:
		tr, err = ghtr.NewTracker(ghtr.Config{
			RepoOwner:      tc.GitHub.Owner,
			Repo:           tc.GitHub.Repo,
			AccessToken:    tc.GitHub.Token,
			EnterpriseHost: tc.GitHub.EnterpriseHost,
			APIURL:         tc.GitHub.APIURL,
		})
	}

	switch {
	case err == nil && dryRun:
		return tracker.DryRun{Tracker: tr}, nil
	case err == nil:
		return tr, nil
	case dryRun:
		// Without credentials a dry run still reports what it
		// would open.
		slog.Warn("issue tracker unavailable, dry run assumes no open issues", "error", err)

		return tracker.DryRun{}, nil
	default:
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}
}

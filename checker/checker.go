package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Pablo-Barros/folia-docker/tracker"
	"github.com/Pablo-Barros/folia-docker/versions"
)

// ErrCreateFailed reports that at least one issue could not be
// created.
var ErrCreateFailed = errors.New("issue creation failed")

// Upstream lists the published versions. *builds.Resolver and
// *papermc.Client satisfy it.
type Upstream interface {
	Versions(ctx context.Context) ([]string, error)
}

// Config holds the settings of an update check.
type Config struct {
	// Root is the local versions directory.
	Root      string
	Upstream  Upstream
	Tracker   tracker.Tracker
	Assignees []string
	Labels    []string
}

// Report lists the upstream versions the check acted on.
type Report struct {
	// Created versions got a new issue.
	Created []string
	// Existing versions already had an open issue.
	Existing []string
	// Failed versions could not get an issue.
	Failed []string
}

// Err returns ErrCreateFailed naming the failed versions, or
// nil.
func (r Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %v", ErrCreateFailed, r.Failed)
}

// Run compares upstream versions against the local version
// directories and open issues, and opens an issue for every
// version missing from both.
func Run(ctx context.Context, cfg Config) (Report, error) {
	const errCtx = "checking for new versions"

	upstream, err := cfg.Upstream.Versions(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	local, err := versions.Local(cfg.Root)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	known := make(map[string]bool, len(local))
	for _, v := range local {
		known[v] = true
	}

	tracked := openVersions(ctx, cfg.Tracker)

	var report Report

	for _, v := range upstream {
		switch {
		case known[v]:
			continue
		case tracked[v]:
			report.Existing = append(report.Existing, v)

			continue
		}

		err := cfg.Tracker.CreateIssue(ctx, tracker.Issue{
			Title:     Title(v),
			Body:      Body(v),
			Assignees: cfg.Assignees,
			Labels:    cfg.Labels,
		})
		if err != nil {
			slog.Error(
				"cannot create issue",
				"version", v,
				"error", err,
			)

			report.Failed = append(report.Failed, v)

			continue
		}

		slog.Info("opened issue for new version", "version", v)

		report.Created = append(report.Created, v)
	}

	return report, nil
}

// openVersions returns the versions announced by open issues.
// A listing failure is logged and treated as no open issues.
func openVersions(
	ctx context.Context,
	tr tracker.Tracker,
) map[string]bool {
	issues, err := tr.OpenIssues(ctx)
	if err != nil {
		slog.Warn(
			"cannot list open issues, assuming none",
			"error", err,
		)

		return nil
	}

	out := make(map[string]bool, len(issues))

	for _, is := range issues {
		if v, ok := ExtractVersion(is.Title); ok {
			out[v] = true
		}
	}

	return out
}

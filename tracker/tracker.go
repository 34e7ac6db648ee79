package tracker

import (
	"context"
	"log/slog"
	"strings"
)

// Pattern: Strategy -- swap issue platform without
// changing update checking logic.

// Issue is a tracker issue. Listing fills Title and Body;
// Assignees and Labels are applied on creation.
type Issue struct {
	Title     string
	Body      string
	Assignees []string
	Labels    []string
}

// Tracker lists and creates issues on an issue tracking
// platform.
type Tracker interface {
	OpenIssues(ctx context.Context) ([]Issue, error)
	CreateIssue(ctx context.Context, issue Issue) error
}

// DryRun lists issues through the wrapped Tracker but only
// logs the issues it is asked to create.
type DryRun struct {
	Tracker Tracker
}

// OpenIssues delegates to the wrapped Tracker. Without one it
// reports no open issues.
func (d DryRun) OpenIssues(ctx context.Context) ([]Issue, error) {
	if d.Tracker == nil {
		return nil, nil
	}

	return d.Tracker.OpenIssues(ctx) //nolint:wrapcheck // transparent wrapper
}

// CreateIssue logs issue and returns nil.
func (DryRun) CreateIssue(_ context.Context, issue Issue) error {
	slog.Info(
		"dry run, not creating issue",
		"title", issue.Title,
		"assignees", strings.Join(issue.Assignees, ","),
		"labels", strings.Join(issue.Labels, ","),
	)

	return nil
}

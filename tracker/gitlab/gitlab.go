package gitlab

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/Pablo-Barros/folia-docker/tracker"
)

const pageSize = 100

// Config holds the settings needed to create a GitLab
// issue tracker.
type Config struct {
	// Host is the base URL of the GitLab instance
	// (e.g. "https://gitlab.com").
	Host string
	// Project is the full project path
	// (e.g. "org/project").
	Project string
	// AccessToken is a personal or project access
	// token used for authentication.
	AccessToken string
}

// Tracker lists and creates GitLab issues.
//
// Pattern: Strategy -- implements tracker.Tracker.
type Tracker struct {
	client  *gl.Client
	project string
}

// NewTracker validates cfg and returns a Tracker ready to
// manage issues.
func NewTracker(cfg Config) (*Tracker, error) {
	const errCtx = "creating gitlab tracker"

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	if cfg.Project == "" {
		return nil, fmt.Errorf(
			"%s: project must be set", errCtx,
		)
	}

	host := cfg.Host
	if host == "" {
		host = "https://gitlab.com"
	}

	client, err := gl.NewClient(
		cfg.AccessToken,
		gl.WithBaseURL(host),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: new client: %w", errCtx, err,
		)
	}

	return &Tracker{
		client:  client,
		project: cfg.Project,
	}, nil
}

// OpenIssues lists every opened issue of the project.
func (t *Tracker) OpenIssues(
	ctx context.Context,
) ([]tracker.Issue, error) {
	const errCtx = "listing gitlab issues"

	opts := &gl.ListProjectIssuesOptions{
		State:       gl.Ptr("opened"),
		ListOptions: gl.ListOptions{PerPage: pageSize},
	}

	var out []tracker.Issue

	for {
		page, resp, err := t.client.Issues.ListProjectIssues(
			t.project, opts, gl.WithContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		for _, is := range page {
			out = append(out, fromGitLab(is))
		}

		if resp.NextPage == 0 {
			return out, nil
		}

		opts.Page = resp.NextPage
	}
}

// CreateIssue opens a new issue. Assignees are given by
// username through an /assign quick action in the
// description.
func (t *Tracker) CreateIssue(
	ctx context.Context,
	issue tracker.Issue,
) error {
	const errCtx = "creating gitlab issue"

	opts := &gl.CreateIssueOptions{
		Title:       &issue.Title,
		Description: gl.Ptr(describe(issue)),
	}

	if len(issue.Labels) > 0 {
		labels := gl.LabelOptions(issue.Labels)
		opts.Labels = &labels
	}

	created, resp, err := t.client.Issues.CreateIssue(
		t.project, opts, gl.WithContext(ctx),
	)
	if err == nil {
		slog.Info(
			"created issue",
			"url", created.WebURL,
		)

		return nil
	}

	// Log the response body for debugging.
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close() //nolint:errcheck

		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			slog.Warn(
				"cannot read response body",
				"error", readErr,
			)
		} else {
			slog.Warn(
				"gitlab response",
				"body", string(rb),
			)
		}
	}

	return fmt.Errorf("%s: %w", errCtx, err)
}

func describe(issue tracker.Issue) string {
	if len(issue.Assignees) == 0 {
		return issue.Body
	}

	users := make([]string, 0, len(issue.Assignees))
	for _, a := range issue.Assignees {
		users = append(users, "@"+strings.TrimPrefix(a, "@"))
	}

	return issue.Body + "\n\n/assign " + strings.Join(users, " ")
}

func fromGitLab(is *gl.Issue) tracker.Issue {
	out := tracker.Issue{
		Title: is.Title,
		Body:  is.Description,
	}

	for _, a := range is.Assignees {
		out.Assignees = append(out.Assignees, a.Username)
	}

	for _, l := range is.Labels {
		out.Labels = append(out.Labels, l)
	}

	return out
}

package github

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v68/github"

	"github.com/Pablo-Barros/folia-docker/tracker"
)

const pageSize = 100

// Config holds the settings needed to create a GitHub
// issue tracker.
type Config struct {
	// RepoOwner is the GitHub user or organisation
	// that owns the repository.
	RepoOwner string
	// Repo is the repository name (without owner).
	Repo string
	// AccessToken is a personal access token or
	// GitHub App token used for authentication.
	AccessToken string
	// EnterpriseHost is an optional GitHub Enterprise
	// hostname (e.g. "git.corp.example.com"). Leave
	// empty for github.com.
	EnterpriseHost string
	// APIURL overrides the REST endpoint entirely. It
	// takes precedence over EnterpriseHost.
	APIURL string
}

// Tracker lists and creates GitHub issues.
//
// Pattern: Strategy -- implements tracker.Tracker.
type Tracker struct {
	client    *gh.Client
	repoOwner string
	repo      string
}

// NewTracker validates cfg and returns a Tracker ready to
// manage issues.
func NewTracker(cfg Config) (*Tracker, error) {
	const errCtx = "creating github tracker"

	if cfg.RepoOwner == "" {
		return nil, fmt.Errorf(
			"%s: repo owner must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	client := gh.NewClient(nil).
		WithAuthToken(cfg.AccessToken)

	switch {
	case cfg.APIURL != "":
		base, err := url.Parse(
			strings.TrimSuffix(cfg.APIURL, "/") + "/",
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: api url: %w", errCtx, err,
			)
		}

		client.BaseURL = base
	case cfg.EnterpriseHost != "":
		baseURL := "https://" +
			cfg.EnterpriseHost + "/api/v3/"
		uploadURL := "https://" +
			cfg.EnterpriseHost + "/api/uploads/"

		var err error

		client, err = client.WithEnterpriseURLs(
			baseURL, uploadURL,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: enterprise urls: %w",
				errCtx, err,
			)
		}
	}

	return &Tracker{
		client:    client,
		repoOwner: cfg.RepoOwner,
		repo:      cfg.Repo,
	}, nil
}

// OpenIssues lists every open issue of the repository.
// Pull requests, which GitHub reports as issues, are left
// out.
func (t *Tracker) OpenIssues(
	ctx context.Context,
) ([]tracker.Issue, error) {
	const errCtx = "listing github issues"

	opts := &gh.IssueListByRepoOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: pageSize},
	}

	var out []tracker.Issue

	for {
		page, resp, err := t.client.Issues.ListByRepo(
			ctx, t.repoOwner, t.repo, opts,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		for _, is := range page {
			if is.IsPullRequest() {
				continue
			}

			out = append(out, fromGitHub(is))
		}

		if resp.NextPage == 0 {
			return out, nil
		}

		opts.Page = resp.NextPage
	}
}

// CreateIssue opens a new issue.
func (t *Tracker) CreateIssue(
	ctx context.Context,
	issue tracker.Issue,
) error {
	const errCtx = "creating github issue"

	req := &gh.IssueRequest{
		Title: &issue.Title,
		Body:  &issue.Body,
	}

	if len(issue.Labels) > 0 {
		req.Labels = &issue.Labels
	}

	if len(issue.Assignees) > 0 {
		req.Assignees = &issue.Assignees
	}

	created, resp, err := t.client.Issues.Create(
		ctx, t.repoOwner, t.repo, req,
	)
	if err == nil {
		slog.Info(
			"created issue",
			"url", created.GetHTMLURL(),
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
				"github response",
				"body", string(rb),
			)
		}
	}

	return fmt.Errorf("%s: %w", errCtx, err)
}

func fromGitHub(is *gh.Issue) tracker.Issue {
	out := tracker.Issue{
		Title: is.GetTitle(),
		Body:  is.GetBody(),
	}

	for _, u := range is.Assignees {
		out.Assignees = append(out.Assignees, u.GetLogin())
	}

	for _, l := range is.Labels {
		out.Labels = append(out.Labels, l.GetName())
	}

	return out
}

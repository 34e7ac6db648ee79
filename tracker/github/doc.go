// Package github implements a tracker.Tracker backed by GitHub
// issues (cloud or enterprise). Configure with a Config containing
// the repository owner, name, and personal access token. Set
// EnterpriseHost for GitHub Enterprise installations.
package github

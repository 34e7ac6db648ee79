// Package gitlab implements a tracker.Tracker backed by GitLab
// project issues.
package gitlab

// Package tracker defines the issue tracker strategy used to
// report upstream versions that are not supported yet.
//
// The Tracker interface abstracts listing open issues and creating
// new ones. Implementations exist for GitHub and GitLab in
// sub-packages. DryRun wraps any Tracker and only logs the issues
// it would create.
package tracker

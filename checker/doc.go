// Package checker opens a tracker issue for every upstream
// version that has neither a local version directory nor an open
// issue yet.
package checker

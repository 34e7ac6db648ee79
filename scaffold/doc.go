// Package scaffold keeps local version directories in sync with
// upstream experimental builds.
//
// A missing version directory is created from a template
// directory (Dockerfile, entrypoint.sh, requirements.txt), the
// shared download script and a generated README. An existing
// directory only has its download script and README refreshed.
// Files whose content already matches are not rewritten. A
// failure midway can leave a partially written directory behind.
package scaffold

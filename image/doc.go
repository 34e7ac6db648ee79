// Package image derives container image tags and references from
// resolved builds and constructs the docker command lines that
// build and push them.
//
// Everything except Runner is pure: the same resolved build
// always yields the same tag and argument list.
package image

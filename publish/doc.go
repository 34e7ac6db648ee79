// Package publish builds and pushes the images of local version
// directories.
//
// Each directory is planned (resolved to a build and an image
// reference) and then handed to the container runtime, one at a
// time. A failing directory is logged and tallied; the batch
// always runs to the end and reports a Summary.
package publish

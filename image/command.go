package image

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Pablo-Barros/folia-docker/exec"
)

// DefaultBinary is the container runtime CLI.
const DefaultBinary = "docker"

// Target is one image to build: its reference, the build context
// directory and the upstream build baked into it.
type Target struct {
	Ref     string
	Context string
	// Version and Build are passed as build args. A zero Build
	// omits both, letting the Dockerfile pick its defaults.
	Version string
	Build   int
}

// BuildArgs returns the docker arguments building t.
func BuildArgs(t Target) []string {
	args := []string{"build"}

	if t.Version != "" && t.Build > 0 {
		args = append(args,
			"--build-arg", "VERSION="+t.Version,
			"--build-arg", "BUILD="+strconv.Itoa(t.Build),
		)
	}

	return append(args, "-t", t.Ref, t.Context)
}

// PushArgs returns the docker arguments pushing ref.
func PushArgs(ref string) []string {
	return []string{"push", ref}
}

// Runner invokes the container runtime. Output is returned
// verbatim, also on failure.
type Runner struct {
	// Binary defaults to DefaultBinary.
	Binary string
}

// Build runs docker build for t.
func (r Runner) Build(ctx context.Context, t Target) (string, error) {
	out, err := exec.Ex(ctx, "", r.binary(), BuildArgs(t)...)
	if err != nil {
		return out, fmt.Errorf("docker build %s: %w", t.Ref, err)
	}

	return out, nil
}

// Push runs docker push for ref.
func (r Runner) Push(ctx context.Context, ref string) (string, error) {
	out, err := exec.Ex(ctx, "", r.binary(), PushArgs(ref)...)
	if err != nil {
		return out, fmt.Errorf("docker push %s: %w", ref, err)
	}

	return out, nil
}

func (r Runner) binary() string {
	if r.Binary == "" {
		return DefaultBinary
	}

	return r.Binary
}

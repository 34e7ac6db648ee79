package image

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/distribution/reference"

	"github.com/Pablo-Barros/folia-docker/builds"
)

const (
	// DefaultRepository is the image repository under the
	// namespace.
	DefaultRepository = "folia"
	// LatestTag tags the newest stable version.
	LatestTag = "latest"
	// ExperimentalTag tags the newest experimental build.
	ExperimentalTag = "experimental"

	defaultDomain = "docker.io"
	legacyDomain  = "index.docker.io"
)

// ErrInvalidReference reports an image reference docker would
// reject.
var ErrInvalidReference = errors.New("invalid image reference")

// Tag returns the image tag of a resolved build: the bare version
// for stable builds, "{version}-exp{build}" otherwise.
func Tag(res builds.Resolved) string {
	if !res.Experimental() {
		return res.Version
	}

	return res.Version + "-exp" + strconv.Itoa(res.Build)
}

// Naming holds the parts of an image reference that come from
// configuration.
type Naming struct {
	Namespace string
	// Registry is optional; empty means the default registry.
	Registry string
	// Repository defaults to DefaultRepository.
	Repository string
}

// Name joins the configured parts and tag into
// "[registry/]namespace/repository:tag" and validates the result.
func (n Naming) Name(tag string) (string, error) {
	const errCtx = "building image name"

	repo := n.Repository
	if repo == "" {
		repo = DefaultRepository
	}

	name := n.Namespace + "/" + repo + ":" + tag

	domain := defaultDomain
	if reg := strings.TrimSuffix(n.Registry, "/"); reg != "" {
		name = reg + "/" + name
		domain = reg
	}

	if domain == legacyDomain {
		domain = defaultDomain
	}

	named, err := reference.ParseNormalizedNamed(name)
	if err != nil {
		return "", fmt.Errorf(
			"%s: %w: %q: %w", errCtx, ErrInvalidReference, name, err,
		)
	}

	// A namespace that looks like a host ("MyOrg", "a.b") would
	// silently move the image to another registry.
	if got := reference.Domain(named); got != domain {
		return "", fmt.Errorf(
			"%s: %w: %q resolves to registry %q, want %q",
			errCtx, ErrInvalidReference, name, got, domain,
		)
	}

	if reference.IsNameOnly(named) {
		return "", fmt.Errorf(
			"%s: %w: %q has no tag", errCtx, ErrInvalidReference, name,
		)
	}

	return reference.FamiliarString(named), nil
}

// Reference returns the full image reference of a resolved build.
func (n Naming) Reference(res builds.Resolved) (string, error) {
	return n.Name(Tag(res))
}

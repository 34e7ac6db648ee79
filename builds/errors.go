package builds

import "errors"

var (
	// ErrUpstreamUnavailable reports that the build list could
	// not be fetched. Callers continue with the next version.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrNoBuilds reports that a version has nothing
	// publishable. Callers skip the version.
	ErrNoBuilds = errors.New("no builds available")
	// ErrMalformedChannel reports channel metadata that is
	// neither "default" nor "experimental".
	ErrMalformedChannel = errors.New("malformed channel metadata")
)

// Package papermc is a read-only client for the PaperMC build
// hosting API. It lists the versions of a project, the builds
// published for a version together with their release channel,
// and downloads build artifacts.
//
// The client performs plain blocking requests: there is no retry,
// backoff or caching. Transport failures and non-2xx responses are
// reported as errors wrapping ErrUnavailable so callers can tell an
// unreachable upstream apart from a decode problem (ErrDecode).
package papermc

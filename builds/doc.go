// Package builds implements the stable-first build resolution
// policy. Given a version it queries the upstream build list,
// classifies each build by release channel and picks the build to
// publish: the newest "default" (stable) build when one exists,
// otherwise the newest "experimental" build.
//
// Channel lookups that need a round trip to the API are memoized in
// a Cache owned by the caller, so one resolution pass never fetches
// the same build twice and no state outlives the invocation.
//
// When builds exist but none carries recognizable channel metadata,
// the newest build is assumed to be experimental. The same assumption
// applies to single-build classification.
package builds

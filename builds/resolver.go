package builds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Pablo-Barros/folia-docker/papermc"
	"github.com/Pablo-Barros/folia-docker/versions"
)

// Resolver applies a Policy to upstream build lists.
type Resolver struct {
	upstream Upstream
	cache    *Cache
	policy   Policy
}

// NewResolver returns a Resolver reading from upstream. Pass the
// cache scoped to the current invocation; a nil cache gets a fresh
// one.
func NewResolver(
	upstream Upstream,
	cache *Cache,
	policy Policy,
) *Resolver {
	if cache == nil {
		cache = NewCache()
	}

	return &Resolver{
		upstream: upstream,
		cache:    cache,
		policy:   policy,
	}
}

// lookup is the channel classification of one build.
type lookup struct {
	build   int
	channel Channel
	err     error
}

func (l lookup) recognized() bool {
	return l.err == nil
}

func (l lookup) failed() bool {
	return l.err != nil && !errors.Is(l.err, ErrMalformedChannel)
}

// Resolve picks the build to publish for version. Stable builds
// win over newer experimental ones when the policy prefers
// stable. It returns ErrUpstreamUnavailable when the build list
// cannot be fetched and ErrNoBuilds when the list is empty or no
// build could be classified at all.
func (r *Resolver) Resolve(
	ctx context.Context,
	version string,
) (Resolved, error) {
	const errCtx = "resolving build"

	list, err := r.builds(ctx, version)
	if err != nil {
		return Resolved{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	// Newest first; classification stops at the first stable
	// build, so older builds are only looked up when needed.
	scanned := make([]lookup, 0, len(list))

	for i := len(list) - 1; i >= 0; i-- {
		l := r.classify(ctx, version, list[i])
		scanned = append(scanned, l)

		if !l.recognized() {
			continue
		}

		if !r.policy.PreferStable || l.channel == ChannelDefault {
			return r.resolved(version, l), nil
		}
	}

	if r.policy.PreferStable {
		for _, l := range scanned {
			if l.recognized() && l.channel == ChannelExperimental {
				return r.resolved(version, l), nil
			}
		}
	}

	var (
		failed  int
		lastErr error
	)

	for _, l := range scanned {
		if l.failed() {
			failed++
			lastErr = l.err
		}
	}

	if failed == len(scanned) {
		return Resolved{}, fmt.Errorf(
			"%s %s: %w",
			errCtx, version, errors.Join(ErrNoBuilds, lastErr),
		)
	}

	latest := list[len(list)-1].Number

	slog.Warn(
		"no recognizable channel metadata, assuming experimental",
		"version", version,
		"build", latest,
	)

	return Resolved{
		Version: version,
		Build:   latest,
		Channel: ChannelExperimental,
		Assumed: true,
	}, nil
}

// Classify returns the channel of a single build, reusing the
// memoized metadata collected by earlier scans. Unrecognized
// channel metadata is classified as experimental.
func (r *Resolver) Classify(
	ctx context.Context,
	version string,
	build int,
) (Channel, error) {
	const errCtx = "classifying build"

	l := r.classify(ctx, version, papermc.Build{Number: build})
	if l.failed() {
		return "", fmt.Errorf("%s: %w", errCtx, l.err)
	}

	if !l.recognized() {
		slog.Warn(
			"unrecognized channel, assuming experimental",
			"version", version,
			"build", build,
			"error", l.err,
		)

		return ChannelExperimental, nil
	}

	return l.channel, nil
}

// ListAvailable partitions every build of version by channel.
// Builds whose channel cannot be determined are left out.
func (r *Resolver) ListAvailable(
	ctx context.Context,
	version string,
) (Available, error) {
	const errCtx = "listing available builds"

	list, err := r.upstream.Builds(ctx, version)
	if err != nil {
		return Available{}, fmt.Errorf(
			"%s %s: %w: %w",
			errCtx, version, ErrUpstreamUnavailable, err,
		)
	}

	av := Available{Version: version}

	for _, b := range list {
		l := r.classify(ctx, version, b)
		if !l.recognized() {
			slog.Warn(
				"skipping unclassified build",
				"version", version,
				"build", b.Number,
				"error", l.err,
			)

			continue
		}

		switch l.channel {
		case ChannelDefault:
			av.Stable = append(av.Stable, l.build)
			av.LatestStable = l.build
		case ChannelExperimental:
			av.Experimental = append(av.Experimental, l.build)
			av.LatestExperimental = l.build
		}
	}

	return av, nil
}

// LatestIn returns the newest build of version published in
// channel.
func (r *Resolver) LatestIn(
	ctx context.Context,
	version string,
	channel Channel,
) (Resolved, error) {
	const errCtx = "finding latest build"

	list, err := r.builds(ctx, version)
	if err != nil {
		return Resolved{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	for i := len(list) - 1; i >= 0; i-- {
		l := r.classify(ctx, version, list[i])
		if l.recognized() && l.channel == channel {
			return r.resolved(version, l), nil
		}
	}

	return Resolved{}, fmt.Errorf(
		"%s: %w: no %s builds for %s",
		errCtx, ErrNoBuilds, channel, version,
	)
}

// Latest resolves the "latest" sentinel: it walks upstream
// versions newest first and returns the first one with a usable
// build. ChannelExperimental restricts the walk to experimental
// builds; any other channel applies the resolver policy.
func (r *Resolver) Latest(
	ctx context.Context,
	channel Channel,
) (Resolved, error) {
	const errCtx = "resolving latest version"

	all, err := r.Versions(ctx)
	if err != nil {
		return Resolved{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	var (
		noBuilds bool
		lastErr  error
	)

	for _, v := range versions.Newest(all) {
		var (
			res    Resolved
			resErr error
		)

		if channel == ChannelExperimental {
			res, resErr = r.LatestIn(ctx, v, ChannelExperimental)
		} else {
			res, resErr = r.Resolve(ctx, v)
		}

		if resErr == nil {
			return res, nil
		}

		if ctx.Err() != nil {
			return Resolved{}, fmt.Errorf("%s: %w", errCtx, ctx.Err())
		}

		if errors.Is(resErr, ErrNoBuilds) {
			noBuilds = true
		}

		lastErr = resErr

		slog.Debug(
			"version not usable for latest",
			"version", v,
			"error", resErr,
		)
	}

	// An outage on every version is not the same as an empty
	// upstream; only the latter may be skipped by callers.
	if !noBuilds && lastErr != nil {
		return Resolved{}, fmt.Errorf(
			"%s: %w",
			errCtx, errors.Join(ErrUpstreamUnavailable, lastErr),
		)
	}

	return Resolved{}, fmt.Errorf(
		"%s: %w: no version has %s builds",
		errCtx, ErrNoBuilds, channelLabel(channel),
	)
}

// Versions lists the upstream versions in published order.
func (r *Resolver) Versions(ctx context.Context) ([]string, error) {
	all, err := r.upstream.Versions(ctx)
	if err != nil {
		return nil, fmt.Errorf(
			"listing versions: %w: %w", ErrUpstreamUnavailable, err,
		)
	}

	return all, nil
}

// builds fetches the build list and rejects empty lists.
func (r *Resolver) builds(
	ctx context.Context,
	version string,
) ([]papermc.Build, error) {
	list, err := r.upstream.Builds(ctx, version)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: %w: %w", version, ErrUpstreamUnavailable, err,
		)
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("%s: %w", version, ErrNoBuilds)
	}

	return list, nil
}

// classify determines the channel of b, preferring metadata
// carried by the list entry, then the cache, then a single-build
// request.
func (r *Resolver) classify(
	ctx context.Context,
	version string,
	b papermc.Build,
) lookup {
	meta := b

	switch cached, ok := r.cache.Get(version, b.Number); {
	case b.HasChannel():
		r.cache.Put(version, b)
	case ok:
		meta = cached
	default:
		fetched, err := r.upstream.Build(ctx, version, b.Number)
		if err != nil {
			return lookup{
				build: b.Number,
				err: fmt.Errorf(
					"%w: %w", ErrUpstreamUnavailable, err,
				),
			}
		}

		fetched.Number = b.Number
		r.cache.Put(version, fetched)
		meta = fetched
	}

	ch, err := ParseChannel(meta.Channel)
	if err != nil && r.isExperimentalLabel(meta.Channel) {
		return lookup{build: b.Number, channel: ChannelExperimental}
	}

	return lookup{build: b.Number, channel: ch, err: err}
}

func (r *Resolver) isExperimentalLabel(raw string) bool {
	label := r.policy.ExperimentalLabel

	return label != "" &&
		strings.EqualFold(strings.TrimSpace(raw), strings.TrimSpace(label))
}

func (r *Resolver) resolved(version string, l lookup) Resolved {
	return Resolved{
		Version: version,
		Build:   l.build,
		Channel: l.channel,
	}
}

func channelLabel(c Channel) string {
	if c == ChannelExperimental {
		return "experimental"
	}

	return "usable"
}

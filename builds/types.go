package builds

import (
	"context"
	"fmt"
	"strings"

	"github.com/Pablo-Barros/folia-docker/papermc"
)

// Channel is the stability tier of a build.
type Channel string

const (
	// ChannelDefault is the stable channel.
	ChannelDefault Channel = "default"
	// ChannelExperimental is the experimental channel.
	ChannelExperimental Channel = "experimental"
)

// ParseChannel maps an upstream channel label to a Channel.
func ParseChannel(raw string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(raw))) {
	case ChannelDefault:
		return ChannelDefault, nil
	case ChannelExperimental:
		return ChannelExperimental, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrMalformedChannel, raw)
	}
}

// String returns the upstream label.
func (c Channel) String() string {
	return string(c)
}

// Resolved is the build chosen for a version.
type Resolved struct {
	Version string
	Build   int
	Channel Channel
	// Assumed is set when the channel could not be read from
	// upstream metadata and the experimental default was applied.
	Assumed bool
}

// Experimental reports whether the resolved build comes from the
// experimental channel.
func (r Resolved) Experimental() bool {
	return r.Channel != ChannelDefault
}

// Available partitions the builds of a version by channel.
// Latest values are zero when a partition is empty.
type Available struct {
	Version            string
	Stable             []int
	Experimental       []int
	LatestStable       int
	LatestExperimental int
}

// Upstream is the part of the build API the resolver depends on.
// *papermc.Client satisfies it.
type Upstream interface {
	Versions(ctx context.Context) ([]string, error)
	Builds(ctx context.Context, version string) ([]papermc.Build, error)
	Build(ctx context.Context, version string, build int) (papermc.Build, error)
}

// Policy selects how a build is chosen among channels.
type Policy struct {
	// PreferStable picks the newest stable build before
	// considering experimental ones. When false the newest build
	// with a recognized channel wins.
	PreferStable bool
	// ExperimentalLabel is an extra upstream channel label
	// classified as experimental. Empty means none.
	ExperimentalLabel string
}

// DefaultPolicy is the stable-first policy.
func DefaultPolicy() Policy {
	return Policy{PreferStable: true}
}

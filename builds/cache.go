package builds

import "github.com/Pablo-Barros/folia-docker/papermc"

type cacheKey struct {
	version string
	build   int
}

// Cache memoizes single-build lookups by (version, build). It is
// meant to live for one command invocation and is not safe for
// concurrent use.
type Cache struct {
	entries map[cacheKey]papermc.Build
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]papermc.Build)}
}

// Get returns the cached build metadata, if any.
func (c *Cache) Get(version string, build int) (papermc.Build, bool) {
	if c == nil {
		return papermc.Build{}, false
	}

	b, ok := c.entries[cacheKey{version: version, build: build}]

	return b, ok
}

// Put stores build metadata.
func (c *Cache) Put(version string, b papermc.Build) {
	if c == nil {
		return
	}

	c.entries[cacheKey{version: version, build: b.Number}] = b
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}

	return len(c.entries)
}

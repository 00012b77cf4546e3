// Package vfscache implements the bounded, oid-keyed cache of spec.md
// §4.6: a pure optimization that every caller must be correct without
// (every lookup is recomputed via load on a miss), backed by the
// ecosystem's standard generic LRU rather than a hand-rolled one.
package vfscache

import (
	"golang.org/x/sync/singleflight"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hookcell/bup/oid"
)

// DefaultCapacity is used by New when capacity <= 0. It bounds the number
// of distinct oid-keyed entries retained, not their byte size — entries
// here are small decoded values (tree listings), not raw
// object bytes (spec.md §4.6: "caching object bytes" is the store's job,
// not this cache's).
const DefaultCapacity = 4096

// Cache is a bounded mapping from oid to a decoded value. The vfs package
// keeps one Cache per Repo and stores decoded tree listings in it.
// It is safe for concurrent use: lookups that race on the same oid are
// deduplicated by a singleflight.Group so only one caller actually does the
// decode work, matching spec.md §5's requirement that shared-cache access
// be safe under external mutual exclusion without forcing every caller to
// serialize on an explicit lock.
type Cache struct {
	lru   *lru.Cache[oid.Oid, any]
	group singleflight.Group
}

// New returns a Cache bounded at capacity entries. capacity <= 0 uses
// DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l, err := lru.New[oid.Oid, any](capacity)
	if err != nil {
		// Only returned by golang-lru for a non-positive size, which
		// DefaultCapacity and the guard above rule out.
		panic(err)
	}
	return &Cache{lru: l}
}

// Get returns the cached value for o, if any.
func (c *Cache) Get(o oid.Oid) (any, bool) {
	return c.lru.Get(o)
}

// Put stores v under o, evicting the least-recently-used entry if the
// cache is at capacity. Upgrades (spec.md §4.6: "a commit whose meta was
// first seen as a mode and later learned as full Metadata") simply
// overwrite the prior entry for the same oid.
func (c *Cache) Put(o oid.Oid, v any) {
	c.lru.Add(o, v)
}

// GetOrLoad returns the cached value for o, computing and storing it via
// load on a miss. Concurrent GetOrLoad calls for the same o share a single
// in-flight load.
func (c *Cache) GetOrLoad(o oid.Oid, load func() (any, error)) (any, error) {
	if v, ok := c.lru.Get(o); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(o.String(), func() (any, error) {
		if v, ok := c.lru.Get(o); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return nil, err
		}
		c.lru.Add(o, v)
		return v, nil
	})
	return v, err
}

// Clear purges every entry (spec.md §4.6); correctness must not depend on
// what survives.
func (c *Cache) Clear() {
	c.lru.Purge()
}

// Len reports the number of entries currently cached, mostly for tests.
func (c *Cache) Len() int {
	return c.lru.Len()
}

package vfs

import (
	"github.com/hookcell/bup/store"
	"github.com/hookcell/bup/vfscache"
)

// Repo is one VFS handle: an object accessor plus the cache and config it
// is built on. Concurrent callers each need their own Repo (and therefore
// their own Cache) unless they provide external mutual exclusion around
// both the cache and the store (spec.md §5).
type Repo struct {
	Store  store.Store
	Cache  *vfscache.Cache
	Config Config
}

// New wires a Repo around an object accessor with the given Config.
func New(s store.Store, cfg Config) *Repo {
	return &Repo{
		Store:  s,
		Cache:  vfscache.New(cfg.CacheCapacity),
		Config: cfg,
	}
}

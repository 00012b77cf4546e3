// Package store names the interface the VFS consumes from the underlying
// content-addressed object database. Nothing in this package implements an
// actual store: the object store (oid→bytes lookups, ref enumeration), the
// chunker/hasher that writes new objects, and the index that tracks local
// filesystem state are all external collaborators, out of scope for this
// module. Only their interfaces are named here, the way go-git's
// plumbing/storer package names EncodedObjectStorer/ReferenceStorer without
// itself being a storage backend.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/hookcell/bup/oid"
)

// Kind is the type of object Read returned.
type Kind int

const (
	// Blob is a file's (or symlink target's, or chunk's) raw content.
	Blob Kind = iota
	// Tree lists named child oids with modes.
	Tree
	// Commit references a tree plus parents and an author timestamp.
	Commit
	// Tag is a signed or annotated tag object.
	Tag
)

func (k Kind) String() string {
	switch k {
	case Blob:
		return "blob"
	case Tree:
		return "tree"
	case Commit:
		return "commit"
	case Tag:
		return "tag"
	default:
		return "unknown"
	}
}

// ErrNotFound is returned by Read, ResolveRef when the given oid or ref does
// not exist in the store.
var ErrNotFound = errors.New("store: object not found")

// Ref is a named pointer into the store: a branch tip or a tag.
type Ref struct {
	Name string
	Oid  oid.Oid
}

// CommitLogEntry is one entry of a first-parent commit history, as produced
// by LogFirstParents.
type CommitLogEntry struct {
	Commit     oid.Oid
	Tree       oid.Oid
	AuthorTime int64 // seconds since the Unix epoch, UTC
}

// Store is the object accessor the VFS is built on. Reads are idempotent and
// pure; enumerations may race with concurrent writers in the underlying
// store but need only provide a point-in-time snapshot per call. Blocking
// calls take a context so that a caller-supplied deadline can abort an
// in-flight read; the VFS itself performs no internal cancellation (see
// spec.md §5) and simply propagates ctx.Err() when a call is aborted.
type Store interface {
	// Read resolves o to its typed raw bytes. Returns ErrNotFound if o is
	// absent from the store.
	Read(ctx context.Context, o oid.Oid) (Kind, []byte, error)

	// ListRefs enumerates refs (branch tips or tags) whose name has the
	// given prefix. An empty prefix lists everything under that namespace.
	ListRefs(ctx context.Context, prefix string) ([]Ref, error)

	// ResolveRef resolves a single ref name (a branch or tag name) to its
	// target oid.
	ResolveRef(ctx context.Context, name string) (oid.Oid, error)

	// LogFirstParents returns the first-parent commit history starting at
	// (and including) start, most recent first.
	LogFirstParents(ctx context.Context, start oid.Oid) ([]CommitLogEntry, error)
}

// WrapInvalid re-wraps an error from a Store as an invalid-content error,
// for callers that need to distinguish "the store failed" (an I/O problem,
// surfaced unchanged) from "the store succeeded but the bytes don't parse"
// (which VFS callers wrap as vfs.ErrInvalidObject per spec.md §7). It is
// a small helper rather than a type so that every decode site can annotate
// the oid without duplicating the message shape.
func WrapInvalid(o oid.Oid, err error) error {
	return fmt.Errorf("store: invalid object %s: %w", o, err)
}

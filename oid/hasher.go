package oid

import (
	"strconv"
	"sync"

	"github.com/pjbgf/sha1cd"
)

// Kind identifies the object type hashed into the header, mirroring the
// three-word git object header ("blob 7\x00...", "tree 34\x00...").
type Kind string

const (
	KindBlob   Kind = "blob"
	KindTree   Kind = "tree"
	KindCommit Kind = "commit"
)

// Hasher computes the oid of raw object bytes the same way the object store
// that produced them would have: a type+length header followed by the
// content, digested with a collision-detecting SHA1. It exists so that a
// store adapter (or a test fixture) can verify bytes handed back by Read
// match the oid that was asked for, catching corruption before the tree
// decoder ever sees it; the VFS itself never computes a hash to satisfy its
// own path-resolution logic, since oids are supplied by the caller or by
// tree/commit decoding.
type Hasher struct {
	mu sync.Mutex
}

// Sum computes the oid of data for the given object kind.
func (h *Hasher) Sum(kind Kind, data []byte) Oid {
	h.mu.Lock()
	defer h.mu.Unlock()

	hasher := sha1cd.New()
	hasher.Write([]byte(kind))
	hasher.Write([]byte{' '})
	hasher.Write([]byte(strconv.Itoa(len(data))))
	hasher.Write([]byte{0})
	hasher.Write(data)

	return FromBytes(hasher.Sum(nil))
}

// Verify reports whether data hashes to want under the given kind.
func (h *Hasher) Verify(want Oid, kind Kind, data []byte) bool {
	return h.Sum(kind, data) == want
}

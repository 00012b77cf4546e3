// Package storetest is an in-memory store.Store for tests, modeled on
// go-git's storage/memory: a handful of maps, content-addressed by the
// same hasher the rest of the module uses, plus small builder helpers for
// assembling fixtures (blobs, trees, chained commits, refs) without
// hand-computing oids.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hookcell/bup/oid"
	"github.com/hookcell/bup/store"
	"github.com/hookcell/bup/treeobj"
)

type object struct {
	kind store.Kind
	data []byte
}

type commitMeta struct {
	tree       oid.Oid
	parent     oid.Oid
	authorTime int64
}

// Store is an in-memory store.Store implementation. The zero value is not
// usable; construct one with New.
type Store struct {
	hasher oid.Hasher

	objects map[oid.Oid]object
	commits map[oid.Oid]commitMeta
	refs    map[string]oid.Oid
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		objects: make(map[oid.Oid]object),
		commits: make(map[oid.Oid]commitMeta),
		refs:    make(map[string]oid.Oid),
	}
}

func (s *Store) Read(_ context.Context, o oid.Oid) (store.Kind, []byte, error) {
	obj, ok := s.objects[o]
	if !ok {
		return 0, nil, store.ErrNotFound
	}
	return obj.kind, obj.data, nil
}

func (s *Store) ListRefs(_ context.Context, prefix string) ([]store.Ref, error) {
	var out []store.Ref
	for name, o := range s.refs {
		if strings.HasPrefix(name, prefix) {
			out = append(out, store.Ref{Name: name, Oid: o})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ResolveRef(_ context.Context, name string) (oid.Oid, error) {
	o, ok := s.refs[name]
	if !ok {
		return oid.Zero, store.ErrNotFound
	}
	return o, nil
}

func (s *Store) LogFirstParents(_ context.Context, start oid.Oid) ([]store.CommitLogEntry, error) {
	var out []store.CommitLogEntry
	seen := make(map[oid.Oid]bool)
	for cur := start; !cur.IsZero(); {
		if seen[cur] {
			return nil, fmt.Errorf("storetest: cyclic commit parent chain at %s", cur)
		}
		seen[cur] = true

		cm, ok := s.commits[cur]
		if !ok {
			return nil, store.ErrNotFound
		}
		out = append(out, store.CommitLogEntry{Commit: cur, Tree: cm.tree, AuthorTime: cm.authorTime})
		cur = cm.parent
	}
	return out, nil
}

// PutBlob stores data as a blob and returns its content-addressed oid.
func (s *Store) PutBlob(data []byte) oid.Oid {
	return s.put(store.Blob, oid.KindBlob, data)
}

// PutTreeBytes stores already-encoded tree bytes (see treeobj.Encode).
func (s *Store) PutTreeBytes(data []byte) oid.Oid {
	return s.put(store.Tree, oid.KindTree, data)
}

// PutTree encodes entries (and an optional .bupm oid) as a tree object
// and stores it, wrapping treeobj.Encode.
func (s *Store) PutTree(entries []treeobj.Entry, bupm *oid.Oid) oid.Oid {
	return s.PutTreeBytes(treeobj.Encode(entries, bupm))
}

// PutBupm encodes a metadata stream and stores it as a blob, wrapping
// treeobj.EncodeStream. Tests needing a chunked .bupm should instead
// build a tree of blob extents and pass its oid as Bupm.
func (s *Store) PutBupm(records []*treeobj.Metadata) oid.Oid {
	return s.PutBlob(treeobj.EncodeStream(records))
}

// PutCommit stores a synthetic commit object pointing at tree, chained to
// parent (oid.Zero for a root commit), and records it for
// LogFirstParents. authorTime is seconds since the Unix epoch, UTC.
func (s *Store) PutCommit(tree, parent oid.Oid, authorTime int64) oid.Oid {
	var body strings.Builder
	fmt.Fprintf(&body, "tree %s\n", tree)
	if !parent.IsZero() {
		fmt.Fprintf(&body, "parent %s\n", parent)
	}
	fmt.Fprintf(&body, "author storetest <storetest@localhost> %d +0000\n", authorTime)

	data := []byte(body.String())
	h := s.put(store.Commit, oid.KindCommit, data)
	s.commits[h] = commitMeta{tree: tree, parent: parent, authorTime: authorTime}
	return h
}

func (s *Store) put(kind store.Kind, hkind oid.Kind, data []byte) oid.Oid {
	h := s.hasher.Sum(hkind, data)
	s.objects[h] = object{kind: kind, data: data}
	return h
}

// SetBranch points a branch name (e.g. "test") at a commit tip.
func (s *Store) SetBranch(name string, tip oid.Oid) {
	s.refs[name] = tip
}

// SetTag points a tag at a commit, under the "tags/" ref namespace
// tagsContents expects (spec.md §4.7).
func (s *Store) SetTag(name string, commit oid.Oid) {
	s.refs["tags/"+name] = commit
}

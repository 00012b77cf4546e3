package vfs

import (
	"context"

	"dario.cat/mergo"

	"github.com/hookcell/bup/treeobj"
)

// AugmentItemMeta normalizes item for callers that require full metadata
// (spec.md §4.4). It is idempotent: augmenting an already-full item whose
// size is already set (or when include_size is false) returns the exact
// same pointer, not a copy.
func AugmentItemMeta(ctx context.Context, repo *Repo, item *Item, includeSize bool) (*Item, error) {
	if item.Meta.IsFull() && (!includeSize || item.Meta.Full().Size != nil) {
		return item, nil
	}

	working := Copy(item)
	if !working.Meta.IsFull() {
		working.Meta = FullMeta(synthesizeMeta(working.Mode(), repo.Config))
	}

	if working.IsSymlink() {
		target, err := Readlink(ctx, repo, working)
		if err != nil {
			return nil, err
		}
		size := int64(len(target))
		working.Meta.Full().SymlinkTarget = &target
		working.Meta.Full().Size = &size
		return working, nil
	}

	if includeSize && working.Meta.Full().Size == nil {
		size, err := ItemSize(ctx, repo, working)
		if err != nil {
			return nil, err
		}
		working.Meta.Full().Size = &size
	}
	return working, nil
}

// synthesizeMeta builds the placeholder Metadata a bare mode augments
// into: the real mode plus zeros for uid/gid/atime/mtime/ctime (spec.md
// §4.4), unless the repo's Config configures a non-zero synthetic owner
// to report for placeholders instead of the zero value.
func synthesizeMeta(mode uint32, cfg Config) *treeobj.Metadata {
	md := &treeobj.Metadata{Mode: mode}
	// mergo only fills md's zero-valued fields from cfg.SyntheticMeta, so
	// an unconfigured (zero-value) SyntheticMeta leaves md untouched.
	_ = mergo.Merge(md, cfg.SyntheticMeta)
	return md
}

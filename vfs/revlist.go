package vfs

import (
	"context"
	"fmt"
	"time"
)

// revDateLayout renders a commit's author timestamp the way bup names a
// saved revision directory: local time, second resolution.
const revDateLayout = "2006-01-02-150405"

// revListContents synthesizes a branch's virtual revision-list directory
// (spec.md §4.8): "." carrying the tip tree's own metadata, one entry per
// commit on the first-parent chain named after its author timestamp
// (disambiguated when two commits land on the same second), and a
// "latest" entry holding the tip's commit item under a second name.
func revListContents(ctx context.Context, repo *Repo, item *Item) ([]DirEntry, error) {
	log, err := repo.Store.LogFirstParents(ctx, item.Oid)
	if err != nil {
		return nil, err
	}
	if len(log) == 0 {
		return nil, fmt.Errorf("%w: revision list %s has no commits", ErrInvalidObject, item.Oid)
	}

	tip := log[0]
	listing, err := decodeTreeListing(ctx, repo, tip.Tree)
	if err != nil {
		return nil, err
	}

	dot := Copy(item)
	dot.Meta = listing.DotMeta
	out := make([]DirEntry, 0, len(log)+2)
	out = append(out, DirEntry{Name: ".", Item: dot})

	names := make([]string, len(log))
	for i, entry := range log {
		names[i] = time.Unix(entry.AuthorTime, 0).Local().Format(revDateLayout)
	}
	names = ReverseSuffixDuplicates(names)

	var tipItem *Item
	for i, entry := range log {
		commitItem := NewCommit(entry.Tree, entry.Commit, BareMode(repo.Config.DefaultDirMode))
		out = append(out, DirEntry{Name: names[i], Item: commitItem})
		if i == 0 {
			tipItem = commitItem
		}
	}

	// "latest" is the same commit item as the tip's dated entry, under a
	// second name (spec.md §4.8: "(\"latest\", commit_item_for_tip)") — not
	// a symlink redirect, so resolving through it keeps "latest" itself as
	// the chain entry name rather than replacing it with the dated name.
	out = append(out, DirEntry{Name: "latest", Item: tipItem})

	return out, nil
}

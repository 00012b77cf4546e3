package vfs

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

// Readlink returns the target string of a symlink item (spec.md §4.3).
// When item's meta is already full and carries a symlink_target, that
// value is returned without I/O; otherwise the target is read from the
// blob at item.Oid.
func Readlink(ctx context.Context, repo *Repo, item *Item) (string, error) {
	if !item.IsSymlink() {
		return "", fmt.Errorf("%w: %s", ErrNotASymlink, item.Variant)
	}
	if item.Variant == VariantFakeLink {
		return item.Target, nil
	}
	if full := item.Meta.Full(); full != nil && full.SymlinkTarget != nil {
		return *full.SymlinkTarget, nil
	}
	data, err := readContent(ctx, repo, item.Oid)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ItemSize returns the logical byte size of item (spec.md §4.3): a
// symlink's target length, a file's blob length (or the sum of a chunked
// file's extents), zero for everything else. A full Metadata's own size
// field short-circuits this without I/O.
func ItemSize(ctx context.Context, repo *Repo, item *Item) (int64, error) {
	if full := item.Meta.Full(); full != nil && full.Size != nil {
		return *full.Size, nil
	}
	if item.IsSymlink() {
		target, err := Readlink(ctx, repo, item)
		if err != nil {
			return 0, err
		}
		return int64(len(target)), nil
	}
	switch item.Variant {
	case VariantChunked:
		data, err := readContent(ctx, repo, item.Oid)
		if err != nil {
			return 0, err
		}
		return int64(len(data)), nil
	case VariantItem:
		if item.Mode()&unix.S_IFMT != unix.S_IFREG {
			return 0, nil
		}
		data, err := readContent(ctx, repo, item.Oid)
		if err != nil {
			return 0, err
		}
		return int64(len(data)), nil
	default:
		return 0, nil
	}
}

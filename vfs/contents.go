package vfs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hookcell/bup/oid"
	"github.com/hookcell/bup/store"
	"github.com/hookcell/bup/treeobj"
)

// DirEntry is one (name, child item) pair yielded by Contents, always
// beginning with ("." , item-with-self-metadata).
type DirEntry struct {
	Name string
	Item *Item
}

// Contents yields the directory entries for a directory-like item
// (spec.md §4.7). It returns an error wrapping ErrNotADirectory if
// IsDirLike(item) is false.
func Contents(ctx context.Context, repo *Repo, item *Item) ([]DirEntry, error) {
	if !item.IsDirLike() {
		return nil, fmt.Errorf("%w: %s is not directory-like", ErrNotADirectory, item.Variant)
	}

	switch item.Variant {
	case VariantRoot:
		return rootContents(ctx, repo)
	case VariantTags:
		return tagsContents(ctx, repo)
	case VariantRevList:
		return revListContents(ctx, repo, item)
	case VariantCommit, VariantItem:
		return treeContents(ctx, repo, item)
	default:
		return nil, fmt.Errorf("%w: %s is not directory-like", ErrNotADirectory, item.Variant)
	}
}

func rootContents(ctx context.Context, repo *Repo) ([]DirEntry, error) {
	root := NewRoot()
	out := []DirEntry{
		{Name: ".", Item: root},
		{Name: ".tag", Item: NewTags()},
	}

	refs, err := repo.Store.ListRefs(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if !isBranchRef(ref.Name) {
			continue
		}
		out = append(out, DirEntry{
			Name: ref.Name,
			Item: NewRevList(ref.Oid, BareMode(repo.Config.DefaultDirMode)),
		})
	}
	return out, nil
}

func tagsContents(ctx context.Context, repo *Repo) ([]DirEntry, error) {
	out := []DirEntry{{Name: ".", Item: NewTags()}}

	refs, err := repo.Store.ListRefs(ctx, "tags/")
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		item, err := commitToItem(ctx, repo, ref.Oid, BareMode(repo.Config.DefaultDirMode))
		if err != nil {
			return nil, err
		}
		out = append(out, DirEntry{Name: tagLeafName(ref.Name), Item: item})
	}
	return out, nil
}

// commitToItem builds a VariantCommit item from a commit oid, taking its
// tree oid from the first entry of the store's first-parent log.
func commitToItem(ctx context.Context, repo *Repo, commitOid oid.Oid, meta Meta) (*Item, error) {
	entries, err := repo.Store.LogFirstParents(ctx, commitOid)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 || entries[0].Commit != commitOid {
		return nil, fmt.Errorf("%w: commit %s not found", ErrInvalidObject, commitOid)
	}
	return NewCommit(entries[0].Tree, commitOid, meta), nil
}

// treeListing is the cached decode of one tree object: the metadata for
// "." plus each child's name, kind, oid and metadata, in on-wire order.
type treeListing struct {
	DotMeta  Meta
	Children []childEntry
}

type childEntry struct {
	Name string
	Kind treeobj.Kind
	Oid  oid.Oid
	Meta Meta
}

func treeContents(ctx context.Context, repo *Repo, item *Item) ([]DirEntry, error) {
	listing, err := decodeTreeListing(ctx, repo, item.Oid)
	if err != nil {
		return nil, err
	}

	dot := Copy(item)
	dot.Meta = listing.DotMeta
	out := make([]DirEntry, 0, len(listing.Children)+1)
	out = append(out, DirEntry{Name: ".", Item: dot})

	for _, c := range listing.Children {
		child, err := childItem(ctx, repo, c)
		if err != nil {
			return nil, err
		}
		out = append(out, DirEntry{Name: c.Name, Item: child})
	}
	return out, nil
}

func childItem(ctx context.Context, repo *Repo, c childEntry) (*Item, error) {
	switch c.Kind {
	case treeobj.KindChunked:
		return NewChunked(c.Oid, c.Meta), nil
	case treeobj.KindCommit:
		return commitToItem(ctx, repo, c.Oid, c.Meta)
	default:
		return NewLeaf(c.Oid, c.Meta), nil
	}
}

func decodeTreeListing(ctx context.Context, repo *Repo, treeOid oid.Oid) (*treeListing, error) {
	v, err := repo.Cache.GetOrLoad(treeOid, func() (any, error) {
		return buildTreeListing(ctx, repo, treeOid)
	})
	if err != nil {
		return nil, err
	}
	return v.(*treeListing), nil
}

func buildTreeListing(ctx context.Context, repo *Repo, treeOid oid.Oid) (*treeListing, error) {
	kind, data, err := repo.Store.Read(ctx, treeOid)
	if err != nil {
		return nil, err
	}
	if kind != store.Tree {
		return nil, fmt.Errorf("%w: %s is not a tree object", ErrInvalidObject, treeOid)
	}

	tree, err := treeobj.Decode(data)
	if err != nil {
		return nil, wrapInvalid(err)
	}

	var mdReader *treeobj.Reader
	if tree.Bupm != nil {
		bupmBytes, err := readContent(ctx, repo, *tree.Bupm)
		if err != nil {
			return nil, err
		}
		mdReader = treeobj.NewReader(bytes.NewReader(bupmBytes))
	}

	nextMeta := func() (*treeobj.Metadata, error) {
		if mdReader == nil {
			return nil, nil
		}
		m, err := mdReader.Next()
		if err == io.EOF {
			mdReader = nil
			return nil, nil
		}
		if err != nil {
			return nil, wrapInvalid(err)
		}
		return m, nil
	}

	dotRecord, err := nextMeta()
	if err != nil {
		return nil, err
	}
	listing := &treeListing{DotMeta: metaOrDefault(dotRecord, repo.Config.DefaultDirMode)}

	entries, err := tree.Entries()
	if err != nil {
		return nil, wrapInvalid(err)
	}

	for _, e := range entries {
		record, err := nextMeta()
		if err != nil {
			return nil, err
		}
		listing.Children = append(listing.Children, childEntry{
			Name: e.Name,
			Kind: e.Kind,
			Oid:  e.Oid,
			Meta: metaOrDefault(record, defaultModeFor(e.Kind, repo.Config)),
		})
	}

	return listing, nil
}

func metaOrDefault(m *treeobj.Metadata, fallbackMode uint32) Meta {
	if m != nil {
		return FullMeta(m)
	}
	return BareMode(fallbackMode)
}

func defaultModeFor(kind treeobj.Kind, cfg Config) uint32 {
	switch kind {
	case treeobj.KindSymlink:
		return cfg.DefaultSymlinkMode
	case treeobj.KindDir, treeobj.KindCommit:
		return cfg.DefaultDirMode
	default: // KindFile, KindChunked
		return cfg.DefaultFileMode
	}
}

// readContent reads the logical byte content addressed by o: a blob's
// bytes directly, or — for a chunked file (or a chunked .bupm stream) —
// the concatenation of its extents in tree order.
func readContent(ctx context.Context, repo *Repo, o oid.Oid) ([]byte, error) {
	kind, data, err := repo.Store.Read(ctx, o)
	if err != nil {
		return nil, err
	}
	switch kind {
	case store.Blob:
		return data, nil
	case store.Tree:
		tree, err := treeobj.Decode(data)
		if err != nil {
			return nil, wrapInvalid(err)
		}
		entries, err := tree.Entries()
		if err != nil {
			return nil, wrapInvalid(err)
		}
		var buf []byte
		for _, e := range entries {
			chunk, err := readContent(ctx, repo, e.Oid)
			if err != nil {
				return nil, err
			}
			buf = append(buf, chunk...)
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("%w: %s is neither a blob nor a tree", ErrInvalidObject, o)
	}
}

func wrapInvalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidObject, err)
}

const tagRefPrefix = "tags/"

func isBranchRef(name string) bool {
	return name != "" && !strings.HasPrefix(name, tagRefPrefix)
}

func tagLeafName(refName string) string {
	return strings.TrimPrefix(refName, tagRefPrefix)
}

package vfs

import (
	"golang.org/x/sys/unix"

	"github.com/hookcell/bup/oid"
	"github.com/hookcell/bup/treeobj"
)

// Variant is the closed set of VFS node kinds (spec.md §3).
type Variant int

const (
	// VariantRoot is the VFS root "/".
	VariantRoot Variant = iota
	// VariantTags is the synthesized "/.tag" directory.
	VariantTags
	// VariantRevList is a per-branch virtual directory.
	VariantRevList
	// VariantCommit is a single saved snapshot.
	VariantCommit
	// VariantItem is a generic leaf: file, symlink, or subtree.
	VariantItem
	// VariantChunked is a file whose content is split into sub-blobs.
	VariantChunked
	// VariantFakeLink is a synthesized symlink. Nothing in this package
	// produces one; "latest" is a VariantCommit (see revlist.go).
	VariantFakeLink
)

func (v Variant) String() string {
	switch v {
	case VariantRoot:
		return "root"
	case VariantTags:
		return "tags"
	case VariantRevList:
		return "revlist"
	case VariantCommit:
		return "commit"
	case VariantItem:
		return "item"
	case VariantChunked:
		return "chunked"
	case VariantFakeLink:
		return "fakelink"
	default:
		return "unknown"
	}
}

// Meta is either a bare POSIX mode (a placeholder) or a fully populated
// Metadata record. Exactly one of the two is meaningful at a time: Full
// nil means "bare mode", non-nil means "augmented".
type Meta struct {
	mode uint32
	full *treeobj.Metadata
}

// BareMode wraps a placeholder mode.
func BareMode(mode uint32) Meta {
	return Meta{mode: mode}
}

// FullMeta wraps an already-populated Metadata record.
func FullMeta(m *treeobj.Metadata) Meta {
	return Meta{full: m, mode: m.Mode}
}

// IsFull reports whether this Meta carries a full Metadata record.
func (m Meta) IsFull() bool {
	return m.full != nil
}

// Mode returns the mode regardless of which form Meta is in, per
// spec.md §4.3's item_mode.
func (m Meta) Mode() uint32 {
	if m.full != nil {
		return m.full.Mode
	}
	return m.mode
}

// Full returns the full Metadata record, or nil if this Meta is still a
// bare mode.
func (m Meta) Full() *treeobj.Metadata {
	return m.full
}

// Item is a tagged variant representing one VFS node, as reached by the
// resolver or by listing a directory (spec.md §3).
type Item struct {
	Variant Variant
	Oid     oid.Oid // meaning depends on Variant; see the New* constructors
	COid    oid.Oid // VariantCommit only: the commit object's own oid
	Target  string  // VariantFakeLink only: the synthesized symlink target
	Meta    Meta
}

// NewRoot returns the item for "/".
func NewRoot() *Item {
	return &Item{Variant: VariantRoot, Meta: BareMode(unix.S_IFDIR | 0755)}
}

// NewTags returns the item for "/.tag".
func NewTags() *Item {
	return &Item{Variant: VariantTags, Meta: BareMode(unix.S_IFDIR | 0755)}
}

// NewRevList returns a branch's virtual revision-list directory. oid is
// the branch tip's commit oid.
func NewRevList(tip oid.Oid, meta Meta) *Item {
	return &Item{Variant: VariantRevList, Oid: tip, Meta: meta}
}

// NewCommit returns a single saved snapshot. treeOid is the commit's tree;
// commitOid is the commit object itself.
func NewCommit(treeOid, commitOid oid.Oid, meta Meta) *Item {
	return &Item{Variant: VariantCommit, Oid: treeOid, COid: commitOid, Meta: meta}
}

// NewLeaf returns a generic file/symlink/subtree item.
func NewLeaf(o oid.Oid, meta Meta) *Item {
	return &Item{Variant: VariantItem, Oid: o, Meta: meta}
}

// NewChunked returns a chunked-file item: its content is the tree at oid,
// each entry an extent.
func NewChunked(o oid.Oid, meta Meta) *Item {
	return &Item{Variant: VariantChunked, Oid: o, Meta: meta}
}

// NewFakeLink returns a synthesized symlink whose target is the given string.
func NewFakeLink(target string, meta Meta) *Item {
	return &Item{Variant: VariantFakeLink, Target: target, Meta: meta}
}

// Mode returns item.Meta's mode (spec.md §4.3's item_mode).
func (it *Item) Mode() uint32 {
	return it.Meta.Mode()
}

// IsSymlink reports whether item's mode bits mark it a symlink.
func (it *Item) IsSymlink() bool {
	if it.Variant == VariantFakeLink {
		return true
	}
	return it.Variant == VariantItem && it.Mode()&unix.S_IFMT == unix.S_IFLNK
}

// IsDirLike reports whether item can be traversed into via Contents.
// Root, Tags, RevList and Commit are always directory-like; a generic
// Item is directory-like only when its mode says so (a subtree); a
// chunked file never is (spec.md §4.5 step 3a).
func (it *Item) IsDirLike() bool {
	switch it.Variant {
	case VariantRoot, VariantTags, VariantRevList, VariantCommit:
		return true
	case VariantItem:
		return it.Mode()&unix.S_IFMT == unix.S_IFDIR
	default:
		return false
	}
}

// Copy returns a deep clone of item: if Meta carries a full Metadata
// record, the clone's copy is independently owned, so mutating it never
// affects the original (spec.md §3, "copy_item").
func Copy(item *Item) *Item {
	if item == nil {
		return nil
	}
	c := *item
	if item.Meta.full != nil {
		c.Meta = Meta{mode: item.Meta.mode, full: item.Meta.full.Clone()}
	}
	return &c
}

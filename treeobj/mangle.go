package treeobj

import (
	"fmt"
	"strings"
)

// Kind is the closed set of tree-entry kinds the name-mangling scheme can
// distinguish. A raw gitmode alone cannot tell a chunked file or a nested
// commit apart from an ordinary subdirectory, since both are stored as a
// tree and therefore carry the directory gitmode; the mangled name's
// trailing tag resolves the ambiguity.
type Kind int

const (
	KindFile Kind = iota
	KindChunked
	KindSymlink
	KindDir
	KindCommit
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindChunked:
		return "chunked"
	case KindSymlink:
		return "symlink"
	case KindDir:
		return "dir"
	case KindCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// Raw git modes. Only these four are unambiguous on their own; everything
// stored under the directory gitmode needs the mangled name's tag to be
// told apart.
const (
	GitModeDir     uint32 = 0040000
	GitModeFile    uint32 = 0100644
	GitModeExec    uint32 = 0100755
	GitModeSymlink uint32 = 0120000
)

const (
	tagChunked   = ".bup"
	tagCommit    = ".bupc"
	escapeSuffix = ".bupl"
)

func hasReservedSuffix(name string) bool {
	return strings.HasSuffix(name, tagChunked) ||
		strings.HasSuffix(name, tagCommit) ||
		strings.HasSuffix(name, escapeSuffix)
}

// Mangle encodes name together with kind into the tree entry's on-wire
// name. File, symlink and directory entries are left untouched unless their
// literal name collides with a reserved tag, in which case an escape
// suffix is appended so Demangle can still recover the original name
// unambiguously.
func Mangle(name string, kind Kind) string {
	switch kind {
	case KindChunked:
		return name + tagChunked
	case KindCommit:
		return name + tagCommit
	default:
		if hasReservedSuffix(name) {
			return name + escapeSuffix
		}
		return name
	}
}

// Demangle recovers the user-visible name and Kind from a tree entry's raw
// gitmode and mangled on-wire name. It returns ErrInvalidObject for an
// unrecognized gitmode, per spec: "unknown kind tag → InvalidObject".
func Demangle(gitmode uint32, mangled string) (name string, kind Kind, err error) {
	switch gitmode {
	case GitModeSymlink:
		return strings.TrimSuffix(mangled, escapeSuffix), KindSymlink, nil
	case GitModeFile, GitModeExec:
		return strings.TrimSuffix(mangled, escapeSuffix), KindFile, nil
	case GitModeDir:
		switch {
		case strings.HasSuffix(mangled, tagChunked):
			return strings.TrimSuffix(mangled, tagChunked), KindChunked, nil
		case strings.HasSuffix(mangled, tagCommit):
			return strings.TrimSuffix(mangled, tagCommit), KindCommit, nil
		case strings.HasSuffix(mangled, escapeSuffix):
			return strings.TrimSuffix(mangled, escapeSuffix), KindDir, nil
		default:
			return mangled, KindDir, nil
		}
	default:
		return "", 0, fmt.Errorf("%w: unrecognized gitmode %o", ErrInvalidObject, gitmode)
	}
}

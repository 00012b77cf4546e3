package treeobj

import (
	"fmt"
	"io"

	"github.com/hookcell/bup/oid"
)

// Entry is one decoded, demangled tree entry.
type Entry struct {
	Name    string // demangled, user-visible
	Mangled string // as it appeared on the wire
	Kind    Kind
	GitMode uint32
	Oid     oid.Oid
}

// bupmEntryName is the reserved mangled name of the embedded metadata
// stream entry. It is never handed to callers as a regular Entry.
const bupmEntryName = ".bupm"

// Tree is a parsed tree object: an ordered sequence of entries plus,
// separately, the oid of the embedded .bupm metadata stream when present.
// Parsing the entry sequence is deferred to Iter/Entries so that a caller
// resolving a single name does not pay for decoding every entry.
type Tree struct {
	Bupm *oid.Oid
	raw  []byte // tree wire bytes with the .bupm entry already filtered out
}

// Decode parses the raw bytes of a tree object. It performs the single
// up-front scan needed to split off the .bupm side-channel (mirroring
// bup's own tree_data_and_bupm); decoding the remaining entries themselves
// stays lazy, driven by Iter.
func Decode(data []byte) (*Tree, error) {
	filtered, bupm, err := splitBupm(data)
	if err != nil {
		return nil, err
	}
	return &Tree{Bupm: bupm, raw: filtered}, nil
}

// splitBupm scans data once, removing any entry whose on-wire name is
// exactly .bupm (the name is compared as-is, not demangled) and returning its oid
// separately. It does not demangle or validate the remaining entries; that
// happens lazily in Iter.
func splitBupm(data []byte) ([]byte, *oid.Oid, error) {
	var out []byte
	var bupm *oid.Oid

	rest := data
	for len(rest) > 0 {
		entryStart := rest
		gitmode, name, tail, err := scanHeader(rest)
		if err != nil {
			return nil, nil, err
		}
		if len(tail) < oid.Size {
			return nil, nil, fmt.Errorf("%w: truncated tree entry", ErrInvalidObject)
		}
		entryLen := len(entryStart) - len(tail) + oid.Size
		entryBytes := entryStart[:entryLen]
		rest = entryStart[entryLen:]

		if name == bupmEntryName {
			o := oid.FromBytes(tail[:oid.Size])
			bupm = &o
			continue
		}

		_ = gitmode
		out = append(out, entryBytes...)
	}

	return out, bupm, nil
}

// scanHeader parses the "gitmode SP mangled_name NUL" prefix of one entry
// and returns the remaining bytes (which begin with the 20-byte oid).
func scanHeader(data []byte) (gitmode uint32, name string, rest []byte, err error) {
	sp := indexByte(data, ' ')
	if sp < 0 {
		return 0, "", nil, fmt.Errorf("%w: missing mode separator", ErrInvalidObject)
	}
	gitmode, err = parseOctal(data[:sp])
	if err != nil {
		return 0, "", nil, err
	}

	nameStart := data[sp+1:]
	nul := indexByte(nameStart, 0)
	if nul < 0 {
		return 0, "", nil, fmt.Errorf("%w: missing name terminator", ErrInvalidObject)
	}

	return gitmode, string(nameStart[:nul]), nameStart[nul+1:], nil
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

func parseOctal(b []byte) (uint32, error) {
	var v uint32
	if len(b) == 0 {
		return 0, fmt.Errorf("%w: empty mode", ErrInvalidObject)
	}
	for _, c := range b {
		if c < '0' || c > '7' {
			return 0, fmt.Errorf("%w: non-octal mode byte %q", ErrInvalidObject, c)
		}
		v = v*8 + uint32(c-'0')
	}
	return v, nil
}

// EntryIter lazily demangles and yields Entry values, one tree-wire entry
// at a time.
type EntryIter struct {
	rest []byte
}

// Iter returns a fresh iterator over t's non-.bupm entries, in on-wire
// order.
func (t *Tree) Iter() *EntryIter {
	return &EntryIter{rest: t.raw}
}

// Next returns the next entry, or io.EOF once exhausted.
func (it *EntryIter) Next() (Entry, error) {
	if len(it.rest) == 0 {
		return Entry{}, io.EOF
	}

	gitmode, mangled, tail, err := scanHeader(it.rest)
	if err != nil {
		return Entry{}, err
	}
	if len(tail) < oid.Size {
		return Entry{}, fmt.Errorf("%w: truncated tree entry", ErrInvalidObject)
	}
	entryOid := oid.FromBytes(tail[:oid.Size])
	it.rest = tail[oid.Size:]

	name, kind, err := Demangle(gitmode, mangled)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Name:    name,
		Mangled: mangled,
		Kind:    kind,
		GitMode: gitmode,
		Oid:     entryOid,
	}, nil
}

// Entries drains the iterator fully. Convenience for callers (directory
// listings, tests) that need the whole ordered sequence at once rather
// than streaming it.
func (t *Tree) Entries() ([]Entry, error) {
	var out []Entry
	it := t.Iter()
	for {
		e, err := it.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}

// Encode serializes entries (plus, if bupm is non-nil, a .bupm entry) back
// into tree wire bytes. It exists primarily so tests and storetest fixtures
// can build trees without hand-assembling the wire format; the VFS itself
// never writes objects.
func Encode(entries []Entry, bupm *oid.Oid) []byte {
	all := make([]Entry, 0, len(entries)+1)
	all = append(all, entries...)
	if bupm != nil {
		all = append(all, Entry{Mangled: bupmEntryName, GitMode: GitModeFile, Oid: *bupm})
	}

	var out []byte
	for _, e := range all {
		mangled := e.Mangled
		if mangled == "" {
			mangled = Mangle(e.Name, e.Kind)
		}
		out = append(out, []byte(fmt.Sprintf("%o ", e.GitMode))...)
		out = append(out, []byte(mangled)...)
		out = append(out, 0)
		out = append(out, e.Oid[:]...)
	}
	return out
}

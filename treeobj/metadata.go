package treeobj

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Metadata is one decoded record from a directory's .bupm stream: mode,
// ownership, timestamps, and (when applicable) a symlink target and a
// cached size. Size and SymlinkTarget are pointers since "absent" and
// "zero" are distinct on the wire.
type Metadata struct {
	Mode  uint32
	Uid   uint32
	Gid   uint32
	Atime int64
	Mtime int64
	Ctime int64

	SymlinkTarget *string
	Size          *int64
}

// Clone returns a deep copy, so that mutating the result never affects the
// original — augmentation always produces a new Metadata rather than
// mutating one in place (spec.md §9, "Immutable items + copy-on-augment").
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	c := *m
	if m.SymlinkTarget != nil {
		t := *m.SymlinkTarget
		c.SymlinkTarget = &t
	}
	if m.Size != nil {
		sz := *m.Size
		c.Size = &sz
	}
	return &c
}

const (
	flagHasSymlink byte = 1 << 0
	flagHasSize    byte = 1 << 1
)

// Reader pulls Metadata records one at a time from a .bupm stream (the
// concatenated content of the .bupm blob, or of a chunked .bupm file's
// extents). Records are length-prefixed so that unknown trailing fields —
// added by a newer metadata writer — can be skipped rather than rejected.
type Reader struct {
	r io.Reader
}

// NewReader wraps r as a metadata-record stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next returns the next record, or io.EOF once the stream is exhausted.
// io.EOF is only returned when exhaustion falls exactly on a record
// boundary; a stream that ends mid-record surfaces ErrInvalidObject.
func (mr *Reader) Next() (*Metadata, error) {
	var length uint32
	if err := binary.Read(mr.r, binary.BigEndian, &length); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: truncated metadata length: %v", ErrInvalidObject, err)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(mr.r, buf); err != nil {
		return nil, fmt.Errorf("%w: truncated metadata record: %v", ErrInvalidObject, err)
	}

	return decodeRecord(buf)
}

func decodeRecord(buf []byte) (*Metadata, error) {
	const fixedLen = 4*3 + 8*3 + 1 // mode,uid,gid + 3x8 timestamps + flags
	if len(buf) < fixedLen {
		return nil, fmt.Errorf("%w: short metadata record", ErrInvalidObject)
	}

	m := &Metadata{}
	off := 0
	m.Mode = binary.BigEndian.Uint32(buf[off:])
	off += 4
	m.Uid = binary.BigEndian.Uint32(buf[off:])
	off += 4
	m.Gid = binary.BigEndian.Uint32(buf[off:])
	off += 4
	m.Atime = int64(binary.BigEndian.Uint64(buf[off:]))
	off += 8
	m.Mtime = int64(binary.BigEndian.Uint64(buf[off:]))
	off += 8
	m.Ctime = int64(binary.BigEndian.Uint64(buf[off:]))
	off += 8

	flags := buf[off]
	off++

	if flags&flagHasSymlink != 0 {
		if off+4 > len(buf) {
			return nil, fmt.Errorf("%w: truncated symlink target length", ErrInvalidObject)
		}
		tlen := int(binary.BigEndian.Uint32(buf[off:]))
		off += 4
		if off+tlen > len(buf) {
			return nil, fmt.Errorf("%w: truncated symlink target", ErrInvalidObject)
		}
		target := string(buf[off : off+tlen])
		off += tlen
		m.SymlinkTarget = &target
	}

	if flags&flagHasSize != 0 {
		if off+8 > len(buf) {
			return nil, fmt.Errorf("%w: truncated size field", ErrInvalidObject)
		}
		size := int64(binary.BigEndian.Uint64(buf[off:]))
		off += 8
		m.Size = &size
	}

	// Any remaining bytes are fields from a newer writer this reader does
	// not know about; skip them rather than fail, per spec.md §6.
	return m, nil
}

// Encode serializes m as one length-prefixed record, matching Reader's
// format. Used by storetest fixtures and by tests constructing .bupm
// streams; the VFS proper never writes metadata.
func (m *Metadata) Encode() []byte {
	body := make([]byte, 0, 64)
	var tmp [8]byte

	binary.BigEndian.PutUint32(tmp[:4], m.Mode)
	body = append(body, tmp[:4]...)
	binary.BigEndian.PutUint32(tmp[:4], m.Uid)
	body = append(body, tmp[:4]...)
	binary.BigEndian.PutUint32(tmp[:4], m.Gid)
	body = append(body, tmp[:4]...)
	binary.BigEndian.PutUint64(tmp[:8], uint64(m.Atime))
	body = append(body, tmp[:8]...)
	binary.BigEndian.PutUint64(tmp[:8], uint64(m.Mtime))
	body = append(body, tmp[:8]...)
	binary.BigEndian.PutUint64(tmp[:8], uint64(m.Ctime))
	body = append(body, tmp[:8]...)

	var flags byte
	if m.SymlinkTarget != nil {
		flags |= flagHasSymlink
	}
	if m.Size != nil {
		flags |= flagHasSize
	}
	body = append(body, flags)

	if m.SymlinkTarget != nil {
		binary.BigEndian.PutUint32(tmp[:4], uint32(len(*m.SymlinkTarget)))
		body = append(body, tmp[:4]...)
		body = append(body, []byte(*m.SymlinkTarget)...)
	}
	if m.Size != nil {
		binary.BigEndian.PutUint64(tmp[:8], uint64(*m.Size))
		body = append(body, tmp[:8]...)
	}

	out := make([]byte, 4, 4+len(body))
	binary.BigEndian.PutUint32(out[:4], uint32(len(body)))
	return append(out, body...)
}

// EncodeStream concatenates the Encode form of every record in order, for
// building a whole .bupm blob's bytes.
func EncodeStream(records []*Metadata) []byte {
	var out []byte
	for _, m := range records {
		out = append(out, m.Encode()...)
	}
	return out
}

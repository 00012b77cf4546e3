package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sys/unix"

	"github.com/hookcell/bup/oid"
	"github.com/hookcell/bup/treeobj"
)

type ItemSuite struct {
	suite.Suite
}

func TestItemSuite(t *testing.T) {
	suite.Run(t, new(ItemSuite))
}

func (s *ItemSuite) TestBareModeReportsMode() {
	it := NewLeaf(oid.Zero, BareMode(unix.S_IFREG|0644))
	assert.Equal(s.T(), uint32(unix.S_IFREG|0644), it.Mode())
	assert.False(s.T(), it.Meta.IsFull())
}

func (s *ItemSuite) TestFullMetaReportsMode() {
	md := &treeobj.Metadata{Mode: unix.S_IFLNK | 0777}
	it := NewLeaf(oid.Zero, FullMeta(md))
	assert.Equal(s.T(), uint32(unix.S_IFLNK|0777), it.Mode())
	assert.True(s.T(), it.Meta.IsFull())
}

func (s *ItemSuite) TestIsSymlink() {
	file := NewLeaf(oid.Zero, BareMode(unix.S_IFREG|0644))
	link := NewLeaf(oid.Zero, BareMode(unix.S_IFLNK|0777))
	fake := NewFakeLink("target", BareMode(unix.S_IFLNK|0777))

	assert.False(s.T(), file.IsSymlink())
	assert.True(s.T(), link.IsSymlink())
	assert.True(s.T(), fake.IsSymlink())
}

func (s *ItemSuite) TestIsDirLike() {
	root := NewRoot()
	dir := NewLeaf(oid.Zero, BareMode(unix.S_IFDIR|0755))
	file := NewLeaf(oid.Zero, BareMode(unix.S_IFREG|0644))
	chunked := NewChunked(oid.Zero, BareMode(unix.S_IFDIR|0755))
	commit := NewCommit(oid.Zero, oid.Zero, BareMode(unix.S_IFDIR|0755))

	assert.True(s.T(), root.IsDirLike())
	assert.True(s.T(), dir.IsDirLike())
	assert.False(s.T(), file.IsDirLike())
	assert.False(s.T(), chunked.IsDirLike())
	assert.True(s.T(), commit.IsDirLike())
}

func (s *ItemSuite) TestCopyIsIndependent() {
	target := "a"
	md := &treeobj.Metadata{Mode: unix.S_IFLNK | 0777, SymlinkTarget: &target}
	orig := NewLeaf(oid.Zero, FullMeta(md))

	clone := Copy(orig)
	clone.Meta.Full().Mode = unix.S_IFREG

	assert.Equal(s.T(), uint32(unix.S_IFLNK|0777), orig.Meta.Full().Mode)
	assert.NotSame(s.T(), orig.Meta.Full(), clone.Meta.Full())
}

func (s *ItemSuite) TestCopyOfNilIsNil() {
	assert.Nil(s.T(), Copy(nil))
}

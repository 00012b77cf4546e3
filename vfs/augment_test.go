package vfs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sys/unix"

	"github.com/hookcell/bup/storetest"
	"github.com/hookcell/bup/treeobj"
)

type AugmentSuite struct {
	suite.Suite

	ctx  context.Context
	repo *Repo
	st   *storetest.Store
}

func TestAugmentSuite(t *testing.T) {
	suite.Run(t, new(AugmentSuite))
}

func (s *AugmentSuite) SetupTest() {
	s.ctx = context.Background()
	s.st = storetest.New()
	s.repo = New(s.st, DefaultConfig())
}

func (s *AugmentSuite) TestAlreadyFullWithSizeIsIdentity() {
	size := int64(7)
	md := &treeobj.Metadata{Mode: unix.S_IFREG | 0644, Size: &size}
	item := NewLeaf(s.st.PutBlob([]byte("canary\n")), FullMeta(md))

	augmented, err := AugmentItemMeta(s.ctx, s.repo, item, false)
	require.NoError(s.T(), err)
	assert.Same(s.T(), item, augmented)

	augmentedWithSize, err := AugmentItemMeta(s.ctx, s.repo, item, true)
	require.NoError(s.T(), err)
	assert.Same(s.T(), item, augmentedWithSize)
}

func (s *AugmentSuite) TestFullWithoutSizeFillsOnRequest() {
	blobOid := s.st.PutBlob([]byte("canary\n"))
	md := &treeobj.Metadata{Mode: unix.S_IFREG | 0644}
	item := NewLeaf(blobOid, FullMeta(md))

	noSize, err := AugmentItemMeta(s.ctx, s.repo, item, false)
	require.NoError(s.T(), err)
	assert.Same(s.T(), item, noSize)

	withSize, err := AugmentItemMeta(s.ctx, s.repo, item, true)
	require.NoError(s.T(), err)
	assert.NotSame(s.T(), item, withSize)
	require.NotNil(s.T(), withSize.Meta.Full().Size)
	assert.EqualValues(s.T(), 7, *withSize.Meta.Full().Size)
}

func (s *AugmentSuite) TestBareModeSynthesizesZeroedMetadata() {
	blobOid := s.st.PutBlob([]byte("canary\n"))
	item := NewLeaf(blobOid, BareMode(unix.S_IFREG|0644))

	augmented, err := AugmentItemMeta(s.ctx, s.repo, item, false)
	require.NoError(s.T(), err)
	assert.NotSame(s.T(), item, augmented)
	require.True(s.T(), augmented.Meta.IsFull())

	full := augmented.Meta.Full()
	assert.Equal(s.T(), uint32(unix.S_IFREG|0644), full.Mode)
	assert.Zero(s.T(), full.Uid)
	assert.Zero(s.T(), full.Gid)
	assert.Nil(s.T(), full.Size)
}

func (s *AugmentSuite) TestBareModeSymlinkFillsTargetAndSizeRegardless() {
	linkOid := s.st.PutBlob([]byte("file"))
	item := NewLeaf(linkOid, BareMode(unix.S_IFLNK|0777))

	noSize, err := AugmentItemMeta(s.ctx, s.repo, item, false)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), noSize.Meta.Full().SymlinkTarget)
	assert.Equal(s.T(), "file", *noSize.Meta.Full().SymlinkTarget)
	require.NotNil(s.T(), noSize.Meta.Full().Size)
	assert.EqualValues(s.T(), 4, *noSize.Meta.Full().Size)
}

func (s *AugmentSuite) TestIdempotence() {
	blobOid := s.st.PutBlob([]byte("canary\n"))
	item := NewLeaf(blobOid, BareMode(unix.S_IFREG|0644))

	once, err := AugmentItemMeta(s.ctx, s.repo, item, true)
	require.NoError(s.T(), err)

	twice, err := AugmentItemMeta(s.ctx, s.repo, once, true)
	require.NoError(s.T(), err)

	assert.Same(s.T(), once, twice)
}

func (s *AugmentSuite) TestSyntheticOwnerConfig() {
	cfg := DefaultConfig()
	cfg.SyntheticMeta.Uid = 1000
	cfg.SyntheticMeta.Gid = 1000
	repo := New(s.st, cfg)

	blobOid := s.st.PutBlob([]byte("canary\n"))
	item := NewLeaf(blobOid, BareMode(unix.S_IFREG|0644))

	augmented, err := AugmentItemMeta(s.ctx, repo, item, false)
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 1000, augmented.Meta.Full().Uid)
	assert.EqualValues(s.T(), 1000, augmented.Meta.Full().Gid)
}

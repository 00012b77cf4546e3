package vfscache

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/hookcell/bup/oid"
)

func mkOid(b byte) oid.Oid {
	raw := make([]byte, oid.Size)
	for i := range raw {
		raw[i] = b
	}
	return oid.FromBytes(raw)
}

type CacheSuite struct {
	suite.Suite
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) TestGetMissAndPut() {
	c := New(4)
	o := mkOid(1)

	_, ok := c.Get(o)
	s.False(ok)

	c.Put(o, "tree-listing")
	v, ok := c.Get(o)
	s.True(ok)
	s.Equal("tree-listing", v)
}

func (s *CacheSuite) TestClearPurgesEverything() {
	c := New(4)
	c.Put(mkOid(1), "a")
	c.Put(mkOid(2), "b")
	s.Equal(2, c.Len())

	c.Clear()
	s.Equal(0, c.Len())
	_, ok := c.Get(mkOid(1))
	s.False(ok)
}

func (s *CacheSuite) TestEvictsLeastRecentlyUsedAtCapacity() {
	c := New(2)
	c.Put(mkOid(1), "a")
	c.Put(mkOid(2), "b")
	c.Put(mkOid(3), "c") // evicts oid 1

	_, ok := c.Get(mkOid(1))
	s.False(ok)
	_, ok = c.Get(mkOid(3))
	s.True(ok)
}

func (s *CacheSuite) TestGetOrLoadCachesResult() {
	c := New(4)
	o := mkOid(1)
	calls := 0

	v, err := c.GetOrLoad(o, func() (any, error) {
		calls++
		return 42, nil
	})
	require.NoError(s.T(), err)
	s.Equal(42, v)

	v, err = c.GetOrLoad(o, func() (any, error) {
		calls++
		return 99, nil
	})
	require.NoError(s.T(), err)
	s.Equal(42, v)
	s.Equal(1, calls)
}

func (s *CacheSuite) TestGetOrLoadPropagatesLoadError() {
	c := New(4)
	o := mkOid(1)
	wantErr := errors.New("boom")

	_, err := c.GetOrLoad(o, func() (any, error) {
		return nil, wantErr
	})
	s.ErrorIs(err, wantErr)

	_, ok := c.Get(o)
	s.False(ok, "a failed load must not populate the cache")
}

func (s *CacheSuite) TestGetOrLoadDeduplicatesConcurrentCallers() {
	c := New(4)
	o := mkOid(1)
	var calls int32Counter

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.GetOrLoad(o, func() (any, error) {
				calls.inc()
				return "v", nil
			})
		}()
	}
	wg.Wait()

	s.Equal(1, calls.get())
}

type int32Counter struct {
	mu sync.Mutex
	n  int
}

func (c *int32Counter) inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

func (c *int32Counter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

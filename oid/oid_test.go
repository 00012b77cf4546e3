package oid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type OidSuite struct {
	suite.Suite
}

func TestOidSuite(t *testing.T) {
	suite.Run(t, new(OidSuite))
}

func (s *OidSuite) TestFromHexRoundTrip() {
	raw := make([]byte, Size)
	for i := range raw {
		raw[i] = byte(i)
	}
	o := FromBytes(raw)

	parsed, err := FromHex(o.String())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), o, parsed)
}

func (s *OidSuite) TestFromHexRejectsBadInput() {
	_, err := FromHex("not-hex")
	assert.ErrorIs(s.T(), err, ErrMalformedHex)

	_, err = FromHex("abcd")
	assert.ErrorIs(s.T(), err, ErrMalformedHex)
}

func (s *OidSuite) TestFromBytesPanicsOnWrongSize() {
	assert.Panics(s.T(), func() {
		FromBytes([]byte{1, 2, 3})
	})
}

func (s *OidSuite) TestIsZero() {
	assert.True(s.T(), Zero.IsZero())

	var o Oid
	o[0] = 1
	assert.False(s.T(), o.IsZero())
}

func (s *OidSuite) TestSortOrdersLexicographically() {
	a := FromBytes(append([]byte{0x01}, make([]byte, Size-1)...))
	b := FromBytes(append([]byte{0x02}, make([]byte, Size-1)...))
	oids := []Oid{b, a}

	Sort(oids)

	assert.Equal(s.T(), []Oid{a, b}, oids)
}

func (s *OidSuite) TestHasherIsDeterministic() {
	h := &Hasher{}
	data := []byte("canary\n")

	first := h.Sum(KindBlob, data)
	second := h.Sum(KindBlob, data)
	assert.Equal(s.T(), first, second)

	assert.True(s.T(), h.Verify(first, KindBlob, data))
	assert.False(s.T(), h.Verify(first, KindTree, data))
}

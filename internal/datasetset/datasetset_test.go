package datasetset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewVariantSelection(t *testing.T) {
	require.True(t, New(nil).IsEmpty())
	require.Equal(t, 1, New([]DatasetID{5}).Len())
	require.Equal(t, 3, New([]DatasetID{5, 1, 3}).Len())
	require.Equal(t, []DatasetID{1, 3, 5}, New([]DatasetID{5, 1, 3}).Iterate())
}

func TestUniqueNeverHidesDuplicateAsMany(t *testing.T) {
	d := New([]DatasetID{7, 7, 7})
	require.Equal(t, 1, d.Len())
	require.True(t, d.Contains(7))
}

func TestUnionIsAssociativeCommutativeAndIdempotent(t *testing.T) {
	a := New([]DatasetID{1, 2, 3})
	b := New([]DatasetID{2, 3, 4})
	c := New([]DatasetID{4, 5})

	require.Equal(t, a.Union(b).Union(c).Iterate(), a.Union(b.Union(c)).Iterate())
	require.Equal(t, a.Union(b).Iterate(), b.Union(a).Iterate())
	require.Equal(t, a.Iterate(), a.Union(a).Iterate())
}

func TestUnionContainsIffEitherContains(t *testing.T) {
	a := New([]DatasetID{1, 2, 3})
	b := New([]DatasetID{9})
	u := a.Union(b)
	for _, x := range []DatasetID{1, 2, 3, 9, 42} {
		require.Equal(t, a.Contains(x) || b.Contains(x), u.Contains(x), "x=%d", x)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []DatasetSet{
		Empty,
		NewUnique(0),
		NewUnique(123456789),
		New([]DatasetID{1, 2}),
		New([]DatasetID{9, 4, 1, 1000000}),
	}
	for _, d := range cases {
		buf := d.Encode()
		got, err := Decode(buf)
		require.NoError(t, err)
		require.Equal(t, d.Iterate(), got.Iterate())
	}
}

func TestEncodeNeverProducesEightBytes(t *testing.T) {
	cases := []DatasetSet{
		Empty,
		NewUnique(1),
		New([]DatasetID{1, 2}),
		New([]DatasetID{1, 2, 3, 4, 5, 6, 7}),
	}
	for _, d := range cases {
		require.NotEqual(t, 8, len(d.Encode()))
	}
	require.True(t, IsCompactedColorValue(make([]byte, 8)))
}

func TestDecodeRejectsMalformedManyWithoutAllocating(t *testing.T) {
	// declares 1000 members but buffer is too short
	buf := append([]byte{byte(tagMany)}, encodeUvarint(1000)...)
	_, err := Decode(buf)
	require.Error(t, err)
}

func encodeUvarint(v uint64) []byte {
	buf := make([]byte, 10)
	n := 0
	for v >= 0x80 {
		buf[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	buf[n] = byte(v)
	return buf[:n+1]
}

package sigblob

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sourmash-bio/revindex/internal/minhash"
)

func TestRoundTripEmpty(t *testing.T) {
	got, err := Decode(Empty.Encode())
	require.NoError(t, err)
	require.Equal(t, KindEmpty, got.Kind())
}

func TestRoundTripExternal(t *testing.T) {
	b := NewExternal("/data/sigs/0001.sig")
	got, err := Decode(b.Encode())
	require.NoError(t, err)
	require.Equal(t, KindExternal, got.Kind())
	require.Equal(t, "/data/sigs/0001.sig", got.Path())
	require.Equal(t, "/data/sigs/0001.sig", got.DisplayName())
}

func TestRoundTripInternalWithAbundance(t *testing.T) {
	sk := minhash.BuildTemplate(21, 1000)
	sk.Hashes = []uint64{1, 5, 9}
	sk.Abundances = []uint64{3, 1, 7}

	b := NewInternal("sample-A", "/data/sigs/a.sig", "d41d8cd98f00b204e9800998ecf8427e", sk)
	got, err := Decode(b.Encode())
	require.NoError(t, err)
	require.Equal(t, KindInternal, got.Kind())
	require.Equal(t, "sample-A", got.DisplayName())
	require.Equal(t, sk.Hashes, got.Sketch().Hashes)
	require.Equal(t, sk.Abundances, got.Sketch().Abundances)
	require.Equal(t, sk.Ksize, got.Sketch().Ksize)
}

func TestRoundTripInternalWithoutAbundance(t *testing.T) {
	sk := minhash.BuildTemplate(31, 2000)
	sk.Hashes = []uint64{2, 4, 6}

	b := NewInternal("sample-B", "/data/sigs/b.sig", "", sk)
	got, err := Decode(b.Encode())
	require.NoError(t, err)
	require.False(t, got.Sketch().TrackAbundance())
}

func TestDecodeRejectsTruncatedBuffer(t *testing.T) {
	b := NewInternal("x", "y", "z", minhash.BuildTemplate(21, 1000))
	full := b.Encode()
	_, err := Decode(full[:len(full)-3])
	require.Error(t, err)
}

package minhash

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrepareSketchExactMatch(t *testing.T) {
	template := BuildTemplate(21, 1000)
	sig := Signature{Sketches: []MinHash{template.WithHashes([]uint64{1, 2, 3})}}

	got, err := PrepareSketch(sig, template)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, got.Hashes)
}

func TestPrepareSketchDownsamples(t *testing.T) {
	template := BuildTemplate(21, 1000)
	wide := BuildTemplate(21, 100)
	wide.Hashes = SortedHashesFrom([]uint64{1, template.MaxHash + 1})
	sig := Signature{Sketches: []MinHash{wide}}

	got, err := PrepareSketch(sig, template)
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, got.Hashes)
	require.Equal(t, template.MaxHash, got.MaxHash)
}

func TestPrepareSketchMismatchKSize(t *testing.T) {
	template := BuildTemplate(21, 1000)
	other := BuildTemplate(31, 100)
	sig := Signature{Sketches: []MinHash{other}}

	_, err := PrepareSketch(sig, template)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMismatchKSizes))
	require.True(t, errors.Is(err, ErrNoCompatibleSketch))
}

func TestPrepareSketchNoSketches(t *testing.T) {
	_, err := PrepareSketch(Signature{}, BuildTemplate(21, 1000))
	require.ErrorIs(t, err, ErrNoCompatibleSketch)
}

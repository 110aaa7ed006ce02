package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sourmash-bio/revindex/internal/minhash"
)

func writeSigFile(t *testing.T, dir, name string, hashes []uint64) string {
	t.Helper()
	path := filepath.Join(dir, name+".sig")

	var mins string
	for i, h := range hashes {
		if i > 0 {
			mins += ","
		}
		mins += uintToString(h)
	}
	content := `[{"name":"` + name + `","filename":"` + name + `","signatures":[{"ksize":31,"seed":42,"max_hash":18446744073709551,"molecule":"DNA","mins":[` + mins + `]}]}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func uintToString(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

func testTemplate() minhash.MinHash {
	return minhash.BuildTemplate(31, 1000)
}

func TestPlainIndexBuildAndQueryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := writeSigFile(t, dir, "A", []uint64{1, 2, 3})
	b := writeSigFile(t, dir, "B", []uint64{2, 3, 4})
	c := writeSigFile(t, dir, "C", []uint64{4, 5})

	idxPath := filepath.Join(dir, "index")
	facade, err := Open(idxPath, false, false)
	require.NoError(t, err)

	opts := BuildOptions{Template: testTemplate(), Threshold: 0}
	require.NoError(t, facade.Index(context.Background(), []string{a, b, c}, opts))
	require.NoError(t, facade.Flush())

	ctr, err := facade.CounterForQuery([]uint64{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, 3, ctr.Count(0)) // A
	require.Equal(t, 3, ctr.Count(1)) // B
	require.Equal(t, 1, ctr.Count(2)) // C

	matches, err := facade.MatchesFromCounter(ctr, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, uint64(0), matches[0].DatasetID)
	require.Equal(t, uint64(1), matches[1].DatasetID)

	require.NoError(t, facade.Close())
}

func TestPlainIndexEmptyCorpusReturnsNoMatches(t *testing.T) {
	dir := t.TempDir()
	idxPath := filepath.Join(dir, "index")
	facade, err := Open(idxPath, false, false)
	require.NoError(t, err)

	opts := BuildOptions{Template: testTemplate(), Threshold: 0}
	require.NoError(t, facade.Index(context.Background(), nil, opts))

	ctr, err := facade.CounterForQuery([]uint64{1, 2, 3})
	require.NoError(t, err)
	require.True(t, ctr.IsEmpty())
	require.NoError(t, facade.Close())
}

func TestPlainIndexPrunesBelowThreshold(t *testing.T) {
	dir := t.TempDir()
	a := writeSigFile(t, dir, "A", []uint64{1, 2})

	idxPath := filepath.Join(dir, "index")
	facade, err := Open(idxPath, false, false)
	require.NoError(t, err)

	opts := BuildOptions{Template: testTemplate(), Threshold: 5}
	require.NoError(t, facade.Index(context.Background(), []string{a}, opts))

	ctr, err := facade.CounterForQuery([]uint64{1, 2})
	require.NoError(t, err)
	require.True(t, ctr.IsEmpty(), "postings should not be written when size < threshold")

	matches, err := facade.MatchesFromCounter(ctr, 1)
	require.NoError(t, err)
	require.Empty(t, matches)
	require.NoError(t, facade.Close())
}

func TestColorIndexMatchesPlainIndexAfterCompaction(t *testing.T) {
	dir := t.TempDir()
	a := writeSigFile(t, dir, "A", []uint64{1, 2, 3})
	b := writeSigFile(t, dir, "B", []uint64{2, 3, 4})
	c := writeSigFile(t, dir, "C", []uint64{4, 5})
	paths := []string{a, b, c}
	opts := BuildOptions{Template: testTemplate(), Threshold: 0}

	plainPath := filepath.Join(dir, "plain")
	plain, err := Open(plainPath, false, false)
	require.NoError(t, err)
	require.NoError(t, plain.Index(context.Background(), paths, opts))
	require.NoError(t, plain.Flush())

	colorPath := filepath.Join(dir, "color")
	color, err := Open(colorPath, true, false)
	require.NoError(t, err)
	require.NoError(t, color.Index(context.Background(), paths, opts))
	require.NoError(t, color.Flush())
	require.NoError(t, color.CompactColors())

	for _, query := range [][]uint64{{1, 2, 3, 4}, {5}, {1, 2, 3, 4, 5}, {9}} {
		plainCtr, err := plain.CounterForQuery(query)
		require.NoError(t, err)
		colorCtr, err := color.CounterForQuery(query)
		require.NoError(t, err)
		require.ElementsMatch(t, plainCtr.MostCommon(), colorCtr.MostCommon())
	}

	require.NoError(t, plain.Close())
	require.NoError(t, color.Close())
}

func TestColorCompactionLeavesEightByteValues(t *testing.T) {
	dir := t.TempDir()
	a := writeSigFile(t, dir, "A", []uint64{1, 2, 3})
	b := writeSigFile(t, dir, "B", []uint64{2, 3, 4})

	idxPath := filepath.Join(dir, "index")
	color, err := Open(idxPath, true, false)
	require.NoError(t, err)
	opts := BuildOptions{Template: testTemplate(), Threshold: 0}
	require.NoError(t, color.Index(context.Background(), []string{a, b}, opts))
	require.NoError(t, color.Flush())
	require.NoError(t, color.CompactColors())

	stats, err := color.Check(false)
	require.NoError(t, err)
	require.Positive(t, stats.Hashes.Keys)
	require.Positive(t, stats.Colors.Keys)
	require.Equal(t, 2, stats.DistinctDatasets)

	var valueLens []int
	require.NoError(t, color.color.h.forEachPrefix([]byte{byte(cfHashes)}, func(key, value []byte) error {
		valueLens = append(valueLens, len(value))
		return nil
	}))
	require.Len(t, valueLens, stats.Hashes.Keys)
	for _, n := range valueLens {
		require.Equal(t, 8, n)
	}

	require.NoError(t, color.Close())
}

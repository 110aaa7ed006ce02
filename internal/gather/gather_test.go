package gather

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sourmash-bio/revindex/internal/counter"
	"github.com/sourmash-bio/revindex/internal/datasetset"
	"github.com/sourmash-bio/revindex/internal/minhash"
	"github.com/sourmash-bio/revindex/internal/store"
)

// fakeFetcher is a minimal in-memory Fetcher, standing in for an opened
// IndexFacade so GatherEngine can be tested without a real store.
type fakeFetcher struct {
	postings map[uint64][]datasetset.DatasetID
	sketches map[datasetset.DatasetID]minhash.MinHash
	names    map[datasetset.DatasetID]string
	pruned   map[datasetset.DatasetID]bool
}

func (f *fakeFetcher) CounterForQuery(hashes []uint64) (*counter.Counter, error) {
	c := counter.New()
	for _, h := range hashes {
		for _, id := range f.postings[h] {
			c.Increment(id)
		}
	}
	return c, nil
}

func (f *fakeFetcher) Sketch(id datasetset.DatasetID, template minhash.MinHash) (minhash.MinHash, store.MatchInfo, bool, error) {
	if f.pruned[id] {
		return minhash.MinHash{}, store.MatchInfo{}, false, nil
	}
	sk, ok := f.sketches[id]
	if !ok {
		return minhash.MinHash{}, store.MatchInfo{}, false, nil
	}
	return sk, store.MatchInfo{Name: f.names[id]}, true, nil
}

// sharedHashesCorpus builds the A={1,2,3}, B={2,3,4}, C={4,5} corpus used
// across the search/gather end-to-end scenarios.
func sharedHashesCorpus() *fakeFetcher {
	template := minhash.BuildTemplate(31, 1000)
	a := template.WithHashes([]uint64{1, 2, 3})
	b := template.WithHashes([]uint64{2, 3, 4})
	c := template.WithHashes([]uint64{4, 5})

	return &fakeFetcher{
		postings: map[uint64][]datasetset.DatasetID{
			1: {0},
			2: {0, 1},
			3: {0, 1},
			4: {1, 2},
			5: {2},
		},
		sketches: map[datasetset.DatasetID]minhash.MinHash{0: a, 1: b, 2: c},
		names:    map[datasetset.DatasetID]string{0: "A", 1: "B", 2: "C"},
		pruned:   map[datasetset.DatasetID]bool{},
	}
}

func TestGatherPeelsInExpectedOrder(t *testing.T) {
	f := sharedHashesCorpus()
	template := minhash.BuildTemplate(31, 1000)
	query := template.WithHashes([]uint64{1, 2, 3, 4, 5})

	results, err := Run(f, query, template, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Equal(t, "A", results[0].MatchName)
	require.Equal(t, uint64(3000), results[0].IntersectBp)
	require.Equal(t, 0, results[0].GatherResultRank)

	require.Equal(t, "C", results[1].MatchName)
	require.Equal(t, uint64(2000), results[1].IntersectBp)
	require.Equal(t, 1, results[1].GatherResultRank)
	require.Zero(t, results[1].RemainingBp)
}

func TestGatherIsDeterministicAcrossRuns(t *testing.T) {
	template := minhash.BuildTemplate(31, 1000)
	query := template.WithHashes([]uint64{1, 2, 3, 4, 5})

	first, err := Run(sharedHashesCorpus(), query, template, 2)
	require.NoError(t, err)
	second, err := Run(sharedHashesCorpus(), query, template, 2)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestGatherTerminatesOnEmptyResidual(t *testing.T) {
	f := sharedHashesCorpus()
	template := minhash.BuildTemplate(31, 1000)
	query := template.WithHashes([]uint64{1})

	results, err := Run(f, query, template, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "A", results[0].MatchName)
}

func TestGatherSkipsPrunedBlobWithoutEmitting(t *testing.T) {
	f := sharedHashesCorpus()
	f.pruned[0] = true
	template := minhash.BuildTemplate(31, 1000)
	query := template.WithHashes([]uint64{1, 2, 3, 4, 5})

	results, err := Run(f, query, template, 2)
	require.NoError(t, err)
	for _, r := range results {
		require.NotEqual(t, "A", r.MatchName)
	}
}

func TestGatherOnEmptyCorpusReturnsNoResults(t *testing.T) {
	f := &fakeFetcher{
		postings: map[uint64][]datasetset.DatasetID{},
		sketches: map[datasetset.DatasetID]minhash.MinHash{},
		names:    map[datasetset.DatasetID]string{},
	}
	template := minhash.BuildTemplate(31, 1000)
	query := template.WithHashes([]uint64{1, 2, 3})

	results, err := Run(f, query, template, 1)
	require.NoError(t, err)
	require.Empty(t, results)
}

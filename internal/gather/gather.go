// Package gather implements GatherEngine: the iterative minimum-cover
// decomposition of a query sketch against an inverted index.
package gather

import (
	"fmt"
	"math"
	"sort"

	"github.com/sourmash-bio/revindex/internal/counter"
	"github.com/sourmash-bio/revindex/internal/datasetset"
	"github.com/sourmash-bio/revindex/internal/minhash"
	"github.com/sourmash-bio/revindex/internal/store"
)

// Fetcher is the subset of IndexFacade's surface GatherEngine needs: score
// the residual against the index, and load a candidate's stored sketch.
// *store.IndexFacade satisfies this.
type Fetcher interface {
	CounterForQuery(queryHashes []uint64) (*counter.Counter, error)
	Sketch(id datasetset.DatasetID, template minhash.MinHash) (minhash.MinHash, store.MatchInfo, bool, error)
}

// Result is one emitted match from a gather run, with fields named after
// the record described for the search/gather CLI surface.
type Result struct {
	MatchName         string
	IntersectBp       uint64
	FOrigQuery        float64
	FMatch            float64
	AverageAbund      float64
	MedianAbund       float64
	StdAbund          float64
	Filename          string
	Name              string
	MD5               string
	Match             string
	FUniqueToQuery    float64
	UniqueIntersectBp uint64
	GatherResultRank  int
	RemainingBp       uint64
}

// Run executes the gather state machine: score, select, fetch, intersect,
// emit, peel, repeating against the shrinking residual until no candidate
// clears thresholdHashes. Termination is guaranteed because the residual's
// hash count strictly decreases by at least thresholdHashes per emitted
// match.
func Run(f Fetcher, query minhash.MinHash, template minhash.MinHash, thresholdHashes int) ([]Result, error) {
	residual := query
	originalSize := residual.Size()
	scaled := template.Scaled
	excluded := make(map[datasetset.DatasetID]bool)

	var results []Result
	rank := 0

	for {
		if residual.IsEmpty() {
			return results, nil
		}

		ctr, err := f.CounterForQuery(residual.Hashes)
		if err != nil {
			return nil, fmt.Errorf("gather: scoring residual: %w", err)
		}

		best, ok := selectBest(ctr, excluded)
		if !ok || best.Count < thresholdHashes {
			return results, nil
		}

		sketch, info, found, err := f.Sketch(best.DatasetID, template)
		if err != nil {
			return nil, fmt.Errorf("gather: fetching dataset %d: %w", best.DatasetID, err)
		}
		if !found {
			// Blob was Empty (pruned at index time): treat as zero overlap
			// and advance without emitting, so this dataset is never
			// reselected and the loop cannot spin on it.
			excluded[best.DatasetID] = true
			continue
		}

		overlap := residual.Intersect(sketch)
		if len(overlap) < thresholdHashes {
			return results, nil
		}

		results = append(results, buildResult(residual, sketch, overlap, originalSize, info, rank, scaled))
		rank++

		residual = residual.Subtract(overlap)
		excluded[best.DatasetID] = true
	}
}

// selectBest returns the highest-count non-excluded entry, ties broken by
// ascending DatasetID (Counter.MostCommon already orders this way).
func selectBest(ctr *counter.Counter, excluded map[datasetset.DatasetID]bool) (counter.Entry, bool) {
	for _, entry := range ctr.MostCommon() {
		if excluded[entry.DatasetID] {
			continue
		}
		return entry, true
	}
	return counter.Entry{}, false
}

func buildResult(residual, candidate minhash.MinHash, overlap []uint64, originalSize int, info store.MatchInfo, rank int, scaled uint64) Result {
	overlapSize := uint64(len(overlap))
	avg, median, std := abundanceStats(residual, overlap)

	return Result{
		MatchName:         info.Name,
		IntersectBp:       overlapSize * scaled,
		FOrigQuery:        float64(len(overlap)) / float64(originalSize),
		FMatch:             float64(len(overlap)) / float64(candidate.Size()),
		AverageAbund:      avg,
		MedianAbund:       median,
		StdAbund:          std,
		Filename:          info.Filename,
		Name:              info.Name,
		MD5:               info.MD5,
		Match:             info.Name,
		FUniqueToQuery:    float64(len(overlap)) / float64(originalSize),
		UniqueIntersectBp: overlapSize * scaled,
		GatherResultRank:  rank,
		RemainingBp:       uint64(residual.Size()-len(overlap)) * scaled,
	}
}

// abundanceStats computes mean/median/population-stddev of the residual
// sketch's recorded abundances over the overlap hashes. Zero when the
// residual has no abundance tracking, per the design's "abundance fields
// are 0 when the sketches lack abundance tracking".
func abundanceStats(residual minhash.MinHash, overlap []uint64) (avg, median, std float64) {
	if !residual.TrackAbundance() || len(overlap) == 0 {
		return 0, 0, 0
	}

	vals := make([]float64, len(overlap))
	var sum float64
	for i, h := range overlap {
		a := float64(residual.AbundanceOf(h))
		vals[i] = a
		sum += a
	}
	avg = sum / float64(len(vals))

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	var variance float64
	for _, v := range vals {
		d := v - avg
		variance += d * d
	}
	variance /= float64(len(vals))
	std = math.Sqrt(variance)

	return avg, median, std
}

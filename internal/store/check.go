package store

import (
	"fmt"

	"github.com/sourmash-bio/revindex/internal/colorid"
	"github.com/sourmash-bio/revindex/internal/datasetset"
)

// CFStats is the per-column-family portion of Stats.
type CFStats struct {
	Keys  int
	Bytes int64
}

// Stats is the result of the check command: per-CF totals, plus (unless
// run --quick) a posting-length histogram and a distinct-dataset count
// across the whole hashes column family.
type Stats struct {
	Hashes     CFStats
	Colors     CFStats
	Signatures CFStats

	// PostingLengthHistogram maps a posting-list length to the number of
	// hash keys that have exactly that many members. Populated only when
	// quick is false.
	PostingLengthHistogram map[int]int

	// DistinctDatasets is the number of distinct DatasetIDs referenced from
	// anywhere in the hashes column family. Populated only when quick is
	// false.
	DistinctDatasets int
}

func checkStore(h *handle, colors bool, quick bool) (Stats, error) {
	var stats Stats
	var err error

	stats.Hashes.Keys, stats.Hashes.Bytes, err = h.countPrefix([]byte{byte(cfHashes)})
	if err != nil {
		return Stats{}, err
	}
	if colors {
		stats.Colors.Keys, stats.Colors.Bytes, err = h.countPrefix([]byte{byte(cfColors)})
		if err != nil {
			return Stats{}, err
		}
	}
	stats.Signatures.Keys, stats.Signatures.Bytes, err = h.countPrefix([]byte{byte(cfSignatures)})
	if err != nil {
		return Stats{}, err
	}

	if quick {
		return stats, nil
	}

	stats.PostingLengthHistogram = make(map[int]int)
	seen := make(map[datasetset.DatasetID]struct{})

	resolve := func(value []byte) (datasetset.DatasetSet, error) {
		if colors && datasetset.IsCompactedColorValue(value) {
			col := colorid.Decode(value)
			raw, ok, err := h.get(encodeKey(cfColors, uint64(col)))
			if err != nil {
				return datasetset.DatasetSet{}, err
			}
			if !ok {
				return datasetset.DatasetSet{}, fmt.Errorf("%w: color %d missing during check", ErrDeserialization, col)
			}
			return datasetset.Decode(raw)
		}
		return datasetset.Decode(value)
	}

	err = h.forEachPrefix([]byte{byte(cfHashes)}, func(key, value []byte) error {
		ds, err := resolve(value)
		if err != nil {
			return err
		}
		stats.PostingLengthHistogram[ds.Len()]++
		for _, id := range ds.Iterate() {
			seen[id] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	stats.DistinctDatasets = len(seen)

	return stats, nil
}

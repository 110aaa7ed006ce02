package store

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/sourmash-bio/revindex/internal/colorid"
	"github.com/sourmash-bio/revindex/internal/counter"
	"github.com/sourmash-bio/revindex/internal/datasetset"
	"github.com/sourmash-bio/revindex/internal/minhash"
)

// ColorIndex implements the hash -> Color -> DatasetSet back-end. During
// the build phase it shares PlainIndex's exact accumulation/merge path: raw
// DatasetSet postings land directly in cfHashes, identical to the plain
// back-end (see indexInto). Only a post-build Compact pass and query-time
// color resolution differ.
type ColorIndex struct {
	h *handle
}

func openColor(path string, readOnly bool) (*ColorIndex, error) {
	h, err := openHandle(path, readOnly)
	if err != nil {
		return nil, err
	}
	return &ColorIndex{h: h}, nil
}

// Index builds the raw hash -> DatasetSet postings. Colors are not minted
// here; they are only produced by CompactColors.
func (c *ColorIndex) Index(ctx context.Context, siglistPaths []string, opts BuildOptions) error {
	return indexInto(ctx, c.h, cfHashes, siglistPaths, opts)
}

// CompactColors runs the post-build compaction pass described in §4.5:
// every still-raw hashes entry is rewritten to a canonical Color, minting a
// colors entry when one does not already exist for that member set, then
// the whole store is range-compacted to reclaim superseded versions.
func (c *ColorIndex) CompactColors() error {
	var rewritten int
	err := c.h.forEachPrefix([]byte{byte(cfHashes)}, func(key, value []byte) error {
		if datasetset.IsCompactedColorValue(value) {
			return nil
		}
		ds, err := datasetset.Decode(value)
		if err != nil {
			return fmt.Errorf("%w: hashes entry during compaction: %w", ErrDeserialization, err)
		}

		col := colorid.Compute(ds.Iterate())
		colorKey := encodeKey(cfColors, uint64(col))
		if _, exists, err := c.h.get(colorKey); err != nil {
			return err
		} else if !exists {
			if err := c.h.put(colorKey, ds.Encode()); err != nil {
				return err
			}
		}

		if err := c.h.put(append([]byte(nil), key...), col.Encode()); err != nil {
			return err
		}
		rewritten++
		return nil
	})
	if err != nil {
		return err
	}
	klog.Infof("color compaction rewrote %d hash entries", rewritten)
	return c.h.Compact()
}

// resolveDatasetSet returns the DatasetSet for a raw cfHashes value,
// resolving through cfColors when the value is already a compacted Color
// and decoding it directly otherwise — correct whether or not compaction
// has run yet, per §4.5's defensiveness requirement.
func (c *ColorIndex) resolveDatasetSet(value []byte) (datasetset.DatasetSet, error) {
	if datasetset.IsCompactedColorValue(value) {
		col := colorid.Decode(value)
		raw, ok, err := c.h.get(encodeKey(cfColors, uint64(col)))
		if err != nil {
			return datasetset.DatasetSet{}, err
		}
		if !ok {
			return datasetset.DatasetSet{}, fmt.Errorf("%w: color %d referenced from hashes but missing from colors", ErrDeserialization, col)
		}
		return datasetset.Decode(raw)
	}
	return datasetset.Decode(value)
}

// CounterForQuery fetches each query hash's color (or raw posting), then
// resolves it to a DatasetSet and accumulates.
func (c *ColorIndex) CounterForQuery(queryHashes []uint64) (*counter.Counter, error) {
	keys := make([][]byte, len(queryHashes))
	for i, hash := range queryHashes {
		keys[i] = encodeKey(cfHashes, hash)
	}
	hits, err := c.h.multiGet(keys)
	if err != nil {
		return nil, err
	}

	out := counter.New()
	for _, raw := range hits {
		ds, err := c.resolveDatasetSet(raw)
		if err != nil {
			return nil, err
		}
		out.IncrementSet(ds)
	}
	return out, nil
}

func (c *ColorIndex) MatchesFromCounter(ctr *counter.Counter, threshold int) ([]Match, error) {
	return matchesFromCounter(c.h, ctr, threshold)
}

func (c *ColorIndex) Flush() error   { return c.h.Flush() }
func (c *ColorIndex) Compact() error { return c.h.Compact() }
func (c *ColorIndex) Close() error   { return c.h.Close() }

func (c *ColorIndex) Check(quick bool) (Stats, error) {
	return checkStore(c.h, true, quick)
}

func (c *ColorIndex) Sketch(id datasetset.DatasetID, template minhash.MinHash) (minhash.MinHash, MatchInfo, bool, error) {
	return sketchByDatasetID(c.h, id, template)
}

// PrepareGatherCounters always fails for the color back-end: gather has no
// color-aware path, matching the original's todo!() — see DESIGN.md.
func (c *ColorIndex) PrepareGatherCounters() error {
	return ErrGatherNotSupported
}

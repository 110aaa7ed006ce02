package store

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/sourmash-bio/revindex/internal/counter"
	"github.com/sourmash-bio/revindex/internal/datasetset"
	"github.com/sourmash-bio/revindex/internal/minhash"
	"github.com/sourmash-bio/revindex/internal/sigblob"
)

// flushEvery bounds how many distinct hashes a build worker accumulates in
// memory before flushing its batch through the merge operator.
const flushEvery = 4096

// progressEvery matches the design's "workers emit progress every 1000
// datasets processed".
const progressEvery = 1000

// BuildOptions configures an index build, mirroring the CLI's index flags.
type BuildOptions struct {
	Template  minhash.MinHash
	Threshold float64
	SavePaths bool // external mode: store a path reference instead of the sketch
}

// Match is one scored, hydrated result from matches_from_counter.
type Match struct {
	DatasetID   datasetset.DatasetID
	Count       int
	DisplayName string
	Blob        sigblob.Blob
}

// MatchInfo carries the display metadata GatherResult needs alongside a
// fetched sketch: name and filename as recorded in the original signature,
// plus its MD5 checksum when known.
type MatchInfo struct {
	Name     string
	Filename string
	MD5      string
}

// PlainIndex implements the hash -> DatasetSet back-end.
type PlainIndex struct {
	h *handle
}

func openPlain(path string, readOnly bool) (*PlainIndex, error) {
	h, err := openHandle(path, readOnly)
	if err != nil {
		return nil, err
	}
	return &PlainIndex{h: h}, nil
}

// Index builds the index from siglistPaths in input order, one DatasetID
// per path. Processing is parallelized across CPU count; each worker
// accumulates its own postings and flushes them through the shared merge
// operator, so no cross-worker locking is needed beyond what Badger itself
// provides.
func (p *PlainIndex) Index(ctx context.Context, siglistPaths []string, opts BuildOptions) error {
	return indexInto(ctx, p.h, cfHashes, siglistPaths, opts)
}

// indexInto runs the shared build path used by both PlainIndex and
// ColorIndex. Both pass cfHashes as target; a color build's postings stay
// raw DatasetSets there until CompactColors rewrites them.
func indexInto(ctx context.Context, h *handle, target cf, siglistPaths []string, opts BuildOptions) error {
	progress := mpb.New(mpb.WithWidth(64))
	bar := progress.AddBar(int64(len(siglistPaths)),
		mpb.PrependDecorators(decor.Name("indexing")),
		mpb.AppendDecorators(decor.CountersNoUnit("%d / %d")),
	)
	defer progress.Wait()

	var processed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, path := range siglistPaths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			acc := newMergeAccumulator(h, target, flushEvery)
			if err := indexOne(h, acc, uint64(i), path, opts); err != nil {
				return err
			}
			if err := acc.Flush(); err != nil {
				return err
			}
			bar.Increment()
			n := processed.Add(1)
			if n%progressEvery == 0 {
				klog.Infof("indexed %d/%d datasets", n, len(siglistPaths))
			}
			return nil
		})
	}

	return g.Wait()
}

func indexOne(h *handle, acc *mergeAccumulator, id datasetset.DatasetID, path string, opts BuildOptions) error {
	sig, err := minhash.LoadSignatureFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSignatureLoad, path, err)
	}

	sketch, err := minhash.PrepareSketch(sig, opts.Template)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSignatureLoad, path, err)
	}

	if sketch.IsEmpty() || float64(sketch.Size()) < opts.Threshold {
		return h.put(encodeKey(cfSignatures, id), sigblob.Empty.Encode())
	}

	var blob sigblob.Blob
	if opts.SavePaths {
		blob = sigblob.NewExternal(path)
	} else {
		blob = sigblob.NewInternal(sig.Name, sig.Filename, sig.MD5, sketch)
	}
	if err := h.put(encodeKey(cfSignatures, id), blob.Encode()); err != nil {
		return err
	}

	for _, hash := range sketch.Hashes {
		if err := acc.Add(hash, datasetset.NewUnique(id)); err != nil {
			return err
		}
	}
	return nil
}

// counterForQuery issues a batched multi-get for every query hash against
// cfHashes and accumulates a Counter from the hits.
func counterForQuery(h *handle, queryHashes []uint64) (*counter.Counter, error) {
	keys := make([][]byte, len(queryHashes))
	for i, hash := range queryHashes {
		keys[i] = encodeKey(cfHashes, hash)
	}
	hits, err := h.multiGet(keys)
	if err != nil {
		return nil, err
	}

	c := counter.New()
	for _, raw := range hits {
		ds, err := datasetset.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: hashes entry: %w", ErrDeserialization, err)
		}
		c.IncrementSet(ds)
	}
	return c, nil
}

// matchesFromCounter extracts entries meeting threshold and hydrates each
// with its stored SignatureBlob.
func matchesFromCounter(h *handle, c *counter.Counter, threshold int) ([]Match, error) {
	var out []Match
	for _, entry := range c.MostCommon() {
		if entry.Count < threshold {
			break
		}
		raw, ok, err := h.get(encodeKey(cfSignatures, entry.DatasetID))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		blob, err := sigblob.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: signatures entry: %w", ErrDeserialization, err)
		}
		if blob.Kind() == sigblob.KindEmpty {
			continue
		}
		out = append(out, Match{
			DatasetID:   entry.DatasetID,
			Count:       entry.Count,
			DisplayName: blob.DisplayName(),
			Blob:        blob,
		})
	}
	return out, nil
}

// CounterForQuery implements the PlainIndex half of IndexFacade.
func (p *PlainIndex) CounterForQuery(queryHashes []uint64) (*counter.Counter, error) {
	return counterForQuery(p.h, queryHashes)
}

// MatchesFromCounter implements the PlainIndex half of IndexFacade.
func (p *PlainIndex) MatchesFromCounter(c *counter.Counter, threshold int) ([]Match, error) {
	return matchesFromCounter(p.h, c, threshold)
}

func (p *PlainIndex) Flush() error   { return p.h.Flush() }
func (p *PlainIndex) Compact() error { return p.h.Compact() }
func (p *PlainIndex) Close() error   { return p.h.Close() }

func (p *PlainIndex) Check(quick bool) (Stats, error) {
	return checkStore(p.h, false, quick)
}

// Sketch loads dataset id's stored sketch for GatherEngine's Fetch step.
func (p *PlainIndex) Sketch(id datasetset.DatasetID, template minhash.MinHash) (minhash.MinHash, MatchInfo, bool, error) {
	return sketchByDatasetID(p.h, id, template)
}

// sketchByDatasetID loads a dataset's stored sketch for gather, re-reading
// from disk and re-selecting against template when the blob is External.
func sketchByDatasetID(h *handle, id datasetset.DatasetID, template minhash.MinHash) (minhash.MinHash, MatchInfo, bool, error) {
	raw, ok, err := h.get(encodeKey(cfSignatures, id))
	if err != nil {
		return minhash.MinHash{}, MatchInfo{}, false, err
	}
	if !ok {
		return minhash.MinHash{}, MatchInfo{}, false, nil
	}
	blob, err := sigblob.Decode(raw)
	if err != nil {
		return minhash.MinHash{}, MatchInfo{}, false, fmt.Errorf("%w: signatures entry: %w", ErrDeserialization, err)
	}
	switch blob.Kind() {
	case sigblob.KindEmpty:
		return minhash.MinHash{}, MatchInfo{}, false, nil
	case sigblob.KindInternal:
		info := MatchInfo{Name: blob.DisplayName(), Filename: blob.Filename(), MD5: blob.MD5()}
		return blob.Sketch(), info, true, nil
	default:
		sig, err := minhash.LoadSignatureFile(blob.Path())
		if err != nil {
			return minhash.MinHash{}, MatchInfo{}, false, fmt.Errorf("%w: re-reading %s: %w", ErrSignatureLoad, blob.Path(), err)
		}
		sk, err := minhash.PrepareSketch(sig, template)
		if err != nil {
			return minhash.MinHash{}, MatchInfo{}, false, err
		}
		info := MatchInfo{Name: sig.Name, Filename: sig.Filename, MD5: sig.MD5}
		return sk, info, true, nil
	}
}

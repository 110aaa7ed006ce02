package store

import (
	"context"
	"fmt"

	"github.com/sourmash-bio/revindex/internal/counter"
	"github.com/sourmash-bio/revindex/internal/datasetset"
	"github.com/sourmash-bio/revindex/internal/minhash"
)

// backend is the uniform surface PlainIndex and ColorIndex both satisfy.
// IndexFacade holds both as tagged fields and picks the one it was opened
// with per call: shared operations go through this interface, the
// back-end-specific ones (Index, CompactColors, PrepareGatherCounters)
// switch on the colors flag directly.
type backend interface {
	CounterForQuery(queryHashes []uint64) (*counter.Counter, error)
	MatchesFromCounter(c *counter.Counter, threshold int) ([]Match, error)
	Sketch(id datasetset.DatasetID, template minhash.MinHash) (minhash.MinHash, MatchInfo, bool, error)
	Flush() error
	Compact() error
	Close() error
	Check(quick bool) (Stats, error)
}

// IndexFacade is the tagged dispatch over {PlainIndex, ColorIndex}. The
// colors flag is fixed at Open time and is immutable for the lifetime of
// the opened handle.
type IndexFacade struct {
	colors bool
	plain  *PlainIndex
	color  *ColorIndex
}

// Open opens (or creates) an index at path. colors selects the back-end;
// switching it on an already-built index is a build-time decision, not a
// runtime one — callers that need the other back-end must re-index.
func Open(path string, colors bool, readOnly bool) (*IndexFacade, error) {
	if colors {
		c, err := openColor(path, readOnly)
		if err != nil {
			return nil, err
		}
		return &IndexFacade{colors: true, color: c}, nil
	}
	p, err := openPlain(path, readOnly)
	if err != nil {
		return nil, err
	}
	return &IndexFacade{colors: false, plain: p}, nil
}

func (f *IndexFacade) backend() backend {
	if f.colors {
		return f.color
	}
	return f.plain
}

// Colors reports which back-end this facade was opened with.
func (f *IndexFacade) Colors() bool { return f.colors }

// Index builds the index from siglistPaths. For the color back-end this
// only populates raw postings; call CompactColors afterward.
func (f *IndexFacade) Index(ctx context.Context, siglistPaths []string, opts BuildOptions) error {
	if f.colors {
		return f.color.Index(ctx, siglistPaths, opts)
	}
	return f.plain.Index(ctx, siglistPaths, opts)
}

// CompactColors runs the color compaction pass (§4.5). A no-op for the
// plain back-end.
func (f *IndexFacade) CompactColors() error {
	if !f.colors {
		return nil
	}
	return f.color.CompactColors()
}

// CounterForQuery implements the shared scoring path for both back-ends.
func (f *IndexFacade) CounterForQuery(queryHashes []uint64) (*counter.Counter, error) {
	return f.backend().CounterForQuery(queryHashes)
}

// MatchesFromCounter extracts and hydrates results meeting threshold.
func (f *IndexFacade) MatchesFromCounter(c *counter.Counter, threshold int) ([]Match, error) {
	return f.backend().MatchesFromCounter(c, threshold)
}

// Sketch loads a dataset's stored sketch, used by GatherEngine's Fetch step.
func (f *IndexFacade) Sketch(id datasetset.DatasetID, template minhash.MinHash) (minhash.MinHash, MatchInfo, bool, error) {
	return f.backend().Sketch(id, template)
}

// PrepareGatherCounters returns ErrGatherNotSupported for the color
// back-end, which does not support gather (see the Open Question resolution
// in DESIGN.md). For the plain back-end there is nothing to prepare.
func (f *IndexFacade) PrepareGatherCounters() error {
	if f.colors {
		return fmt.Errorf("gather: %w", ErrGatherNotSupported)
	}
	return nil
}

func (f *IndexFacade) Flush() error                    { return f.backend().Flush() }
func (f *IndexFacade) Compact() error                   { return f.backend().Compact() }
func (f *IndexFacade) Close() error                     { return f.backend().Close() }
func (f *IndexFacade) Check(quick bool) (Stats, error)  { return f.backend().Check(quick) }

package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/sourmash-bio/revindex/internal/datasetset"
)

// mergeFlushInterval is passed to Badger's GetMergeOperator as the
// background compaction period for operands pending under one key; Stop
// forces an immediate final flush regardless, so this mostly bounds how
// long a merge operator instance sits idle before this package releases it.
const mergeFlushInterval = 10 * time.Millisecond

// datasetSetMergeFunc is the associative combiner registered against the
// hashes and colors column families. Deserialization failure indicates a
// corrupted store and is fatal; the operator's signature gives no error
// return, so it panics, matching the "no other error paths" policy.
func datasetSetMergeFunc(existing, val []byte) []byte {
	var cur datasetset.DatasetSet
	if existing != nil {
		d, err := datasetset.Decode(existing)
		if err != nil {
			panic(fmt.Errorf("%w: merge operator: existing value: %w", ErrDeserialization, err))
		}
		cur = d
	}
	incoming, err := datasetset.Decode(val)
	if err != nil {
		panic(fmt.Errorf("%w: merge operator: incoming value: %w", ErrDeserialization, err))
	}
	return cur.Union(incoming).Encode()
}

// mergeAccumulator batches hash -> DatasetSet postings in memory, unioning
// repeat hits to the same key locally before ever touching the store, and
// flushes each accumulated key through the store's merge operator exactly
// once per flush window. This bounds concurrent Badger merge-operator
// goroutines to the flush window rather than to one per posting, the same
// shape as the teacher's accumulate-then-flush write path.
type mergeAccumulator struct {
	h          *handle
	c          cf
	flushEvery int

	mu      sync.Mutex
	pending map[uint64]datasetset.DatasetSet
}

func newMergeAccumulator(h *handle, c cf, flushEvery int) *mergeAccumulator {
	return &mergeAccumulator{
		h:          h,
		c:          c,
		flushEvery: flushEvery,
		pending:    make(map[uint64]datasetset.DatasetSet),
	}
}

// Add unions ds into id's pending posting, flushing the whole batch once it
// reaches flushEvery distinct keys.
func (m *mergeAccumulator) Add(id uint64, ds datasetset.DatasetSet) error {
	m.mu.Lock()
	m.pending[id] = m.pending[id].Union(ds)
	full := len(m.pending) >= m.flushEvery
	m.mu.Unlock()

	if full {
		return m.Flush()
	}
	return nil
}

// Flush pushes every pending key through the store's merge operator and
// clears the batch. Safe to call with an empty batch (a no-op).
func (m *mergeAccumulator) Flush() error {
	m.mu.Lock()
	pending := m.pending
	m.pending = make(map[uint64]datasetset.DatasetSet, len(pending))
	m.mu.Unlock()

	for id, ds := range pending {
		key := encodeKey(m.c, id)
		op := m.h.db.GetMergeOperator(key, datasetSetMergeFunc, mergeFlushInterval)
		err := op.Add(ds.Encode())
		op.Stop()
		if err != nil {
			return fmt.Errorf("%w: merge %s: %w", ErrStoreFailure, string(m.c), err)
		}
	}
	return nil
}

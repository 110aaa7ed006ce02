// Package counter implements a multiset over dataset identifiers, used to
// accumulate per-hash postings into per-dataset match counts during search
// and gather.
package counter

import (
	"sort"

	"github.com/sourmash-bio/revindex/internal/datasetset"
)

// Entry is one (dataset, count) pair from MostCommon.
type Entry struct {
	DatasetID datasetset.DatasetID
	Count     int
}

// Counter is a multiset over DatasetIDs. The zero value is ready to use.
// Not safe for concurrent use; callers build one Counter per query.
type Counter struct {
	counts map[datasetset.DatasetID]int
}

// New returns an empty Counter.
func New() *Counter {
	return &Counter{counts: make(map[datasetset.DatasetID]int)}
}

// Increment adds one to id's count.
func (c *Counter) Increment(id datasetset.DatasetID) {
	if c.counts == nil {
		c.counts = make(map[datasetset.DatasetID]int)
	}
	c.counts[id]++
}

// IncrementSet increments every member of a DatasetSet posting by one,
// which is how search/gather turn a hash's stored postings into counter
// contributions.
func (c *Counter) IncrementSet(d datasetset.DatasetSet) {
	for _, id := range d.Iterate() {
		c.Increment(id)
	}
}

// Remove drops id from consideration entirely (used by GatherEngine when a
// dataset has been peeled off and must not be re-selected).
func (c *Counter) Remove(id datasetset.DatasetID) {
	delete(c.counts, id)
}

// Count returns id's current count (0 if absent).
func (c *Counter) Count(id datasetset.DatasetID) int {
	return c.counts[id]
}

// Len returns the number of distinct datasets with a nonzero count.
func (c *Counter) Len() int { return len(c.counts) }

// IsEmpty reports whether no dataset has a nonzero count.
func (c *Counter) IsEmpty() bool { return len(c.counts) == 0 }

// MostCommon returns (dataset, count) pairs in descending count order,
// with ties broken by ascending DatasetID for determinism.
func (c *Counter) MostCommon() []Entry {
	out := make([]Entry, 0, len(c.counts))
	for id, n := range c.counts {
		out = append(out, Entry{DatasetID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].DatasetID < out[j].DatasetID
	})
	return out
}

// Best returns the single highest-count entry (ties broken by smallest
// DatasetID) and whether the counter had any entries at all.
func (c *Counter) Best() (Entry, bool) {
	most := c.MostCommon()
	if len(most) == 0 {
		return Entry{}, false
	}
	return most[0], true
}

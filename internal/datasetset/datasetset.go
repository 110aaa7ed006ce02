// Package datasetset implements DatasetSet: a tagged-variant compact set
// of dataset identifiers. The posting-list distribution across the hashes
// column family is heavily skewed towards singletons, so the variant
// avoids both a heap allocation and per-entry container overhead for the
// common case.
package datasetset

import "sort"

// DatasetID is the zero-based position of a signature file in the input
// siglist, used throughout the index as the dataset's identity.
type DatasetID = uint64

// tag identifies which variant a serialized DatasetSet holds.
type tag byte

const (
	tagEmpty  tag = 0
	tagUnique tag = 1
	tagMany   tag = 2
)

// kind mirrors tag for the in-memory representation.
type kind int

const (
	kindEmpty kind = iota
	kindUnique
	kindMany
)

// DatasetSet is a closed sum over {Empty, Unique(id), Many(sorted ids)}.
// The zero value is Empty. Unique never degenerates to a one-element Many,
// and Many always holds at least two distinct members; both invariants are
// maintained by every mutating method.
type DatasetSet struct {
	k      kind
	unique DatasetID
	many   []DatasetID // ascending, deduplicated, len >= 2
}

// Empty is the canonical empty DatasetSet.
var Empty = DatasetSet{}

// NewUnique builds a singleton DatasetSet.
func NewUnique(id DatasetID) DatasetSet {
	return DatasetSet{k: kindUnique, unique: id}
}

// New builds the minimal-variant DatasetSet containing vals.
func New(vals []DatasetID) DatasetSet {
	var out DatasetSet
	out.Extend(vals)
	return out
}

// Len returns the number of distinct members.
func (d DatasetSet) Len() int {
	switch d.k {
	case kindEmpty:
		return 0
	case kindUnique:
		return 1
	default:
		return len(d.many)
	}
}

// IsEmpty reports whether the set has no members.
func (d DatasetSet) IsEmpty() bool { return d.k == kindEmpty }

// Contains reports set membership.
func (d DatasetSet) Contains(id DatasetID) bool {
	switch d.k {
	case kindEmpty:
		return false
	case kindUnique:
		return d.unique == id
	default:
		i := sort.Search(len(d.many), func(i int) bool { return d.many[i] >= id })
		return i < len(d.many) && d.many[i] == id
	}
}

// Iterate returns members in ascending order.
func (d DatasetSet) Iterate() []DatasetID {
	switch d.k {
	case kindEmpty:
		return nil
	case kindUnique:
		return []DatasetID{d.unique}
	default:
		out := make([]DatasetID, len(d.many))
		copy(out, d.many)
		return out
	}
}

// Extend merges additional ids into the set in place, promoting the
// variant upward (Empty -> Unique -> Many) as needed but never downward.
func (d *DatasetSet) Extend(ids []DatasetID) {
	if len(ids) == 0 {
		return
	}
	all := d.Iterate()
	all = append(all, ids...)
	*d = fromUnsorted(all)
}

// Union returns a new DatasetSet holding the members of both d and other.
func (d DatasetSet) Union(other DatasetSet) DatasetSet {
	if d.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return d
	}
	out := d
	out.Extend(other.Iterate())
	return out
}

// fromUnsorted builds the minimal-variant DatasetSet from an arbitrary,
// possibly-duplicated, possibly-unsorted id list.
func fromUnsorted(ids []DatasetID) DatasetSet {
	if len(ids) == 0 {
		return Empty
	}
	sorted := append([]DatasetID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	n := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[n-1] {
			sorted[n] = sorted[i]
			n++
		}
	}
	sorted = sorted[:n]

	switch len(sorted) {
	case 0:
		return Empty
	case 1:
		return NewUnique(sorted[0])
	default:
		return DatasetSet{k: kindMany, many: sorted}
	}
}

// Package minhash implements the scaled-MinHash sketch value type consumed
// by the index. A real deployment would get this from sourmash's own sketch
// library (parsing, downsampling, and compatibility checks are explicitly
// out of scope per the design); this package provides the minimal
// self-contained stand-in so the rest of the module has a concrete type to
// build against.
package minhash

import (
	"math"
	"sort"
)

// HashFunction names the k-mer hashing scheme used to build a sketch.
type HashFunction string

const (
	HashMurmur64DNA     HashFunction = "murmur64_dna"
	HashMurmur64Protein HashFunction = "murmur64_protein"
)

// DefaultSeed is the seed sourmash uses unless told otherwise.
const DefaultSeed uint64 = 42

// MinHash is a scaled MinHash sketch: the subset of a dataset's k-mer
// hashes that fall at or below MaxHash, sampling roughly 1/Scaled of the
// distinct k-mer content.
type MinHash struct {
	Ksize        uint32
	Seed         uint64
	MaxHash      uint64
	Scaled       uint64
	HashFunction HashFunction

	// Hashes is kept sorted ascending and deduplicated; every exported
	// method that builds a MinHash preserves this invariant.
	Hashes []uint64

	// Abundances mirrors Hashes when abundance tracking is enabled,
	// otherwise it is nil.
	Abundances []uint64
}

// MaxHashForScaled returns the max_hash bound for a given scaled factor:
// a scaled sketch retains every hash h with h <= 2^64/scaled.
func MaxHashForScaled(scaled uint64) uint64 {
	if scaled == 0 {
		return 0
	}
	return math.MaxUint64 / scaled
}

// ScaledForMaxHash is the inverse of MaxHashForScaled, used when a loaded
// sketch only carries max_hash (as stored in signature files).
func ScaledForMaxHash(maxHash uint64) uint64 {
	if maxHash == 0 {
		return 0
	}
	return uint64(math.MaxUint64 / float64(maxHash))
}

// IsScaled reports whether this sketch was built with a scaled (rather
// than num) MinHash scheme; only scaled sketches participate in this index.
func (m MinHash) IsScaled() bool { return m.MaxHash > 0 }

// Size returns the number of hashes retained by the sketch.
func (m MinHash) Size() int { return len(m.Hashes) }

// IsEmpty reports whether the sketch retained zero hashes.
func (m MinHash) IsEmpty() bool { return len(m.Hashes) == 0 }

// TrackAbundance reports whether per-hash abundance counts are present.
func (m MinHash) TrackAbundance() bool { return len(m.Abundances) == len(m.Hashes) && len(m.Hashes) > 0 }

// Contains reports whether hash is a member, via binary search over the
// sorted Hashes slice.
func (m MinHash) Contains(hash uint64) bool {
	i := sort.Search(len(m.Hashes), func(i int) bool { return m.Hashes[i] >= hash })
	return i < len(m.Hashes) && m.Hashes[i] == hash
}

// AbundanceOf returns the abundance recorded for hash, or 0 if abundance
// tracking is off or the hash is absent.
func (m MinHash) AbundanceOf(hash uint64) uint64 {
	if !m.TrackAbundance() {
		return 0
	}
	i := sort.Search(len(m.Hashes), func(i int) bool { return m.Hashes[i] >= hash })
	if i < len(m.Hashes) && m.Hashes[i] == hash {
		return m.Abundances[i]
	}
	return 0
}

// WithHashes returns a copy of the template's parameters carrying the given
// sorted, deduplicated hash set. Used when building sketches from scratch
// (e.g. tests, or materializing a residual query).
func (m MinHash) WithHashes(hashes []uint64) MinHash {
	out := m
	out.Hashes = hashes
	out.Abundances = nil
	return out
}

// Downsample returns a copy restricted to hashes <= maxHash (which must be
// <= m.MaxHash). Abundances, if tracked, are carried over per-hash.
func (m MinHash) Downsample(maxHash uint64) MinHash {
	out := m
	out.MaxHash = maxHash
	out.Scaled = ScaledForMaxHash(maxHash)

	cut := sort.Search(len(m.Hashes), func(i int) bool { return m.Hashes[i] > maxHash })
	out.Hashes = append([]uint64(nil), m.Hashes[:cut]...)
	if m.TrackAbundance() {
		out.Abundances = append([]uint64(nil), m.Abundances[:cut]...)
	} else {
		out.Abundances = nil
	}
	return out
}

// Intersect returns the sorted set of hashes present in both sketches.
func (m MinHash) Intersect(other MinHash) []uint64 {
	var out []uint64
	i, j := 0, 0
	for i < len(m.Hashes) && j < len(other.Hashes) {
		switch {
		case m.Hashes[i] < other.Hashes[j]:
			i++
		case m.Hashes[i] > other.Hashes[j]:
			j++
		default:
			out = append(out, m.Hashes[i])
			i++
			j++
		}
	}
	return out
}

// Subtract returns a copy of m with every hash in remove removed. remove
// need not be sorted relative to m; it is consumed as a membership set.
func (m MinHash) Subtract(remove []uint64) MinHash {
	removeSet := make(map[uint64]struct{}, len(remove))
	for _, h := range remove {
		removeSet[h] = struct{}{}
	}
	out := make([]uint64, 0, len(m.Hashes))
	var abund []uint64
	if m.TrackAbundance() {
		abund = make([]uint64, 0, len(m.Hashes))
	}
	for idx, h := range m.Hashes {
		if _, gone := removeSet[h]; gone {
			continue
		}
		out = append(out, h)
		if abund != nil {
			abund = append(abund, m.Abundances[idx])
		}
	}
	return m.WithHashes(out).withAbundances(abund)
}

func (m MinHash) withAbundances(a []uint64) MinHash {
	out := m
	out.Abundances = a
	return out
}

// SortedHashesFrom builds a sorted, deduplicated hash slice from raw input,
// the form in which signature files and test fixtures provide hashes.
func SortedHashesFrom(raw []uint64) []uint64 {
	out := append([]uint64(nil), raw...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	out = dedupeSorted(out)
	return out
}

func dedupeSorted(s []uint64) []uint64 {
	if len(s) == 0 {
		return s
	}
	n := 1
	for i := 1; i < len(s); i++ {
		if s[i] != s[n-1] {
			s[n] = s[i]
			n++
		}
	}
	return s[:n]
}

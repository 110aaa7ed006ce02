// Package colorid computes the content-addressed Color identifying a
// DatasetSet: a 128-bit digest of its ascending member list, truncated to
// 64 bits. Equal DatasetSets always produce equal Colors; distinct
// DatasetSets are merely expected (not guaranteed) to produce distinct
// ones, so callers that resolve a Color back to a DatasetSet must still
// verify membership against the stored set rather than trust the digest
// alone.
package colorid

import (
	"encoding/binary"

	"github.com/gtank/blake2/blake2b"
)

// Color is a 64-bit content-addressed identifier of a DatasetSet.
type Color uint64

const digestSize = 16

// Compute returns the Color for the given ascending, deduplicated member
// list. Callers are responsible for passing members in ascending order
// (datasetset.DatasetSet.Iterate already guarantees this), since the digest
// is order-sensitive and two sets with the same members in different
// orders must still collide to satisfy "equal DatasetSets produce equal
// Colors".
func Compute(ascendingIDs []uint64) Color {
	digest, err := blake2b.NewDigest(nil, nil, nil, digestSize)
	if err != nil {
		// NewDigest only fails for invalid key/salt/personalization
		// lengths or an out-of-range output size; none of those vary
		// here, so this is unreachable in practice.
		panic(err)
	}

	var buf [8]byte
	for _, id := range ascendingIDs {
		binary.LittleEndian.PutUint64(buf[:], id)
		digest.Write(buf[:])
	}

	sum := digest.Sum(nil)
	return Color(binary.LittleEndian.Uint64(sum[:8]))
}

// Encode serializes a Color as the 8-byte little-endian value stored
// directly in the hashes column family once compaction has run.
func (c Color) Encode() []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, uint64(c))
	return out
}

// Decode parses an 8-byte little-endian Color.
func Decode(buf []byte) Color {
	return Color(binary.LittleEndian.Uint64(buf))
}

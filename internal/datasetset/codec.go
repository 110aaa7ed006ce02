package datasetset

import (
	"encoding/binary"
	"fmt"
)

// Encode serializes d into the stable binary format: a tag byte, then
// Unique's 8-byte little-endian id, or Many's uvarint count followed by
// that many 8-byte little-endian ids in ascending order. The format never
// produces an output exactly 8 bytes long, which lets callers (see
// internal/store) tell a raw DatasetSet apart from a bare 8-byte Color by
// length alone.
func (d DatasetSet) Encode() []byte {
	switch d.k {
	case kindEmpty:
		return []byte{byte(tagEmpty)}
	case kindUnique:
		out := make([]byte, 9)
		out[0] = byte(tagUnique)
		binary.LittleEndian.PutUint64(out[1:], d.unique)
		return out
	default:
		countBuf := make([]byte, binary.MaxVarintLen64)
		n := binary.PutUvarint(countBuf, uint64(len(d.many)))
		out := make([]byte, 0, 1+n+8*len(d.many))
		out = append(out, byte(tagMany))
		out = append(out, countBuf[:n]...)
		for _, id := range d.many {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], id)
			out = append(out, b[:]...)
		}
		return out
	}
}

// Decode validates and parses a serialized DatasetSet. The declared member
// count is checked against the remaining buffer length before any
// allocation proportional to that count is made, so malformed input is
// rejected cheaply (the "zero-copy validation" contract).
func Decode(buf []byte) (DatasetSet, error) {
	if len(buf) == 0 {
		return DatasetSet{}, fmt.Errorf("datasetset: empty buffer")
	}
	switch tag(buf[0]) {
	case tagEmpty:
		if len(buf) != 1 {
			return DatasetSet{}, fmt.Errorf("datasetset: trailing bytes after Empty tag")
		}
		return Empty, nil
	case tagUnique:
		if len(buf) != 9 {
			return DatasetSet{}, fmt.Errorf("datasetset: Unique expects 9 bytes, got %d", len(buf))
		}
		return NewUnique(binary.LittleEndian.Uint64(buf[1:])), nil
	case tagMany:
		count, n := binary.Uvarint(buf[1:])
		if n <= 0 {
			return DatasetSet{}, fmt.Errorf("datasetset: malformed Many count varint")
		}
		if count < 2 {
			return DatasetSet{}, fmt.Errorf("datasetset: Many must have >= 2 members, declared %d", count)
		}
		want := 1 + n + 8*int(count)
		if want < 0 || len(buf) != want {
			return DatasetSet{}, fmt.Errorf("datasetset: Many declares %d members but buffer is %d bytes", count, len(buf))
		}
		ids := make([]DatasetID, count)
		off := 1 + n
		for i := range ids {
			ids[i] = binary.LittleEndian.Uint64(buf[off : off+8])
			off += 8
			if i > 0 && ids[i] <= ids[i-1] {
				return DatasetSet{}, fmt.Errorf("datasetset: Many members must be strictly ascending")
			}
		}
		return DatasetSet{k: kindMany, many: ids}, nil
	default:
		return DatasetSet{}, fmt.Errorf("datasetset: unknown tag %d", buf[0])
	}
}

// IsCompactedColorValue reports whether a value stored in the hashes column
// family is already an 8-byte Color rather than a raw (pre-compaction)
// DatasetSet encoding. See Encode's doc comment for why this length check
// is unambiguous.
func IsCompactedColorValue(value []byte) bool {
	return len(value) == 8
}

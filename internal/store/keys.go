package store

import "encoding/binary"

// cf is a one-byte key prefix standing in for a column family: Badger has
// no native CF concept, so each logical CF from the data model occupies a
// disjoint slice of one flat key space. The integer suffix is little-endian
// per the persisted layout, so prefix-scoped iteration order does not match
// numeric key order; nothing in this package relies on numeric ordering,
// only on prefix-scoping.
type cf byte

const (
	cfHashes     cf = 'h'
	cfColors     cf = 'c'
	cfSignatures cf = 's'
)

func encodeKey(c cf, id uint64) []byte {
	buf := make([]byte, 9)
	buf[0] = byte(c)
	binary.LittleEndian.PutUint64(buf[1:], id)
	return buf
}

func decodeKeyID(key []byte) uint64 {
	return binary.LittleEndian.Uint64(key[1:])
}

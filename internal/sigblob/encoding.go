package sigblob

import (
	"encoding/binary"
	"fmt"
)

func encodeString(s string) []byte {
	out := appendUvarint(nil, uint64(len(s)))
	return append(out, s...)
}

func appendUvarint(buf []byte, v uint64) []byte {
	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scratch[:], v)
	return append(buf, scratch[:n]...)
}

// reader is a minimal bounds-checked cursor over a byte slice, used so
// Decode can validate every length before allocating.
type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int { return len(r.buf) - r.off }

func (r *reader) done() bool { return r.off == len(r.buf) }

func (r *reader) readByte() (byte, error) {
	if r.remaining() < 1 {
		return 0, fmt.Errorf("unexpected end of buffer")
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *reader) readUint64() (uint64, error) {
	if r.remaining() < 8 {
		return 0, fmt.Errorf("unexpected end of buffer reading uint64")
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off : r.off+8])
	r.off += 8
	return v, nil
}

func (r *reader) readUvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.off:])
	if n <= 0 {
		return 0, fmt.Errorf("malformed varint")
	}
	r.off += n
	return v, nil
}

func (r *reader) readString() (string, error) {
	n, err := r.readUvarint()
	if err != nil {
		return "", err
	}
	if r.remaining() < int(n) {
		return "", fmt.Errorf("declares string of %d bytes but buffer too short", n)
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

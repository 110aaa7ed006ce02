// Package sigblob implements SignatureBlob: the tagged-variant payload
// stored per dataset in the signatures column family.
package sigblob

import (
	"encoding/binary"
	"fmt"

	"github.com/sourmash-bio/revindex/internal/minhash"
)

type tag byte

const (
	tagEmpty    tag = 0
	tagInternal tag = 1
	tagExternal tag = 2
)

// Kind discriminates a decoded SignatureBlob.
type Kind int

const (
	KindEmpty Kind = iota
	KindInternal
	KindExternal
)

// Blob is the tagged payload stored per DatasetID in the signatures CF.
type Blob struct {
	kind     Kind
	sketch   minhash.MinHash
	name     string
	filename string
	md5      string
}

// Empty is the canonical empty blob, used when a sketch was discarded
// because it was empty or below the indexing size threshold.
var Empty = Blob{kind: KindEmpty}

// NewInternal stores the full sketch inline.
func NewInternal(name, filename, md5 string, sketch minhash.MinHash) Blob {
	return Blob{kind: KindInternal, sketch: sketch, name: name, filename: filename, md5: md5}
}

// NewExternal stores only a filesystem path pointing at the original
// signature file, to be re-read on demand (e.g. during gather).
func NewExternal(path string) Blob {
	return Blob{kind: KindExternal, filename: path}
}

func (b Blob) Kind() Kind { return b.kind }

// Sketch returns the inline sketch; valid only when Kind() == KindInternal.
func (b Blob) Sketch() minhash.MinHash { return b.sketch }

// Path returns the external signature path; valid only when
// Kind() == KindExternal.
func (b Blob) Path() string { return b.filename }

// Filename returns the sketch's stored filename; valid only when
// Kind() == KindInternal.
func (b Blob) Filename() string { return b.filename }

// MD5 returns the sketch's stored MD5 checksum; valid only when
// Kind() == KindInternal.
func (b Blob) MD5() string { return b.md5 }

// DisplayName returns the name used in match output: the sketch's embedded
// name for Internal, the stored path for External, and "" for Empty (Empty
// blobs are skipped by callers before display).
func (b Blob) DisplayName() string {
	switch b.kind {
	case KindInternal:
		return b.name
	case KindExternal:
		return b.filename
	default:
		return ""
	}
}

// Encode serializes the blob: a tag byte, then for Internal a length-
// prefixed name, length-prefixed sketch hash list and metadata, or for
// External a length-prefixed path string.
func (b Blob) Encode() []byte {
	switch b.kind {
	case KindEmpty:
		return []byte{byte(tagEmpty)}
	case KindExternal:
		return append([]byte{byte(tagExternal)}, encodeString(b.filename)...)
	default:
		out := []byte{byte(tagInternal)}
		out = append(out, encodeString(b.name)...)
		out = append(out, encodeString(b.filename)...)
		out = append(out, encodeString(b.md5)...)
		out = appendUvarint(out, uint64(b.sketch.Ksize))
		out = appendUvarint(out, b.sketch.Seed)
		out = appendUvarint(out, b.sketch.MaxHash)
		out = append(out, encodeString(string(b.sketch.HashFunction))...)
		out = appendUvarint(out, uint64(len(b.sketch.Hashes)))
		for _, h := range b.sketch.Hashes {
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], h)
			out = append(out, buf[:]...)
		}
		trackAbund := b.sketch.TrackAbundance()
		if trackAbund {
			out = append(out, 1)
			for _, a := range b.sketch.Abundances {
				out = appendUvarint(out, a)
			}
		} else {
			out = append(out, 0)
		}
		return out
	}
}

// Decode parses a serialized blob, validating declared lengths against the
// remaining buffer before allocating proportional to them.
func Decode(buf []byte) (Blob, error) {
	if len(buf) == 0 {
		return Blob{}, fmt.Errorf("sigblob: empty buffer")
	}
	r := &reader{buf: buf[1:]}
	switch tag(buf[0]) {
	case tagEmpty:
		if len(buf) != 1 {
			return Blob{}, fmt.Errorf("sigblob: trailing bytes after Empty tag")
		}
		return Empty, nil
	case tagExternal:
		path, err := r.readString()
		if err != nil {
			return Blob{}, fmt.Errorf("sigblob: %w", err)
		}
		if !r.done() {
			return Blob{}, fmt.Errorf("sigblob: trailing bytes after External path")
		}
		return NewExternal(path), nil
	case tagInternal:
		name, err := r.readString()
		if err != nil {
			return Blob{}, fmt.Errorf("sigblob: %w", err)
		}
		filename, err := r.readString()
		if err != nil {
			return Blob{}, fmt.Errorf("sigblob: %w", err)
		}
		md5, err := r.readString()
		if err != nil {
			return Blob{}, fmt.Errorf("sigblob: %w", err)
		}
		ksize, err := r.readUvarint()
		if err != nil {
			return Blob{}, fmt.Errorf("sigblob: %w", err)
		}
		seed, err := r.readUvarint()
		if err != nil {
			return Blob{}, fmt.Errorf("sigblob: %w", err)
		}
		maxHash, err := r.readUvarint()
		if err != nil {
			return Blob{}, fmt.Errorf("sigblob: %w", err)
		}
		hashFn, err := r.readString()
		if err != nil {
			return Blob{}, fmt.Errorf("sigblob: %w", err)
		}
		count, err := r.readUvarint()
		if err != nil {
			return Blob{}, fmt.Errorf("sigblob: %w", err)
		}
		if r.remaining() < int(count)*8+1 {
			return Blob{}, fmt.Errorf("sigblob: declares %d hashes but buffer too short", count)
		}
		hashes := make([]uint64, count)
		for i := range hashes {
			v, err := r.readUint64()
			if err != nil {
				return Blob{}, fmt.Errorf("sigblob: %w", err)
			}
			hashes[i] = v
		}
		hasAbund, err := r.readByte()
		if err != nil {
			return Blob{}, fmt.Errorf("sigblob: %w", err)
		}
		var abund []uint64
		if hasAbund == 1 {
			abund = make([]uint64, count)
			for i := range abund {
				v, err := r.readUvarint()
				if err != nil {
					return Blob{}, fmt.Errorf("sigblob: %w", err)
				}
				abund[i] = v
			}
		}
		if !r.done() {
			return Blob{}, fmt.Errorf("sigblob: trailing bytes after Internal payload")
		}
		return NewInternal(name, filename, md5, minhash.MinHash{
			Ksize:        uint32(ksize),
			Seed:         seed,
			MaxHash:      maxHash,
			Scaled:       minhash.ScaledForMaxHash(maxHash),
			HashFunction: minhash.HashFunction(hashFn),
			Hashes:       hashes,
			Abundances:   abund,
		}), nil
	default:
		return Blob{}, fmt.Errorf("sigblob: unknown tag %d", buf[0])
	}
}

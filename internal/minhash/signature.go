package minhash

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Signature is a parsed .sig file: a named dataset alongside every sketch
// it was built with (sourmash signature files can carry several sketches
// at different ksizes/scaled values side by side).
type Signature struct {
	Name     string
	Filename string
	MD5      string
	Sketches []MinHash
}

// wireSignature mirrors the on-disk JSON shape of a sourmash .sig file: a
// top-level array of signature blocks, each carrying one or more sketches
// under "signatures".
type wireSignature struct {
	Name      string       `json:"name"`
	Filename  string       `json:"filename"`
	Signature []wireSketch `json:"signatures"`
}

type wireSketch struct {
	Ksize      uint32   `json:"ksize"`
	Num        uint32   `json:"num"`
	Seed       uint64   `json:"seed"`
	MaxHash    uint64   `json:"max_hash"`
	Molecule   string   `json:"molecule"`
	MD5Sum     string   `json:"md5sum"`
	Mins       []uint64 `json:"mins"`
	Abundances []uint64 `json:"abundances,omitempty"`
}

// LoadSignatureFile reads and parses a sourmash-format .sig file from disk.
// A file may contain several signature blocks (e.g. one per moltype); all
// sketches from all blocks are flattened into the returned Signature, with
// Name/Filename taken from the first block and MD5 from the first sketch
// that records one.
func LoadSignatureFile(path string) (Signature, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %s: %w", ErrSignatureLoadFailed, path, err)
	}
	return ParseSignature(raw, path)
}

// ParseSignature parses the bytes of a .sig file. path is used only for
// error messages and as a fallback Filename/Name when the document omits
// them.
func ParseSignature(raw []byte, path string) (Signature, error) {
	var blocks []wireSignature
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return Signature{}, fmt.Errorf("%w: %s: %w", ErrSignatureLoadFailed, path, err)
	}
	if len(blocks) == 0 {
		return Signature{}, fmt.Errorf("%w: %s: no signature blocks", ErrSignatureLoadFailed, path)
	}

	out := Signature{
		Name:     blocks[0].Name,
		Filename: blocks[0].Filename,
	}
	if out.Name == "" {
		out.Name = path
	}
	if out.Filename == "" {
		out.Filename = path
	}

	for _, blk := range blocks {
		for _, sk := range blk.Signature {
			mh := MinHash{
				Ksize:        sk.Ksize,
				Seed:         sk.Seed,
				MaxHash:      sk.MaxHash,
				Scaled:       ScaledForMaxHash(sk.MaxHash),
				HashFunction: moleculeToHashFunction(sk.Molecule),
				Hashes:       SortedHashesFrom(sk.Mins),
			}
			if len(sk.Abundances) == len(sk.Mins) && len(sk.Mins) > 0 {
				mh.Abundances = reorderAbundances(sk.Mins, sk.Abundances, mh.Hashes)
			}
			if out.MD5 == "" {
				out.MD5 = sk.MD5Sum
			}
			out.Sketches = append(out.Sketches, mh)
		}
	}
	return out, nil
}

func moleculeToHashFunction(molecule string) HashFunction {
	switch strings.ToLower(molecule) {
	case "protein", "dayhoff", "hp":
		return HashMurmur64Protein
	default:
		return HashMurmur64DNA
	}
}

// reorderAbundances re-applies the original per-hash abundances to hashes
// after SortedHashesFrom has sorted and deduplicated the mins.
func reorderAbundances(mins, abundances, sortedHashes []uint64) []uint64 {
	byHash := make(map[uint64]uint64, len(mins))
	for i, h := range mins {
		byHash[h] = abundances[i]
	}
	out := make([]uint64, len(sortedHashes))
	for i, h := range sortedHashes {
		out[i] = byHash[h]
	}
	return out
}

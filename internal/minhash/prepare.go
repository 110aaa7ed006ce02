package minhash

import "fmt"

// CheckCompatibleDownsample reports whether candidate can be downsampled to
// match template: same ksize, hash function and seed, and a max_hash at
// least as large (i.e. candidate is sampled at least as densely).
//
// Check order mirrors the original implementation: ksize, then molecule
// type, then scaled, then seed.
func CheckCompatibleDownsample(candidate, template MinHash) error {
	if candidate.Ksize != template.Ksize {
		return ErrMismatchKSizes
	}
	if candidate.HashFunction != template.HashFunction {
		return ErrMismatchDNAProt
	}
	if candidate.MaxHash < template.MaxHash {
		return ErrMismatchScaled
	}
	if candidate.Seed != template.Seed {
		return ErrMismatchSeed
	}
	return nil
}

// exactMatch reports whether candidate can be used as-is against template,
// with no downsampling required.
func exactMatch(candidate, template MinHash) bool {
	return candidate.Ksize == template.Ksize &&
		candidate.HashFunction == template.HashFunction &&
		candidate.Seed == template.Seed &&
		candidate.MaxHash == template.MaxHash
}

// PrepareSketch selects the sketch from sig that is compatible with
// template: an exact parameter match is used directly, otherwise the first
// downsample-compatible sketch is downsampled to template's max_hash. If no
// sketch qualifies, ErrNoCompatibleSketch is returned wrapping the
// compatibility error of the last scaled sketch checked (or bare
// ErrNoCompatibleSketch if sig has no scaled sketches at all).
func PrepareSketch(sig Signature, template MinHash) (MinHash, error) {
	if len(sig.Sketches) == 0 {
		return MinHash{}, ErrNoCompatibleSketch
	}

	for _, sk := range sig.Sketches {
		if exactMatch(sk, template) {
			return sk, nil
		}
	}

	var lastErr error
	for _, sk := range sig.Sketches {
		if !sk.IsScaled() {
			continue
		}
		if err := CheckCompatibleDownsample(sk, template); err != nil {
			lastErr = err
			continue
		}
		return sk.Downsample(template.MaxHash), nil
	}

	if lastErr != nil {
		return MinHash{}, fmt.Errorf("%w: %w", ErrNoCompatibleSketch, lastErr)
	}
	return MinHash{}, ErrNoCompatibleSketch
}

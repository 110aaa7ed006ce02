package minhash

import "errors"

// Compatibility errors, surfaced to CLI callers verbatim. PrepareSketch
// skips a sketch that fails a compatibility check and tries the next one in
// the signature file; when none qualifies it returns ErrNoCompatibleSketch
// wrapping the last check's error, so errors.Is matches both. Both index
// and search abort the command on that error.
var (
	ErrMismatchKSizes      = errors.New("minhash: mismatched ksizes")
	ErrMismatchDNAProt     = errors.New("minhash: mismatched molecule type (dna/protein)")
	ErrMismatchScaled      = errors.New("minhash: mismatched scaled (candidate max_hash below template)")
	ErrMismatchSeed        = errors.New("minhash: mismatched seed")
	ErrNoCompatibleSketch  = errors.New("minhash: signature has no sketch compatible with template")
	ErrSignatureLoadFailed = errors.New("minhash: failed to load signature file")
)

package store

import "errors"

// Fatal error kinds per the design's error handling policy: all of these
// abort the current command rather than being recovered from, since the
// store has no write-transaction semantics to roll back to.
var (
	ErrStoreFailure       = errors.New("store: underlying key-value store failure")
	ErrDeserialization    = errors.New("store: stored value is not a valid DatasetSet/SignatureBlob")
	ErrSignatureLoad      = errors.New("store: failed to load a signature file during indexing")
	ErrReadOnly           = errors.New("store: index was opened read-only")
	ErrColorsImmutable    = errors.New("store: the colors flag cannot change on an already-built index")
	ErrGatherNotSupported = errors.New("store: gather is not implemented for the color back-end")
)

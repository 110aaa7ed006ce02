// Package store wraps github.com/dgraph-io/badger/v4 as the persistent
// key-value store the data model is built on, emulating the column
// families the design assumes via one-byte key prefixes (see keys.go) and
// exposing the PlainIndex/ColorIndex back-ends behind a shared handle.
package store

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// flattenWorkers bounds the parallelism of a full range compaction.
const flattenWorkers = 4

// handle owns one opened Badger database for the lifetime of a command.
type handle struct {
	db       *badger.DB
	path     string
	readOnly bool
}

func openHandle(path string, readOnly bool) (*handle, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(readOnly).
		WithLogger(klogLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrStoreFailure, path, err)
	}
	return &handle{db: db, path: path, readOnly: readOnly}, nil
}

// Flush forces all pending writes to durable storage.
func (h *handle) Flush() error {
	if err := h.db.Sync(); err != nil {
		return fmt.Errorf("%w: flush: %w", ErrStoreFailure, err)
	}
	return nil
}

// Compact triggers a full range compaction, reclaiming versions superseded
// by color compaction's hashes rewrite.
func (h *handle) Compact() error {
	if err := h.db.Flatten(flattenWorkers); err != nil {
		return fmt.Errorf("%w: compact: %w", ErrStoreFailure, err)
	}
	return nil
}

// Close releases the handle. Safe to call once per open.
func (h *handle) Close() error {
	if err := h.db.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", ErrStoreFailure, err)
	}
	return nil
}

// get returns the raw value at key, or (nil, false) if absent.
func (h *handle) get(key []byte) ([]byte, bool, error) {
	var out []byte
	err := h.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, false, fmt.Errorf("%w: get: %w", ErrStoreFailure, err)
	}
	return out, out != nil, nil
}

// multiGet looks up every key in one read-only transaction, the store-level
// stand-in for the design's batched multi-get.
func (h *handle) multiGet(keys [][]byte) (map[int][]byte, error) {
	out := make(map[int][]byte)
	err := h.db.View(func(txn *badger.Txn) error {
		for i, key := range keys {
			item, err := txn.Get(key)
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			if err := item.Value(func(val []byte) error {
				out[i] = append([]byte(nil), val...)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: multi-get: %w", ErrStoreFailure, err)
	}
	return out, nil
}

// put writes key/value directly (not through the merge operator), used for
// signature blobs, which are written exactly once per dataset, and for color
// compaction's colors entries and hashes rewrites.
func (h *handle) put(key, value []byte) error {
	err := h.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("%w: put: %w", ErrStoreFailure, err)
	}
	return nil
}

// forEachPrefix iterates every key under prefix in key order, calling fn
// with the raw key and value. Iteration stops at the first error fn returns.
func (h *handle) forEachPrefix(prefix []byte, fn func(key, value []byte) error) error {
	err := h.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			var retErr error
			valErr := item.Value(func(val []byte) error {
				retErr = fn(key, val)
				return nil
			})
			if valErr != nil {
				return valErr
			}
			if retErr != nil {
				return retErr
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: iterate: %w", ErrStoreFailure, err)
	}
	return nil
}

// countPrefix returns the number of keys and the total key+value byte size
// stored under prefix, for the check command's per-CF totals.
func (h *handle) countPrefix(prefix []byte) (keys int, bytes int64, err error) {
	err = h.forEachPrefix(prefix, func(key, value []byte) error {
		keys++
		bytes += int64(len(key) + len(value))
		return nil
	})
	return keys, bytes, err
}

/*
store.go - Persistence interface for the serialized board

PURPOSE:
  The engine persists its whole state as one serialized blob under one key.
  Durability, quotas and migrations belong to the implementation, not to
  the engine: a failed write is logged by the caller and otherwise ignored.

IMPLEMENTATIONS:
  - generic/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go: SQLite key/value table
  - store/s3/store.go: One S3 object per key

EXAMPLE:
  blob, err := store.Get(ctx, "bentobox")
  if errors.Is(err, generic.ErrNotFound) {
      // first run, start empty
  }
*/
package generic

import "context"

// DefaultStoreKey is the key the board is persisted under.
const DefaultStoreKey = "bentobox"

// BlobStore is an opaque key/value store.
type BlobStore interface {
	// Get returns the blob for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put overwrites the blob for key.
	Put(ctx context.Context, key string, value []byte) error
}

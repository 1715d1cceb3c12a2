// Package blob abstracts the object storage the pipeline reads raw CSV
// extracts from and writes transformed tables back to. Implementations are
// whole-object get/put; the pipeline never streams partial blobs.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the named blob does not exist.
var ErrNotFound = errors.New("blob not found")

// Store is a keyed byte store. Paths are store-relative, slash-separated.
type Store interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Put(ctx context.Context, path string, data []byte) error
}

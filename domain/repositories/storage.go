package repositories

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned when a key has no stored bytes
var ErrBlobNotFound = errors.New("blob not found")

// BlobStorage is a flat key -> bytes store for audio containers
type BlobStorage interface {
	// Put stores data under key, replacing any previous value
	Put(ctx context.Context, key string, data []byte) error
	// Get returns the bytes stored under key or ErrBlobNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

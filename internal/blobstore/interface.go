package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get for a key that does not exist
var ErrNotFound = errors.New("blob not found")

// Store keeps uploaded documents, photos and generated videos by key
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

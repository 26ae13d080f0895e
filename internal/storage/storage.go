package storage

import (
	"context"
	"io"
)

// ObjectStore abstracts the blob backend so services can be tested
// without a running MinIO instance.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// PublicURL returns the URL clients use to fetch the object.
	PublicURL(key string) string
}

// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider (MinIO,
// DigitalOcean Spaces, AWS S3).
package storage

import (
	"context"
	"io"
)

// Storage is the interface for uploading and deleting photo objects.
type Storage interface {
	// Upload streams data to the store under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes an object identified by key. Deleting an absent object
	// is not an error.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
	// ObjectKey recovers the object key from a public URL previously
	// returned by PublicURL.
	ObjectKey(publicURL string) (string, error)
}

// Package storage defines the interface for the object store holding photo
// blobs. Swap implementations by changing the concrete type injected at
// startup — the MinIO implementation works with any S3-compatible provider.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrKeyExists is returned by Upload when an object already exists under the
// requested key. Keys carry a per-upload nonce, so hitting this indicates a
// key-derivation bug or a backend anomaly, never a normal race.
var ErrKeyExists = errors.New("object key already exists")

// Storage is the interface for uploading and retrieving photo blobs.
type Storage interface {
	// Upload streams data to the store under the given key. It must refuse
	// to overwrite an existing object and return ErrKeyExists instead.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}

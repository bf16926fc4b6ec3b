// Package storage abstracts the object storage service holding input uploads
// and generated previews. Buckets are fixed, separate namespaces; object keys
// are always "<owner_id>/<object>".
package storage

import (
	"context"
	"errors"
	"time"
)

// Fixed bucket names. Inputs and generated previews never share a namespace.
const (
	BucketUploads  = "wardrobe-uploads"
	BucketPreviews = "tryon-previews"
)

var (
	// ErrObjectExists is returned by Put when the key is already taken.
	// Artifact keys derive from unique job ids, so a collision is fatal.
	ErrObjectExists = errors.New("storage: object already exists")
	// ErrObjectMissing is returned by Get when the key does not resolve.
	ErrObjectMissing = errors.New("storage: object missing")
)

// SignedURL grants temporary unauthenticated read access to one object.
type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ObjectStore is the narrow surface the service needs from object storage.
type ObjectStore interface {
	// Put writes an object, refusing to overwrite an existing one.
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	// Exists re-checks that a written object is readable.
	Exists(ctx context.Context, bucket, key string) (bool, error)
	// Get returns the object bytes and content type.
	Get(ctx context.Context, bucket, key string) ([]byte, string, error)
	// SignGetURL mints a time-boxed read URL for the object.
	SignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (*SignedURL, error)
}

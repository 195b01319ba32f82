// Package storage is the object store gateway: opaque upload, delete, read,
// list and signed-URL operations against logical buckets.
package storage

import (
	"context"
	"time"
)

// ObjectInfo describes a listed object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore is implemented by S3Store and by in-memory fakes in tests.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
	Delete(ctx context.Context, bucket, key string) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	// PresignGet mints a time-limited read URL. Expiry is enforced by the
	// storage layer.
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
	// ObjectURL is the stable, non-signed address recorded on milestone rows.
	ObjectURL(bucket, key string) string
}

// Package archive defines the unified interface for remote archive backends
// used to share a dump file and its base snapshot between engineers without
// a shared filesystem.
//
// All providers (MinIO, S3, …) implement the Store interface. Callers depend
// only on this package — never on a specific provider package.
//
// Usage:
//
//	cfg := archive.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	err = store.PutObject(ctx, bucket, "dump.json", reader, size, "application/json")
package archive

import (
	"context"
	"io"
	"time"
)

// Store is the single interface all archive backends must implement. It
// extends a GET-only contract with Put, since internal/sync pushes files
// to the bucket as well as pulling them.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources (connections, goroutines, etc.).
	Close() error

	// ListObjects returns the objects in bucket that match opts.
	ListObjects(ctx context.Context, bucket string, opts ListOptions) ([]ObjectInfo, error)

	// GetObject opens a streaming handle to the object at key inside bucket.
	// The caller MUST call Object.Close() after reading.
	GetObject(ctx context.Context, bucket, key string) (Object, error)

	// StatObject returns metadata for the object at key inside bucket
	// without downloading its content.
	StatObject(ctx context.Context, bucket, key string) (*ObjectInfo, error)

	// PutObject uploads size bytes read from r to key inside bucket,
	// overwriting any existing object at that key.
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
}

// ObjectInfo describes a single object stored in a bucket.
type ObjectInfo struct {
	// Key is the full object path within the bucket (e.g. "dumps/dump.json").
	Key string

	// Size is the byte size of the object. -1 if unknown.
	Size int64

	// ContentType is the MIME type (e.g. "application/json").
	ContentType string

	// ETag is the object's entity tag / hash, as returned by the backend.
	ETag string

	// LastModified is when the object was last written.
	LastModified time.Time
}

// Object is a streaming handle to an object's content.
// The caller MUST call Close() after reading to avoid resource leaks.
type Object interface {
	io.ReadCloser

	// Info returns the metadata for this object.
	Info() *ObjectInfo
}

// ListOptions controls how ListObjects filters results.
type ListOptions struct {
	// Prefix restricts results to objects whose key starts with this string.
	Prefix string

	// Recursive, when true, lists all objects under the prefix without
	// grouping by virtual directories.
	Recursive bool
}

// Package minio provides a MinIO implementation of archive.Store.
//
// Usage:
//
//	cfg := archive.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	err = store.PutObject(ctx, "dumps", "dump.json", r, size, "application/json")
package minio

import (
	"context"
	"io"

	"dbjson/internal/archive"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Driver is a MinIO implementation of archive.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client *miniogo.Client
}

// New connects to MinIO using the provided Config and returns a Driver.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *archive.Config) (*Driver, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, mapError(err, "failed to create minio client")
	}

	d := &Driver{client: client}
	if err := d.Ping(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Ping verifies the MinIO server is reachable by listing buckets.
func (d *Driver) Ping(ctx context.Context) error {
	if _, err := d.client.ListBuckets(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close is a no-op for MinIO — the SDK client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// ListObjects returns objects in bucket that match opts.
func (d *Driver) ListObjects(ctx context.Context, bucket string, opts archive.ListOptions) ([]archive.ObjectInfo, error) {
	listOpts := miniogo.ListObjectsOptions{
		Prefix:    opts.Prefix,
		Recursive: opts.Recursive,
	}

	var results []archive.ObjectInfo
	for obj := range d.client.ListObjects(ctx, bucket, listOpts) {
		if obj.Err != nil {
			return nil, mapError(obj.Err, "failed to list objects")
		}
		results = append(results, archive.ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ContentType:  obj.ContentType,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
	}
	return results, nil
}

// GetObject opens a streaming handle to the object at key inside bucket.
// The caller MUST call Object.Close() after reading.
func (d *Driver) GetObject(ctx context.Context, bucket, key string) (archive.Object, error) {
	obj, err := d.client.GetObject(ctx, bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to get object")
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, mapError(err, "failed to stat object after get")
	}

	return &object{
		ReadCloser: obj,
		info: &archive.ObjectInfo{
			Key:          key,
			Size:         stat.Size,
			ContentType:  stat.ContentType,
			ETag:         stat.ETag,
			LastModified: stat.LastModified,
		},
	}, nil
}

// StatObject returns metadata for the object at key inside bucket
// without downloading its content.
func (d *Driver) StatObject(ctx context.Context, bucket, key string) (*archive.ObjectInfo, error) {
	stat, err := d.client.StatObject(ctx, bucket, key, miniogo.StatObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to stat object")
	}
	return &archive.ObjectInfo{
		Key:          stat.Key,
		Size:         stat.Size,
		ContentType:  stat.ContentType,
		ETag:         stat.ETag,
		LastModified: stat.LastModified,
	}, nil
}

// PutObject uploads size bytes read from r to key inside bucket, creating
// the bucket first if it does not already exist.
func (d *Driver) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	exists, err := d.client.BucketExists(ctx, bucket)
	if err != nil {
		return mapError(err, "failed to check bucket existence")
	}
	if !exists {
		if err := d.client.MakeBucket(ctx, bucket, miniogo.MakeBucketOptions{}); err != nil {
			return mapError(err, "failed to create bucket")
		}
	}

	_, err = d.client.PutObject(ctx, bucket, key, r, size, miniogo.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return mapError(err, "failed to put object")
	}
	return nil
}

// --- internal types ---

// object wraps a MinIO GetObject response and exposes archive.Object.
type object struct {
	io.ReadCloser
	info *archive.ObjectInfo
}

func (o *object) Info() *archive.ObjectInfo {
	return o.info
}

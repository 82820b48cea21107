// Package storage provides the object-store backends the generator and the
// extractor talk to.
package storage

import (
	"context"
	"errors"
	"time"
)

// ContentTypeOctetStream marks uploaded objects as generic binary data.
const ContentTypeOctetStream = "application/octet-stream"

var (
	ErrBucketNotFound = errors.New("bucket not found")
	ErrObjectNotFound = errors.New("object not found")
)

// ObjectInfo is the subset of object metadata the pipeline reports on.
type ObjectInfo struct {
	Bucket       string
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Store is a bucket/object service. Implementations wrap not-found
// conditions in ErrBucketNotFound / ErrObjectNotFound.
type Store interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error)
	// Namespace is the lineage namespace of the store, e.g. s3://localhost:9000.
	Namespace() string
	Close() error
}

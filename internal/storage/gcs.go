package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSOptions configure the Google Cloud Storage backend. Credentials come
// from Application Default Credentials unless CredentialsFile is set.
type GCSOptions struct {
	ProjectID       string
	CredentialsFile string
	Endpoint        string
}

type GCSStore struct {
	client    *storage.Client
	projectID string
}

func NewGCSStore(ctx context.Context, opts GCSOptions) (*GCSStore, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{client: client, projectID: opts.ProjectID}, nil
}

func (g *GCSStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := g.client.Bucket(bucket).Attrs(ctx)
	if errors.Is(err, storage.ErrBucketNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("bucket attrs %s: %w", bucket, err)
	}
	return true, nil
}

func (g *GCSStore) MakeBucket(ctx context.Context, bucket string) error {
	if g.projectID == "" {
		return fmt.Errorf("create bucket %s: project id is required", bucket)
	}
	if err := g.client.Bucket(bucket).Create(ctx, g.projectID, nil); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

func (g *GCSStore) PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	w := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gs://%s/%s: %w", bucket, key, err)
	}
	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize gs://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (g *GCSStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	r, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, g.wrapErr(bucket, key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gs://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

func (g *GCSStore) StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	attrs, err := g.client.Bucket(bucket).Object(key).Attrs(ctx)
	if err != nil {
		return ObjectInfo{}, g.wrapErr(bucket, key, err)
	}
	return ObjectInfo{
		Bucket:       bucket,
		Key:          key,
		Size:         attrs.Size,
		ContentType:  attrs.ContentType,
		LastModified: attrs.Updated,
	}, nil
}

func (g *GCSStore) wrapErr(bucket, key string, err error) error {
	switch {
	case errors.Is(err, storage.ErrBucketNotExist):
		return fmt.Errorf("gs://%s/%s: %w", bucket, key, ErrBucketNotFound)
	case errors.Is(err, storage.ErrObjectNotExist):
		return fmt.Errorf("gs://%s/%s: %w", bucket, key, ErrObjectNotFound)
	default:
		return fmt.Errorf("gs://%s/%s: %w", bucket, key, err)
	}
}

func (g *GCSStore) Namespace() string { return "gs://" }

func (g *GCSStore) Close() error { return g.client.Close() }

package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryStore keeps buckets in process memory. It backs the "memory"
// storage backend and serves as the object-store double in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string]memObject

	// PutErr, when set, is returned by every PutObject call.
	PutErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]map[string]memObject)}
}

func (m *MemoryStore) BucketExists(_ context.Context, bucket string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.buckets[bucket]
	return ok, nil
}

func (m *MemoryStore) MakeBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; ok {
		return fmt.Errorf("bucket %s already exists", bucket)
	}
	m.buckets[bucket] = make(map[string]memObject)
	return nil
}

func (m *MemoryStore) PutObject(_ context.Context, bucket, key string, data []byte, contentType string) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return fmt.Errorf("put %s/%s: %w", bucket, key, ErrBucketNotFound)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	b[key] = memObject{data: cp, contentType: contentType, modified: time.Now().UTC()}
	return nil
}

func (m *MemoryStore) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	obj, err := m.lookup(bucket, key)
	if err != nil {
		return nil, err
	}
	cp := make([]byte, len(obj.data))
	copy(cp, obj.data)
	return cp, nil
}

func (m *MemoryStore) StatObject(_ context.Context, bucket, key string) (ObjectInfo, error) {
	obj, err := m.lookup(bucket, key)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Bucket:       bucket,
		Key:          key,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		LastModified: obj.modified,
	}, nil
}

func (m *MemoryStore) lookup(bucket, key string) (memObject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return memObject{}, fmt.Errorf("get %s/%s: %w", bucket, key, ErrBucketNotFound)
	}
	obj, ok := b[key]
	if !ok {
		return memObject{}, fmt.Errorf("get %s/%s: %w", bucket, key, ErrObjectNotFound)
	}
	return obj, nil
}

func (m *MemoryStore) Namespace() string { return "memory://local" }

func (m *MemoryStore) Close() error { return nil }

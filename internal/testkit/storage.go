package testkit

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/server/storage"
)

// StoredObject is one object held by MemoryStore.
type StoredObject struct {
	Data         []byte
	ContentType  string
	LastModified time.Time
}

// MemoryStore is a lightweight in-memory storage.ObjectStore fake for tests.
// Setting one of the *Err fields makes the matching operation fail.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]StoredObject

	Now func() time.Time

	PutErr     error
	DeleteErr  error
	GetErr     error
	ListErr    error
	PresignErr error

	Puts    []string
	Deletes []string
	Signed  []string
}

var _ storage.ObjectStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string]StoredObject{}, Now: time.Now}
}

func objectID(bucket, key string) string { return bucket + "/" + key }

// Seed stores an object without recording a Put.
func (s *MemoryStore) Seed(bucket, key string, data []byte, modified time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectID(bucket, key)] = StoredObject{Data: data, LastModified: modified}
}

func (s *MemoryStore) Object(bucket, key string) (StoredObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[objectID(bucket, key)]
	return o, ok
}

// Keys lists every stored object as "bucket/key", sorted.
func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *MemoryStore) Put(_ context.Context, bucket, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PutErr != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, s.PutErr)
	}
	s.objects[objectID(bucket, key)] = StoredObject{Data: body, ContentType: contentType, LastModified: s.Now()}
	s.Puts = append(s.Puts, objectID(bucket, key))
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, s.DeleteErr)
	}
	delete(s.objects, objectID(bucket, key))
	s.Deletes = append(s.Deletes, objectID(bucket, key))
	return nil
}

func (s *MemoryStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, s.GetErr)
	}
	o, ok := s.objects[objectID(bucket, key)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrNotFound, objectID(bucket, key))
	}
	return o.Data, nil
}

func (s *MemoryStore) List(_ context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, s.ListErr)
	}
	var out []storage.ObjectInfo
	for id, o := range s.objects {
		key, ok := strings.CutPrefix(id, bucket+"/")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(o.Data)), LastModified: o.LastModified})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// PresignGet returns a fake signed URL that embeds the TTL.
func (s *MemoryStore) PresignGet(_ context.Context, bucket, key string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PresignErr != nil {
		return "", fmt.Errorf("%w: %w", common.ErrStorage, s.PresignErr)
	}
	s.Signed = append(s.Signed, objectID(bucket, key))
	return fmt.Sprintf("https://signed.test/%s/%s?expires=%d", bucket, key, int(ttl.Seconds())), nil
}

func (s *MemoryStore) ObjectURL(bucket, key string) string {
	return "https://objects.test/" + bucket + "/" + key
}

package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	appErrors "github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/errors"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStatusStore is an in-process StatusCacheStore used when Redis is
// disabled. The injected clock keeps TTL behaviour deterministic in tests.
type MemoryStatusStore struct {
	mu      sync.RWMutex
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryStatusStore constructs the store. A nil clock defaults to
// time.Now.
func NewMemoryStatusStore(now func() time.Time) *MemoryStatusStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStatusStore{now: now, entries: make(map[string]memoryEntry)}
}

// Get implements StatusCacheStore.
func (s *MemoryStatusStore) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expiresAt) {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(entry.payload, dest)
}

// Set implements StatusCacheStore.
func (s *MemoryStatusStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[key] = memoryEntry{payload: payload, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Delete implements StatusCacheStore.
func (s *MemoryStatusStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

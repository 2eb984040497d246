// Package cache provides a TTL key-value store used for provider snapshots.
//
// Two implementations exist: an in-process store for single-instance
// deployments, and a Redis-backed store for sharing snapshots across
// instances. Entries expire by TTL only; there is no eviction pressure at
// the data volumes involved.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrNotFound is returned when a key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// Store is the contract both cache implementations satisfy.
// Values are opaque byte slices; callers own serialization.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// Clear removes every entry. Exposed through the admin cache-clear
	// endpoint.
	Clear(ctx context.Context) error

	// Len reports the number of live (unexpired) entries.
	Len(ctx context.Context) (int, error)
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-process TTL store.
type MemoryStore struct {
	clock clockwork.Clock

	mu        sync.RWMutex
	entries   map[string]memoryEntry
	lastSweep time.Time
}

// sweepInterval bounds how often expired entries are removed in bulk.
const sweepInterval = 5 * time.Minute

// NewMemoryStore creates an in-process store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(clockwork.NewRealClock())
}

// NewMemoryStoreWithClock creates a store with an injectable clock for tests.
func NewMemoryStoreWithClock(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		clock:     clock,
		entries:   make(map[string]memoryEntry),
		lastSweep: clock.Now(),
	}
}

// Get returns the value for key, or ErrNotFound if absent or expired.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || s.clock.Now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}
	return entry.value, nil
}

// Set stores value under key for the given TTL.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{
		value:     value,
		expiresAt: now.Add(ttl),
	}
	s.sweepLocked(now)
	return nil
}

// Delete removes a single key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Clear removes every entry.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]memoryEntry)
	return nil
}

// Len reports the number of unexpired entries.
func (s *MemoryStore) Len(_ context.Context) (int, error) {
	now := s.clock.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, entry := range s.entries {
		if now.Before(entry.expiresAt) {
			count++
		}
	}
	return count, nil
}

// sweepLocked drops expired entries. Caller must hold the write lock.
func (s *MemoryStore) sweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now

	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}

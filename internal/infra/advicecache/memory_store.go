package advicecache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/food-waste-predictor/internal/domain/advisor"
)

const (
	defaultMaxEntries = 10000
	sweepInterval     = time.Minute
)

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-memory AI reply cache for tests and single instance deployments.
// Expired entries are swept on writes and the map never exceeds maxEntries.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]entry
	now        func() time.Time
	maxEntries int
	lastSweep  time.Time
}

// NewMemoryStore constructs a cache backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:    make(map[string]entry),
		now:        time.Now,
		maxEntries: defaultMaxEntries,
	}
}

// Get implements advisor.Cache.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	item, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if s.hasExpired(item.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return "", false, nil
	}
	return item.value, true, nil
}

// Save stores the value with an optional TTL.
func (s *MemoryStore) Save(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweepLocked()
		s.lastSweep = now
	}
	if _, exists := s.entries[key]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.sweepLocked()
		if len(s.entries) >= s.maxEntries {
			s.evictSoonestLocked()
		}
	}
	exp := time.Time{}
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	s.entries[key] = entry{value: value, expiresAt: exp}
	return nil
}

func (s *MemoryStore) sweepLocked() {
	for key, item := range s.entries {
		if s.hasExpired(item.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// evictSoonestLocked drops the entry closest to expiry. Entries without a TTL go last.
func (s *MemoryStore) evictSoonestLocked() {
	var (
		victim  string
		soonest time.Time
		found   bool
	)
	for key, item := range s.entries {
		if item.expiresAt.IsZero() {
			if !found {
				victim, found = key, true
			}
			continue
		}
		if !found || soonest.IsZero() || item.expiresAt.Before(soonest) {
			victim, soonest, found = key, item.expiresAt, true
		}
	}
	if found {
		delete(s.entries, victim)
	}
}

// Close is a no-op so both caches share a lifecycle.
func (s *MemoryStore) Close() {}

func (s *MemoryStore) hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(s.now())
}

var _ advisor.Cache = (*MemoryStore)(nil)

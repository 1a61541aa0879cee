package snapshots

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/team-composer/internal/types"
)

type memoryEntry struct {
	snap     *types.PoolSnapshot
	storedAt time.Time
}

// MemoryStore is an in-process Store. Entries are evicted oldest first once
// MaxEntries is exceeded, and are treated as gone once older than TTL.
type MemoryStore struct {
	mu      sync.Mutex
	policy  RetentionPolicy
	now     func() time.Time
	entries map[uuid.UUID]memoryEntry
	order   []uuid.UUID
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore(policy RetentionPolicy) *MemoryStore {
	return &MemoryStore{
		policy:  policy,
		now:     time.Now,
		entries: make(map[uuid.UUID]memoryEntry),
	}
}

// SetClock replaces the clock used for TTL checks
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Put stores a copy of the snapshot, replacing any snapshot with the same id
func (s *MemoryStore) Put(_ context.Context, snap *types.PoolSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, exists := s.entries[snap.SuggestionID]; exists {
		s.remove(snap.SuggestionID)
	}
	s.entries[snap.SuggestionID] = memoryEntry{snap: snap.Clone(), storedAt: now}
	s.order = append(s.order, snap.SuggestionID)
	s.evict(now)
	return nil
}

// Get returns a copy of the snapshot for id
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*types.PoolSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evict(s.now())
	entry, ok := s.entries[id]
	if !ok {
		return nil, unknown(id)
	}
	return entry.snap.Clone(), nil
}

// Len returns the number of retained snapshots
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evict(s.now())
	return len(s.entries)
}

// evict drops expired entries and then the oldest ones over the size bound.
// Callers hold the lock.
func (s *MemoryStore) evict(now time.Time) {
	if s.policy.TTL > 0 {
		cutoff := now.Add(-s.policy.TTL)
		kept := s.order[:0]
		for _, id := range s.order {
			if s.entries[id].storedAt.Before(cutoff) {
				delete(s.entries, id)
				continue
			}
			kept = append(kept, id)
		}
		s.order = kept
	}

	if s.policy.MaxEntries > 0 {
		for len(s.order) > s.policy.MaxEntries {
			delete(s.entries, s.order[0])
			s.order = s.order[1:]
		}
	}
}

func (s *MemoryStore) remove(id uuid.UUID) {
	delete(s.entries, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

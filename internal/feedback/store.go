// Package feedback keeps the append-only log of human reactions to suggestions.
package feedback

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonathan/team-composer/internal/types"
)

// Store is an append-only feedback log. Records are never updated or deleted.
// Query returns matching records oldest first, truncated to filter.Limit when
// it is positive.
type Store interface {
	Record(ctx context.Context, rec *types.FeedbackRecord) error
	Query(ctx context.Context, filter types.FeedbackFilter) ([]types.FeedbackRecord, error)
}

// Error represents a feedback log failure
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu      sync.RWMutex
	records []types.FeedbackRecord
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record appends a copy of rec
func (s *MemoryStore) Record(_ context.Context, rec *types.FeedbackRecord) error {
	if rec == nil {
		return &Error{Message: "record is required"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, cloneRecord(rec))
	return nil
}

// Query returns copies of the matching records
func (s *MemoryStore) Query(_ context.Context, filter types.FeedbackFilter) ([]types.FeedbackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.FeedbackRecord, 0)
	for i := range s.records {
		if !filter.Matches(&s.records[i]) {
			continue
		}
		out = append(out, cloneRecord(&s.records[i]))
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Len returns the number of records in the log
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cloneRecord(rec *types.FeedbackRecord) types.FeedbackRecord {
	out := *rec
	out.MemberIDs = append([]string(nil), rec.MemberIDs...)
	if rec.Feedback.Rating != nil {
		rating := *rec.Feedback.Rating
		out.Feedback.Rating = &rating
	}
	out.Feedback.Modifications = rec.Feedback.Modifications.Clone()
	return out
}

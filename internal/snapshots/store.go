// Package snapshots retains the candidate pool behind each suggestion so that
// what-if runs can re-optimize against exactly the same candidates.
package snapshots

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/team-composer/internal/types"
)

// Store keeps pool snapshots keyed by suggestion id. Get returns an error
// wrapping types.ErrUnknownSuggestion when the snapshot was never stored or
// has been evicted.
type Store interface {
	Put(ctx context.Context, snap *types.PoolSnapshot) error
	Get(ctx context.Context, id uuid.UUID) (*types.PoolSnapshot, error)
}

// RetentionPolicy bounds how many snapshots are kept and for how long.
// Zero values mean unbounded.
type RetentionPolicy struct {
	MaxEntries int
	TTL        time.Duration
}

// DefaultRetentionPolicy keeps the last 256 snapshots for up to 24 hours
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{MaxEntries: 256, TTL: 24 * time.Hour}
}

// Validate checks that the bounds are non-negative
func (p RetentionPolicy) Validate() error {
	if p.MaxEntries < 0 {
		return fmt.Errorf("retention: max_snapshots must be non-negative, got %d", p.MaxEntries)
	}
	if p.TTL < 0 {
		return fmt.Errorf("retention: ttl must be non-negative, got %s", p.TTL)
	}
	return nil
}

func unknown(id uuid.UUID) error {
	return fmt.Errorf("%w: no retained pool snapshot for %s", types.ErrUnknownSuggestion, id)
}

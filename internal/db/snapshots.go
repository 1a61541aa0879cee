package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/team-composer/internal/snapshots"
	"github.com/jonathan/team-composer/internal/types"
)

// SaveSnapshot stores a pool snapshot, replacing one with the same suggestion id
func (db *DB) SaveSnapshot(ctx context.Context, snap *types.PoolSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO pool_snapshots (suggestion_id, payload, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (suggestion_id) DO UPDATE SET payload = $2, created_at = $3, stored_at = NOW()`,
		snap.SuggestionID, payload, snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot loads a snapshot stored after notBefore. Returns nil if none exists.
func (db *DB) GetSnapshot(ctx context.Context, id uuid.UUID, notBefore time.Time) (*types.PoolSnapshot, error) {
	var payload []byte
	err := db.pool.QueryRow(ctx,
		`SELECT payload FROM pool_snapshots WHERE suggestion_id = $1 AND stored_at >= $2`,
		id, notBefore,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snap types.PoolSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// EvictSnapshots deletes snapshots stored before olderThan and then all but the
// newest keep snapshots. A zero olderThan or keep skips that rule. Returns the
// number of rows deleted.
func (db *DB) EvictSnapshots(ctx context.Context, olderThan time.Time, keep int) (int64, error) {
	var deleted int64

	if !olderThan.IsZero() {
		tag, err := db.pool.Exec(ctx, `DELETE FROM pool_snapshots WHERE stored_at < $1`, olderThan)
		if err != nil {
			return deleted, fmt.Errorf("failed to evict expired snapshots: %w", err)
		}
		deleted += tag.RowsAffected()
	}

	if keep > 0 {
		tag, err := db.pool.Exec(ctx,
			`DELETE FROM pool_snapshots WHERE suggestion_id NOT IN (
			     SELECT suggestion_id FROM pool_snapshots ORDER BY stored_at DESC LIMIT $1
			 )`,
			keep,
		)
		if err != nil {
			return deleted, fmt.Errorf("failed to evict old snapshots: %w", err)
		}
		deleted += tag.RowsAffected()
	}

	return deleted, nil
}

// SnapshotStore adapts DB to snapshots.Store, applying a retention policy on every Put
type SnapshotStore struct {
	db     *DB
	policy snapshots.RetentionPolicy
	now    func() time.Time
}

// NewSnapshotStore creates a SnapshotStore
func NewSnapshotStore(db *DB, policy snapshots.RetentionPolicy) *SnapshotStore {
	return &SnapshotStore{db: db, policy: policy, now: time.Now}
}

func (s *SnapshotStore) cutoff() time.Time {
	if s.policy.TTL <= 0 {
		return time.Time{}
	}
	return s.now().Add(-s.policy.TTL)
}

// Put implements snapshots.Store
func (s *SnapshotStore) Put(ctx context.Context, snap *types.PoolSnapshot) error {
	if err := s.db.SaveSnapshot(ctx, snap); err != nil {
		return err
	}
	_, err := s.db.EvictSnapshots(ctx, s.cutoff(), s.policy.MaxEntries)
	return err
}

// Get implements snapshots.Store
func (s *SnapshotStore) Get(ctx context.Context, id uuid.UUID) (*types.PoolSnapshot, error) {
	snap, err := s.db.GetSnapshot(ctx, id, s.cutoff())
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: no retained pool snapshot for %s", types.ErrUnknownSuggestion, id)
	}
	return snap, nil
}

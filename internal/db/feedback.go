package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/team-composer/internal/types"
)

// AppendFeedback inserts a feedback record. Records are never updated.
func (db *DB) AppendFeedback(ctx context.Context, rec *types.FeedbackRecord) error {
	payload, err := json.Marshal(rec.Feedback)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}

	memberIDs := rec.MemberIDs
	if memberIDs == nil {
		memberIDs = []string{}
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO feedback_records (id, suggestion_id, feedback_type, feedback, member_ids, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.SuggestionID, string(rec.Feedback.Type), payload, memberIDs, rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append feedback: %w", err)
	}
	return nil
}

// QueryFeedback returns the records matching the filter, oldest first
func (db *DB) QueryFeedback(ctx context.Context, filter types.FeedbackFilter) ([]types.FeedbackRecord, error) {
	query, args := buildFeedbackQuery(filter)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	records := make([]types.FeedbackRecord, 0)
	for rows.Next() {
		var rec types.FeedbackRecord
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.SuggestionID, &payload, &rec.MemberIDs, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		if err := json.Unmarshal(payload, &rec.Feedback); err != nil {
			return nil, fmt.Errorf("failed to unmarshal feedback: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}
	return records, nil
}

// buildFeedbackQuery renders the filter as a parameterized SELECT
func buildFeedbackQuery(filter types.FeedbackFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filter.SuggestionID != uuid.Nil {
		add("suggestion_id = $%d", filter.SuggestionID)
	}
	if filter.Type != "" {
		add("feedback_type = $%d", string(filter.Type))
	}
	if !filter.Since.IsZero() {
		add("recorded_at >= $%d", filter.Since)
	}
	if !filter.Until.IsZero() {
		add("recorded_at < $%d", filter.Until)
	}

	var b strings.Builder
	b.WriteString("SELECT id, suggestion_id, feedback, member_ids, recorded_at FROM feedback_records")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY recorded_at, seq")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

// FeedbackStore adapts DB to feedback.Store
type FeedbackStore struct {
	db *DB
}

// NewFeedbackStore creates a FeedbackStore
func NewFeedbackStore(db *DB) *FeedbackStore {
	return &FeedbackStore{db: db}
}

// Record implements feedback.Store
func (s *FeedbackStore) Record(ctx context.Context, rec *types.FeedbackRecord) error {
	return s.db.AppendFeedback(ctx, rec)
}

// Query implements feedback.Store
func (s *FeedbackStore) Query(ctx context.Context, filter types.FeedbackFilter) ([]types.FeedbackRecord, error) {
	return s.db.QueryFeedback(ctx, filter)
}

package feedback

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/team-composer/internal/logger"
	"github.com/jonathan/team-composer/internal/snapshots"
	"github.com/jonathan/team-composer/internal/types"
)

// Recorder validates feedback, ties it to the members of the suggestion it
// refers to and appends it to a Store.
type Recorder struct {
	store     Store
	snapshots snapshots.Store
	log       *logger.Logger
	now       func() time.Time
	newID     func() uuid.UUID
}

// NewRecorder creates a Recorder. Suggestions are resolved through snaps, so
// feedback can only be recorded for suggestions that are still retained.
func NewRecorder(store Store, snaps snapshots.Store, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{
		store:     store,
		snapshots: snaps,
		log:       log,
		now:       time.Now,
		newID:     uuid.New,
	}
}

// Record appends feedback for a suggestion and returns the stored record
func (r *Recorder) Record(ctx context.Context, suggestionID uuid.UUID, fb types.Feedback) (*types.FeedbackRecord, error) {
	if err := fb.Validate(); err != nil {
		return nil, &Error{Message: "invalid feedback", Cause: err}
	}

	snap, err := r.snapshots.Get(ctx, suggestionID)
	if err != nil {
		return nil, err
	}

	rec := &types.FeedbackRecord{
		ID:           r.newID(),
		SuggestionID: suggestionID,
		Feedback:     fb,
		MemberIDs:    append([]string(nil), snap.MemberIDs...),
		RecordedAt:   r.now().UTC(),
	}
	if err := r.store.Record(ctx, rec); err != nil {
		return nil, &Error{Message: "failed to record feedback", Cause: err}
	}

	r.log.Info("feedback recorded",
		"suggestion_id", suggestionID.String(),
		"feedback_type", string(fb.Type),
		"members", len(rec.MemberIDs),
	)
	return rec, nil
}

// Query returns records matching the filter
func (r *Recorder) Query(ctx context.Context, filter types.FeedbackFilter) ([]types.FeedbackRecord, error) {
	records, err := r.store.Query(ctx, filter)
	if err != nil {
		return nil, &Error{Message: "failed to query feedback", Cause: err}
	}
	return records, nil
}

package feedback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/team-composer/internal/snapshots"
	"github.com/jonathan/team-composer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(suggestion uuid.UUID, ft types.FeedbackType, at time.Time) *types.FeedbackRecord {
	return &types.FeedbackRecord{
		ID:           uuid.New(),
		SuggestionID: suggestion,
		Feedback:     types.Feedback{Type: ft},
		MemberIDs:    []string{"a", "b"},
		RecordedAt:   at,
	}
}

func TestMemoryStore_QueryFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s1, s2 := uuid.New(), uuid.New()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, record(s1, types.FeedbackAccept, base)))
	require.NoError(t, store.Record(ctx, record(s1, types.FeedbackReject, base.Add(time.Hour))))
	require.NoError(t, store.Record(ctx, record(s2, types.FeedbackModify, base.Add(2*time.Hour))))
	require.NoError(t, store.Record(ctx, record(s2, types.FeedbackAccept, base.Add(3*time.Hour))))

	tests := []struct {
		name   string
		filter types.FeedbackFilter
		want   []types.FeedbackType
	}{
		{"all", types.FeedbackFilter{}, []types.FeedbackType{"accept", "reject", "modify", "accept"}},
		{"by suggestion", types.FeedbackFilter{SuggestionID: s2}, []types.FeedbackType{"modify", "accept"}},
		{"by type", types.FeedbackFilter{Type: types.FeedbackAccept}, []types.FeedbackType{"accept", "accept"}},
		{"since", types.FeedbackFilter{Since: base.Add(2 * time.Hour)}, []types.FeedbackType{"modify", "accept"}},
		{"until is exclusive", types.FeedbackFilter{Until: base.Add(time.Hour)}, []types.FeedbackType{"accept"}},
		{"limit", types.FeedbackFilter{Limit: 3}, []types.FeedbackType{"accept", "reject", "modify"}},
		{"no match", types.FeedbackFilter{SuggestionID: uuid.New()}, []types.FeedbackType{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := store.Query(ctx, tt.filter)
			require.NoError(t, err)
			got := make([]types.FeedbackType, 0, len(records))
			for _, r := range records {
				got = append(got, r.Feedback.Type)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemoryStore_RecordsAreImmutable(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rating := 4
	rec := record(uuid.New(), types.FeedbackAccept, time.Now())
	rec.Feedback.Rating = &rating
	require.NoError(t, store.Record(ctx, rec))

	rec.MemberIDs[0] = "changed"
	rating = 1

	got, err := store.Query(ctx, types.FeedbackFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].MemberIDs[0])
	assert.Equal(t, 4, *got[0].Feedback.Rating)

	got[0].MemberIDs[1] = "changed"
	again, err := store.Query(ctx, types.FeedbackFilter{})
	require.NoError(t, err)
	assert.Equal(t, "b", again[0].MemberIDs[1])
}

func TestMemoryStore_ModificationsAreImmutable(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	minExp := 3.0
	rec := record(uuid.New(), types.FeedbackModify, time.Now())
	rec.Feedback.Modifications = &types.ConstraintOverrides{
		MaxPerDepartment:     map[string]int{"eng": 1},
		RequiredSeniorityMix: map[types.SeniorityBand]int{types.BandSenior: 1},
		MinExperienceYears:   &minExp,
	}
	require.NoError(t, store.Record(ctx, rec))

	rec.Feedback.Modifications.MaxPerDepartment["eng"] = 99
	rec.Feedback.Modifications.RequiredSeniorityMix[types.BandSenior] = 9
	minExp = 42

	got, err := store.Query(ctx, types.FeedbackFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	mods := got[0].Feedback.Modifications
	require.NotNil(t, mods)
	assert.Equal(t, 1, mods.MaxPerDepartment["eng"])
	assert.Equal(t, 1, mods.RequiredSeniorityMix[types.BandSenior])
	assert.Equal(t, 3.0, *mods.MinExperienceYears)

	mods.MaxPerDepartment["eng"] = 7
	*mods.MinExperienceYears = 8
	again, err := store.Query(ctx, types.FeedbackFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, again[0].Feedback.Modifications.MaxPerDepartment["eng"])
	assert.Equal(t, 3.0, *again[0].Feedback.Modifications.MinExperienceYears)
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Record(ctx, record(id, types.FeedbackAccept, time.Now()))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
}

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()
	snaps := snapshots.NewMemoryStore(snapshots.RetentionPolicy{})
	snap := &types.PoolSnapshot{SuggestionID: uuid.New(), MemberIDs: []string{"e1", "e2"}}
	require.NoError(t, snaps.Put(ctx, snap))

	store := NewMemoryStore()
	recorder := NewRecorder(store, snaps, nil)
	recorder.now = func() time.Time { return time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC) }

	rating := 5
	rec, err := recorder.Record(ctx, snap.SuggestionID, types.Feedback{
		Type:        types.FeedbackAccept,
		Comments:    "good mix",
		Rating:      &rating,
		SubmittedBy: "lead",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, []string{"e1", "e2"}, rec.MemberIDs)
	assert.Equal(t, time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC), rec.RecordedAt)

	records, err := recorder.Query(ctx, types.FeedbackFilter{SuggestionID: snap.SuggestionID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good mix", records[0].Feedback.Comments)
}

func TestRecorder_UnknownSuggestion(t *testing.T) {
	store := NewMemoryStore()
	recorder := NewRecorder(store, snapshots.NewMemoryStore(snapshots.RetentionPolicy{}), nil)

	_, err := recorder.Record(context.Background(), uuid.New(), types.Feedback{Type: types.FeedbackReject})

	assert.ErrorIs(t, err, types.ErrUnknownSuggestion)
	assert.Equal(t, 0, store.Len())
}

func TestRecorder_InvalidFeedback(t *testing.T) {
	ctx := context.Background()
	snaps := snapshots.NewMemoryStore(snapshots.RetentionPolicy{})
	snap := &types.PoolSnapshot{SuggestionID: uuid.New()}
	require.NoError(t, snaps.Put(ctx, snap))
	recorder := NewRecorder(NewMemoryStore(), snaps, nil)

	bad := 9
	tests := []types.Feedback{
		{Type: "maybe"},
		{},
		{Type: types.FeedbackAccept, Rating: &bad},
	}
	for _, fb := range tests {
		_, err := recorder.Record(ctx, snap.SuggestionID, fb)
		var fbErr *Error
		assert.ErrorAs(t, err, &fbErr)
	}
}

package snapshots

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/team-composer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(ids ...string) *types.PoolSnapshot {
	snap := &types.PoolSnapshot{
		SuggestionID: uuid.New(),
		Requirement: types.Requirement{
			Role:           "dev",
			RequiredSkills: []string{"go"},
			TeamSize:       2,
			SeniorityMix:   map[types.SeniorityBand]int{types.BandMid: 1},
		},
		Constraints: types.ConstraintSet{MaxWorkload: 0.8, MaxPerDepartment: map[string]int{"eng": 1}},
	}
	for _, id := range ids {
		snap.Pool = append(snap.Pool, types.CandidateProfile{EmployeeID: id, Department: "eng"})
	}
	return snap
}

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(RetentionPolicy{})
	snap := snapshot("a", "b")

	require.NoError(t, store.Put(ctx, snap))

	got, err := store.Get(ctx, snap.SuggestionID)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestMemoryStore_UnknownSuggestion(t *testing.T) {
	_, err := NewMemoryStore(RetentionPolicy{}).Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, types.ErrUnknownSuggestion)
}

func TestMemoryStore_ReturnsIndependentCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(RetentionPolicy{})
	snap := snapshot("a", "b")
	require.NoError(t, store.Put(ctx, snap))

	snap.Pool[0].EmployeeID = "mutated"
	snap.Constraints.MaxPerDepartment["eng"] = 9

	got, err := store.Get(ctx, snap.SuggestionID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Pool[0].EmployeeID)
	assert.Equal(t, 1, got.Constraints.MaxPerDepartment["eng"])

	got.Requirement.SeniorityMix[types.BandMid] = 5
	again, err := store.Get(ctx, snap.SuggestionID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Requirement.SeniorityMix[types.BandMid])
}

func TestMemoryStore_CandidateSlicesAreNotShared(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(RetentionPolicy{})
	snap := snapshot("a")
	snap.Pool[0].Skills = []string{"go", "sql"}
	snap.Pool[0].FeedbackHighlights = []string{"steady"}
	snap.Pool[0].History = []types.ProjectRecord{{Name: "billing", Skills: []string{"kafka"}}}
	require.NoError(t, store.Put(ctx, snap))

	snap.Pool[0].Skills[0] = "rust"
	snap.Pool[0].History[0].Skills[0] = "cobol"

	got, err := store.Get(ctx, snap.SuggestionID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, got.Pool[0].Skills)
	assert.Equal(t, "kafka", got.Pool[0].History[0].Skills[0])

	got.Pool[0].Skills[1] = "python"
	got.Pool[0].FeedbackHighlights[0] = "late"
	got.Pool[0].History[0].Name = "renamed"

	again, err := store.Get(ctx, snap.SuggestionID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, again.Pool[0].Skills)
	assert.Equal(t, []string{"steady"}, again.Pool[0].FeedbackHighlights)
	assert.Equal(t, "billing", again.Pool[0].History[0].Name)
}

func TestMemoryStore_KeepLastN(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(RetentionPolicy{MaxEntries: 2})

	first, second, third := snapshot("a"), snapshot("b"), snapshot("c")
	require.NoError(t, store.Put(ctx, first))
	require.NoError(t, store.Put(ctx, second))
	require.NoError(t, store.Put(ctx, third))

	assert.Equal(t, 2, store.Len())
	_, err := store.Get(ctx, first.SuggestionID)
	assert.ErrorIs(t, err, types.ErrUnknownSuggestion)
	_, err = store.Get(ctx, third.SuggestionID)
	assert.NoError(t, err)
}

func TestMemoryStore_ReplacingRefreshesPosition(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(RetentionPolicy{MaxEntries: 2})

	first, second, third := snapshot("a"), snapshot("b"), snapshot("c")
	require.NoError(t, store.Put(ctx, first))
	require.NoError(t, store.Put(ctx, second))
	require.NoError(t, store.Put(ctx, first))
	require.NoError(t, store.Put(ctx, third))

	_, err := store.Get(ctx, second.SuggestionID)
	assert.ErrorIs(t, err, types.ErrUnknownSuggestion)
	_, err = store.Get(ctx, first.SuggestionID)
	assert.NoError(t, err)
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(RetentionPolicy{TTL: 30 * time.Minute})
	store.SetClock(func() time.Time { return now })

	old := snapshot("a")
	require.NoError(t, store.Put(ctx, old))

	now = now.Add(20 * time.Minute)
	fresh := snapshot("b")
	require.NoError(t, store.Put(ctx, fresh))

	_, err := store.Get(ctx, old.SuggestionID)
	assert.NoError(t, err, "still inside the window")

	now = now.Add(11 * time.Minute)
	_, err = store.Get(ctx, old.SuggestionID)
	assert.ErrorIs(t, err, types.ErrUnknownSuggestion)
	_, err = store.Get(ctx, fresh.SuggestionID)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(RetentionPolicy{MaxEntries: 10})

	done := make(chan uuid.UUID)
	for i := 0; i < 20; i++ {
		go func() {
			snap := snapshot("x")
			_ = store.Put(ctx, snap)
			_, _ = store.Get(ctx, snap.SuggestionID)
			done <- snap.SuggestionID
		}()
	}
	for i := 0; i < 20; i++ {
		<-done
	}
	assert.Equal(t, 10, store.Len())
}

func TestRetentionPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultRetentionPolicy().Validate())
	assert.Error(t, RetentionPolicy{MaxEntries: -1}.Validate())
	assert.Error(t, RetentionPolicy{TTL: -time.Second}.Validate())
}

package whatif

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/team-composer/internal/constraints"
	"github.com/jonathan/team-composer/internal/feasibility"
	"github.com/jonathan/team-composer/internal/scoring"
	"github.com/jonathan/team-composer/internal/selection"
	"github.com/jonathan/team-composer/internal/snapshots"
	"github.com/jonathan/team-composer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *snapshots.MemoryStore
	optimizer *selection.Optimizer
	engine    *Engine
	req       *types.Requirement
	cs        types.ConstraintSet
	pool      []types.CandidateProfile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	req := &types.Requirement{
		Role:                  "backend",
		RequiredSkills:        []string{"go", "postgres", "kafka"},
		ExperienceLevel:       5,
		TeamSize:              3,
		DepartmentConstraints: map[string]int{"eng": 1},
	}
	pool := []types.CandidateProfile{
		{EmployeeID: "eng-1", Department: "eng", ExperienceYears: 5, Skills: []string{"go", "postgres", "kafka"}},
		{EmployeeID: "eng-2", Department: "eng", ExperienceYears: 5, Skills: []string{"go", "postgres"}},
		{EmployeeID: "eng-3", Department: "eng", ExperienceYears: 6, Skills: []string{"go", "kafka"}},
		{EmployeeID: "data-1", Department: "data", ExperienceYears: 4, Skills: []string{"postgres"}},
		{EmployeeID: "ops-1", Department: "ops", ExperienceYears: 7, Skills: []string{"kafka"}},
		{EmployeeID: "busy-1", Department: "ops", ExperienceYears: 5, Skills: []string{"go"}, Availability: 0.95},
	}

	store := snapshots.NewMemoryStore(snapshots.RetentionPolicy{})
	optimizer := selection.NewOptimizer(scoring.DefaultScorer(), selection.DefaultOptions())
	return &fixture{
		store:     store,
		optimizer: optimizer,
		engine:    NewEngine(store, optimizer, nil),
		req:       req,
		cs:        constraints.Build(req, constraints.DefaultPolicy()),
		pool:      pool,
	}
}

func (f *fixture) suggest(t *testing.T) *types.TeamSuggestion {
	t.Helper()
	result := feasibility.Evaluate(f.pool, f.cs)
	s, err := f.optimizer.Compose(result.Admitted, f.req)
	require.NoError(t, err)
	require.NoError(t, Retain(context.Background(), f.store, f.req, f.cs, f.pool, s))
	return s
}

func TestReoptimize_SameConstraintsReproduceTeam(t *testing.T) {
	f := newFixture(t)
	base := f.suggest(t)

	out, err := f.engine.Reoptimize(context.Background(), base.SuggestionID, f.cs)
	require.NoError(t, err)

	assert.Equal(t, base.MemberIDs(), out.Suggestion.MemberIDs())
	assert.NotEqual(t, base.SuggestionID, out.Suggestion.SuggestionID)
	require.NotNil(t, out.Suggestion.BaseSuggestionID)
	assert.Equal(t, base.SuggestionID, *out.Suggestion.BaseSuggestionID)
	assert.InDelta(t, base.Objective, out.Suggestion.Objective, 1e-12)
}

func TestReoptimize_RelaxedDepartmentCap(t *testing.T) {
	f := newFixture(t)
	base := f.suggest(t)

	engInBase := 0
	for _, m := range base.Members {
		if m.Candidate.Department == "eng" {
			engInBase++
		}
	}
	assert.Equal(t, 1, engInBase)

	relaxed := constraints.ApplyOverrides(f.cs, &types.ConstraintOverrides{ClearDepartmentCaps: true})
	out, err := f.engine.Reoptimize(context.Background(), base.SuggestionID, relaxed)
	require.NoError(t, err)

	assert.Equal(t, 5, len(out.Feasibility.Admitted))
	assert.Equal(t, 1, len(out.Feasibility.Rejected), "the overbooked candidate stays out")
	assert.GreaterOrEqual(t, out.Suggestion.FeasiblePoolSize, base.FeasiblePoolSize)
	assert.Greater(t, out.Suggestion.Objective, base.Objective)
}

func TestReoptimize_UsesRetainedPoolNotCallerState(t *testing.T) {
	f := newFixture(t)
	base := f.suggest(t)

	// Changes to the caller's pool after the suggestion must not leak in.
	f.pool[0].Skills = nil
	f.pool[0].Department = "elsewhere"

	out, err := f.engine.Reoptimize(context.Background(), base.SuggestionID, f.cs)
	require.NoError(t, err)
	assert.Equal(t, base.MemberIDs(), out.Suggestion.MemberIDs())
}

func TestReoptimize_UnknownSuggestion(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Reoptimize(context.Background(), uuid.New(), f.cs)
	assert.ErrorIs(t, err, types.ErrUnknownSuggestion)
}

func TestReoptimize_ConstraintConflict(t *testing.T) {
	f := newFixture(t)
	base := f.suggest(t)

	tests := []struct {
		name string
		o    *types.ConstraintOverrides
	}{
		{"min above max", &types.ConstraintOverrides{MinExperienceYears: floatPtr(9), MaxExperienceYears: floatPtr(3)}},
		{"workload above one", &types.ConstraintOverrides{MaxWorkload: floatPtr(1.5)}},
		{"mix larger than team", &types.ConstraintOverrides{RequiredSeniorityMix: map[types.SeniorityBand]int{types.BandSenior: 4}}},
		{"negative cap", &types.ConstraintOverrides{MaxPerDepartment: map[string]int{"eng": -1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Reoptimize(context.Background(), base.SuggestionID, constraints.ApplyOverrides(f.cs, tt.o))
			assert.ErrorIs(t, err, types.ErrConstraintConflict)
		})
	}

	assert.Equal(t, 1, f.store.Len(), "rejected what-ifs retain nothing")
}

func TestReoptimize_ConflictCheckedBeforeLookup(t *testing.T) {
	f := newFixture(t)

	bad := f.cs.Clone()
	bad.MinExperienceYears = -1
	_, err := f.engine.Reoptimize(context.Background(), uuid.New(), bad)
	assert.ErrorIs(t, err, types.ErrConstraintConflict)
}

func TestReoptimize_Chained(t *testing.T) {
	f := newFixture(t)
	base := f.suggest(t)

	first, err := f.engine.Reoptimize(context.Background(), base.SuggestionID,
		constraints.ApplyOverrides(f.cs, &types.ConstraintOverrides{ClearDepartmentCaps: true}))
	require.NoError(t, err)

	second, err := f.engine.Reoptimize(context.Background(), first.Suggestion.SuggestionID,
		constraints.ApplyOverrides(f.cs, &types.ConstraintOverrides{
			RequiredSeniorityMix: map[types.SeniorityBand]int{types.BandSenior: 1},
		}))
	require.NoError(t, err)

	assert.Equal(t, first.Suggestion.SuggestionID, *second.Suggestion.BaseSuggestionID)
	assert.Equal(t, 3, f.store.Len())

	snap, err := f.store.Get(context.Background(), second.Suggestion.SuggestionID)
	require.NoError(t, err)
	assert.Equal(t, map[types.SeniorityBand]int{types.BandSenior: 1}, snap.Requirement.SeniorityMix)
	assert.Len(t, snap.Pool, len(f.pool))
}

func floatPtr(v float64) *float64 {
	return &v
}

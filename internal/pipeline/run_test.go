package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/team-composer/internal/constraints"
	"github.com/jonathan/team-composer/internal/explain"
	"github.com/jonathan/team-composer/internal/feedback"
	"github.com/jonathan/team-composer/internal/scoring"
	"github.com/jonathan/team-composer/internal/selection"
	"github.com/jonathan/team-composer/internal/snapshots"
	"github.com/jonathan/team-composer/internal/types"
)

func testPool() []types.CandidateProfile {
	return []types.CandidateProfile{
		{EmployeeID: "eng-1", Department: "eng", ExperienceYears: 5, Skills: []string{"go", "postgres", "kafka"}},
		{EmployeeID: "eng-2", Department: "eng", ExperienceYears: 5, Skills: []string{"go", "postgres"}},
		{EmployeeID: "eng-3", Department: "eng", ExperienceYears: 6, Skills: []string{"go", "kafka"}},
		{EmployeeID: "data-1", Department: "data", ExperienceYears: 4, Skills: []string{"postgres"}},
		{EmployeeID: "ops-1", Department: "ops", ExperienceYears: 7, Skills: []string{"kafka"}},
		{EmployeeID: "busy-1", Department: "ops", ExperienceYears: 5, Skills: []string{"go"}, Availability: 0.95},
	}
}

func testRequirement() *types.Requirement {
	return &types.Requirement{
		Role:                  "Backend Engineer",
		RequiredSkills:        []string{"go", "postgres", "kafka"},
		ExperienceLevel:       5,
		TeamSize:              3,
		ProjectType:           "payments",
		DepartmentConstraints: map[string]int{"eng": 1},
	}
}

type failingExplainer struct{}

func (failingExplainer) Explain(context.Context, *types.TeamMember, *types.Requirement) (*explain.Explanation, error) {
	return nil, errors.New("model unavailable")
}

// summarizingExplainer explains with rules and summarizes with a fixed line
type summarizingExplainer struct {
	explain.RuleExplainer
	err error
}

func (e *summarizingExplainer) SummarizeTeam(_ context.Context, s *types.TeamSuggestion, _ *types.Requirement) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return fmt.Sprintf("%d members", len(s.Members)), nil
}

func newTestService(t *testing.T, mutate func(*Deps)) (*Service, *feedback.MemoryStore) {
	t.Helper()
	fb := feedback.NewMemoryStore()
	deps := Deps{
		Optimizer: selection.NewOptimizer(scoring.DefaultScorer(), selection.DefaultOptions()),
		Policy:    constraints.DefaultPolicy(),
		Snapshots: snapshots.NewMemoryStore(snapshots.DefaultRetentionPolicy()),
		Feedback:  fb,
	}
	if mutate != nil {
		mutate(&deps)
	}
	svc, err := NewService(deps)
	require.NoError(t, err)
	return svc, fb
}

func memberIDs(r *Result) []string {
	return r.Suggestion.MemberIDs()
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := NewService(Deps{Policy: constraints.DefaultPolicy()})
	assert.Error(t, err)

	_, err = NewService(Deps{
		Optimizer: selection.NewOptimizer(nil, selection.DefaultOptions()),
		Snapshots: snapshots.NewMemoryStore(snapshots.RetentionPolicy{}),
		Feedback:  feedback.NewMemoryStore(),
		Policy:    constraints.Policy{MinExperienceFactor: 2, MaxExperienceFactor: 1, MaxWorkload: 0.8},
	})
	assert.Error(t, err)
}

func TestSuggest_AppliesConstraintsAndRetains(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	res, err := svc.Suggest(ctx, testRequirement(), testPool())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"eng-1", "data-1", "ops-1"}, memberIDs(res))
	assert.Len(t, res.Feasibility.Admitted, 3)
	assert.Equal(t, 6, res.Feasibility.PoolSize)
	assert.Equal(t, 1, res.Constraints.MaxPerDepartment["eng"])
	assert.Equal(t, 4.0, res.Constraints.MinExperienceYears)
	assert.Equal(t, 7.5, res.Constraints.MaxExperienceYears)
	assert.Nil(t, res.Explanations)

	snap, err := svc.Snapshot(ctx, res.Suggestion.SuggestionID)
	require.NoError(t, err)
	assert.Len(t, snap.Pool, 6, "the unfiltered pool is retained")
	assert.Equal(t, res.Suggestion.MemberIDs(), snap.MemberIDs)
}

func TestSuggest_InvalidRequirement(t *testing.T) {
	var events []ProgressEvent
	svc, _ := newTestService(t, func(d *Deps) {
		d.OnProgress = func(e ProgressEvent) { events = append(events, e) }
	})

	req := testRequirement()
	req.TeamSize = 0
	_, err := svc.Suggest(context.Background(), req, testPool())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidRequirement))
	assert.Empty(t, events, "nothing runs for a rejected requirement")
}

func TestSuggest_EmptyPoolIsNotAnError(t *testing.T) {
	svc, _ := newTestService(t, nil)
	req := testRequirement()
	req.TeamSize = 5

	res, err := svc.Suggest(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Suggestion.Members)
	assert.Equal(t, 0.0, res.Suggestion.TotalCost)
	assert.Equal(t, 5, res.Suggestion.Shortfall)
	for skill, covered := range res.Suggestion.SkillCoverage {
		assert.False(t, covered, skill)
	}
	assert.True(t, res.Feasibility.EmptyPool())
}

func TestSuggest_DepartmentCapScenario(t *testing.T) {
	svc, _ := newTestService(t, nil)
	pool := []types.CandidateProfile{
		{EmployeeID: "e1", Department: "eng", ExperienceYears: 3, Skills: []string{"java"}},
		{EmployeeID: "e2", Department: "eng", ExperienceYears: 3, Skills: []string{"python"}},
		{EmployeeID: "d1", Department: "data", ExperienceYears: 3, Skills: []string{"sql"}},
		{EmployeeID: "d2", Department: "data", ExperienceYears: 3, Skills: []string{"spark"}},
		{EmployeeID: "o1", Department: "ops", ExperienceYears: 3, Skills: []string{"bash"}},
	}
	req := &types.Requirement{
		Role:                  "analyst",
		RequiredSkills:        []string{"python"},
		ExperienceLevel:       3,
		TeamSize:              3,
		DepartmentConstraints: map[string]int{"eng": 1},
	}

	res, err := svc.Suggest(context.Background(), req, pool)
	require.NoError(t, err)

	engAdmitted := 0
	for _, c := range res.Feasibility.Admitted {
		if c.Department == "eng" {
			engAdmitted++
			assert.Equal(t, "e1", c.EmployeeID, "the first eng candidate in input order wins the slot")
		}
	}
	assert.Equal(t, 1, engAdmitted)
	assert.LessOrEqual(t, len(res.Suggestion.Members), 3)
	assert.False(t, res.Suggestion.SkillCoverage["python"], "the only python candidate was capped out")
}

func TestSuggest_ProgressAndExplanations(t *testing.T) {
	var mu sync.Mutex
	var steps []string
	svc, _ := newTestService(t, func(d *Deps) {
		d.Explainer = &explain.RuleExplainer{Scorer: scoring.DefaultScorer()}
		d.ExplainConcurrency = 2
		d.OnProgress = func(e ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			steps = append(steps, e.Step)
		}
	})

	res, err := svc.Suggest(context.Background(), testRequirement(), testPool())
	require.NoError(t, err)

	assert.Equal(t, []string{StepValidate, StepFilter, StepCompose, StepRetain, StepExplain}, steps)
	require.Len(t, res.Explanations, len(res.Suggestion.Members))
	for i, exp := range res.Explanations {
		assert.Equal(t, res.Suggestion.Members[i].Candidate.EmployeeID, exp.EmployeeID)
	}
}

func TestSuggest_ExplainerFailureIsNotFatal(t *testing.T) {
	svc, _ := newTestService(t, func(d *Deps) {
		d.Explainer = failingExplainer{}
	})

	res, err := svc.Suggest(context.Background(), testRequirement(), testPool())
	require.NoError(t, err)
	assert.Len(t, res.Suggestion.Members, 3)
	assert.Nil(t, res.Explanations)
}

func TestSuggest_TeamSummary(t *testing.T) {
	svc, _ := newTestService(t, func(d *Deps) {
		d.Explainer = &summarizingExplainer{}
	})
	res, err := svc.Suggest(context.Background(), testRequirement(), testPool())
	require.NoError(t, err)
	assert.Equal(t, "3 members", res.Summary)
	assert.Len(t, res.Explanations, 3)

	svc, _ = newTestService(t, func(d *Deps) {
		d.Explainer = &summarizingExplainer{err: errors.New("quota exceeded")}
	})
	res, err = svc.Suggest(context.Background(), testRequirement(), testPool())
	require.NoError(t, err)
	assert.Empty(t, res.Summary)
	assert.Len(t, res.Explanations, 3, "member explanations survive a failed summary")

	svc, _ = newTestService(t, func(d *Deps) {
		d.Explainer = &explain.RuleExplainer{}
	})
	res, err = svc.Suggest(context.Background(), testRequirement(), testPool())
	require.NoError(t, err)
	assert.Empty(t, res.Summary)
}

func TestSuggest_DoesNotAliasCallerRequirement(t *testing.T) {
	svc, _ := newTestService(t, nil)
	req := testRequirement()

	res, err := svc.Suggest(context.Background(), req, testPool())
	require.NoError(t, err)
	res.Requirement.DepartmentConstraints["eng"] = 9
	assert.Equal(t, 1, req.DepartmentConstraints["eng"])
}

func TestSuggestBatch(t *testing.T) {
	svc, _ := newTestService(t, func(d *Deps) { d.BatchConcurrency = 2 })

	relaxed := testRequirement()
	relaxed.DepartmentConstraints = nil
	invalid := testRequirement()
	invalid.RequiredSkills = nil

	results, err := svc.SuggestBatch(context.Background(), []*types.Requirement{testRequirement(), invalid, relaxed}, testPool())
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.NoError(t, results[0].Err)
	assert.ElementsMatch(t, []string{"eng-1", "data-1", "ops-1"}, memberIDs(results[0].Result))

	assert.True(t, errors.Is(results[1].Err, types.ErrInvalidRequirement))
	assert.Nil(t, results[1].Result)

	require.NoError(t, results[2].Err)
	assert.Len(t, results[2].Result.Feasibility.Admitted, 5)
	assert.NotEqual(t, results[0].Result.Suggestion.SuggestionID, results[2].Result.Suggestion.SuggestionID)
}

func TestSuggestBatch_Deterministic(t *testing.T) {
	svc, _ := newTestService(t, nil)
	reqs := []*types.Requirement{testRequirement(), testRequirement(), testRequirement()}

	results, err := svc.SuggestBatch(context.Background(), reqs, testPool())
	require.NoError(t, err)
	for _, r := range results[1:] {
		require.NoError(t, r.Err)
		assert.Equal(t, memberIDs(results[0].Result), memberIDs(r.Result))
		assert.Equal(t, results[0].Result.Suggestion.Objective, r.Result.Suggestion.Objective)
	}
}

func TestSuggestBatch_CancelledContext(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SuggestBatch(ctx, []*types.Requirement{testRequirement()}, testPool())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWhatIf(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	base, err := svc.Suggest(ctx, testRequirement(), testPool())
	require.NoError(t, err)

	t.Run("no overrides reproduces the base team", func(t *testing.T) {
		alt, err := svc.WhatIf(ctx, base.Suggestion.SuggestionID, nil)
		require.NoError(t, err)
		assert.ElementsMatch(t, memberIDs(base), memberIDs(alt))
		assert.NotEqual(t, base.Suggestion.SuggestionID, alt.Suggestion.SuggestionID)
		require.NotNil(t, alt.Suggestion.BaseSuggestionID)
		assert.Equal(t, base.Suggestion.SuggestionID, *alt.Suggestion.BaseSuggestionID)
	})

	t.Run("clearing caps widens the feasible pool", func(t *testing.T) {
		alt, err := svc.WhatIf(ctx, base.Suggestion.SuggestionID, &types.ConstraintOverrides{ClearDepartmentCaps: true})
		require.NoError(t, err)
		assert.Len(t, alt.Feasibility.Admitted, 5)
		assert.Nil(t, alt.Constraints.MaxPerDepartment)
		assert.Equal(t, "Backend Engineer", alt.Requirement.Role)
	})

	t.Run("contradictory overrides are rejected", func(t *testing.T) {
		lo, hi := 9.0, 2.0
		_, err := svc.WhatIf(ctx, base.Suggestion.SuggestionID,
			&types.ConstraintOverrides{MinExperienceYears: &lo, MaxExperienceYears: &hi})
		assert.True(t, errors.Is(err, types.ErrConstraintConflict))
	})

	t.Run("unknown suggestion", func(t *testing.T) {
		_, err := svc.WhatIf(ctx, uuid.New(), nil)
		assert.True(t, errors.Is(err, types.ErrUnknownSuggestion))
	})
}

func TestFeedback(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()

	base, err := svc.Suggest(ctx, testRequirement(), testPool())
	require.NoError(t, err)

	rating := 4
	rec, err := svc.SubmitFeedback(ctx, base.Suggestion.SuggestionID, types.Feedback{Type: types.FeedbackAccept, Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, base.Suggestion.MemberIDs(), rec.MemberIDs)
	assert.Equal(t, 1, store.Len())

	_, err = svc.SubmitFeedback(ctx, uuid.New(), types.Feedback{Type: types.FeedbackReject})
	assert.True(t, errors.Is(err, types.ErrUnknownSuggestion))

	_, err = svc.SubmitFeedback(ctx, base.Suggestion.SuggestionID, types.Feedback{Type: "maybe"})
	assert.Error(t, err)
	assert.Equal(t, 1, store.Len())

	records, err := svc.QueryFeedback(ctx, types.FeedbackFilter{SuggestionID: base.Suggestion.SuggestionID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, types.FeedbackAccept, records[0].Feedback.Type)
}

func TestBuildProjectBrief(t *testing.T) {
	svc, _ := newTestService(t, nil)
	req := testRequirement()
	budget := 120000.0
	months := 6
	req.Budget = &budget
	req.TimelineMonths = &months

	res, err := svc.Suggest(context.Background(), req, testPool())
	require.NoError(t, err)

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	brief := BuildProjectBrief(res.Suggestion, req, now)
	assert.Equal(t, "Backend Engineer Team - payments", brief.Name)
	assert.Equal(t, "2026-03-14", brief.StartDate)
	assert.Equal(t, res.Suggestion.SuggestionID, brief.SuggestionID)
	require.NotNil(t, brief.Budget)
	assert.Equal(t, 120000.0, *brief.Budget)
	require.NotNil(t, brief.DurationMonths)
	assert.Equal(t, 6, *brief.DurationMonths)
	assert.Len(t, brief.Members, len(res.Suggestion.Members))

	require.Len(t, brief.Notifications, len(res.Suggestion.Members))
	for i, n := range brief.Notifications {
		m := res.Suggestion.Members[i]
		assert.Equal(t, m.Candidate.EmployeeID, n.EmployeeID)
		assert.Equal(t, m.AssignedRole, n.AssignedRole)
		assert.Equal(t, "Selected for Backend Engineer Team - payments", n.Subject)
		assert.Contains(t, n.Body, "Hi "+m.Candidate.EmployeeID+",")
		assert.Contains(t, n.Body, "Role: "+m.AssignedRole)
		assert.Contains(t, n.Body, "Start Date: 2026-03-14")
	}

	req.ProjectType = ""
	assert.Equal(t, "Backend Engineer Team", BuildProjectBrief(res.Suggestion, req, now).Name)
}

func TestBuildProjectBrief_NoticeUsesNameAndEmail(t *testing.T) {
	s := &types.TeamSuggestion{
		SuggestionID: uuid.New(),
		Members: []types.TeamMember{{
			Candidate:    types.CandidateProfile{EmployeeID: "e1", Name: "Ada", Email: "ada@example.com"},
			AssignedRole: "backend",
		}},
	}
	brief := BuildProjectBrief(s, &types.Requirement{Role: "Platform"}, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))

	require.Len(t, brief.Notifications, 1)
	n := brief.Notifications[0]
	assert.Equal(t, "ada@example.com", n.Email)
	assert.True(t, strings.HasPrefix(n.Body, "Hi Ada,\n"))
	assert.Contains(t, n.Body, "You have been selected for the project: Platform Team")
}

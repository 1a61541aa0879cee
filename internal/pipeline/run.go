// Package pipeline provides the high-level orchestration for team composition:
// requirement validation, constraint derivation, feasibility filtering,
// optimization, snapshot retention, what-if runs and feedback.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/team-composer/internal/constraints"
	"github.com/jonathan/team-composer/internal/explain"
	"github.com/jonathan/team-composer/internal/feasibility"
	"github.com/jonathan/team-composer/internal/feedback"
	"github.com/jonathan/team-composer/internal/logger"
	"github.com/jonathan/team-composer/internal/selection"
	"github.com/jonathan/team-composer/internal/snapshots"
	"github.com/jonathan/team-composer/internal/types"
	"github.com/jonathan/team-composer/internal/whatif"
)

// Step names reported through ProgressEvent
const (
	StepValidate = "validate"
	StepFilter   = "filter"
	StepCompose  = "compose"
	StepRetain   = "retain"
	StepExplain  = "explain"
	StepWhatIf   = "what_if"
	StepFeedback = "feedback"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step         string    `json:"step"`
	Message      string    `json:"message"`
	SuggestionID uuid.UUID `json:"suggestion_id,omitempty"`
	Content      any       `json:"content,omitempty"`
}

// ProgressCallback is called when progress occurs. It may be called from
// several goroutines during SuggestBatch.
type ProgressCallback func(event ProgressEvent)

// Deps holds the collaborators of a Service. Optimizer, Snapshots and Feedback
// are required; Explainer is optional.
type Deps struct {
	Optimizer *selection.Optimizer
	Policy    constraints.Policy
	Snapshots snapshots.Store
	Feedback  feedback.Store
	Explainer explain.Explainer
	Logger    *logger.Logger

	// ExplainConcurrency bounds concurrent explanation calls per suggestion (0 = unbounded)
	ExplainConcurrency int
	// BatchConcurrency bounds concurrent runs in SuggestBatch (0 = unbounded)
	BatchConcurrency int
	OnProgress       ProgressCallback
}

// Service runs suggestions and what-ifs and records feedback
type Service struct {
	optimizer          *selection.Optimizer
	policy             constraints.Policy
	snapshots          snapshots.Store
	engine             *whatif.Engine
	recorder           *feedback.Recorder
	explainer          explain.Explainer
	log                *logger.Logger
	explainConcurrency int
	batchConcurrency   int
	onProgress         ProgressCallback
}

// NewService wires a Service from its dependencies
func NewService(deps Deps) (*Service, error) {
	if deps.Optimizer == nil {
		return nil, fmt.Errorf("pipeline: optimizer is required")
	}
	if deps.Snapshots == nil {
		return nil, fmt.Errorf("pipeline: snapshot store is required")
	}
	if deps.Feedback == nil {
		return nil, fmt.Errorf("pipeline: feedback store is required")
	}
	if err := deps.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Service{
		optimizer:          deps.Optimizer,
		policy:             deps.Policy,
		snapshots:          deps.Snapshots,
		engine:             whatif.NewEngine(deps.Snapshots, deps.Optimizer, log),
		recorder:           feedback.NewRecorder(deps.Feedback, deps.Snapshots, log),
		explainer:          deps.Explainer,
		log:                log,
		explainConcurrency: deps.ExplainConcurrency,
		batchConcurrency:   deps.BatchConcurrency,
		onProgress:         deps.OnProgress,
	}, nil
}

// Result is one composed suggestion with everything that led to it
type Result struct {
	Suggestion   *types.TeamSuggestion
	Requirement  *types.Requirement
	Constraints  types.ConstraintSet
	Feasibility  feasibility.Result
	Explanations []explain.Explanation
	// Summary is set when the explainer can also summarize the whole team
	Summary string
}

// emitProgress calls the progress callback if configured
func (s *Service) emitProgress(step, message string, id uuid.UUID, content any) {
	if s.onProgress != nil {
		s.onProgress(ProgressEvent{
			Step:         step,
			Message:      message,
			SuggestionID: id,
			Content:      content,
		})
	}
}

// Suggest composes a team for req from pool. An invalid requirement is
// rejected with an error wrapping types.ErrInvalidRequirement before any
// filtering; an empty or partial team is a normal result.
func (s *Service) Suggest(ctx context.Context, req *types.Requirement, pool []types.CandidateProfile) (*Result, error) {
	if err := constraints.ValidateRequirement(req); err != nil {
		return nil, err
	}
	req = req.Clone()
	cs := constraints.Build(req, s.policy)
	s.emitProgress(StepValidate, "requirement accepted", uuid.Nil, cs)

	filtered := feasibility.Evaluate(pool, cs)
	s.emitProgress(StepFilter,
		fmt.Sprintf("%d of %d candidates feasible", len(filtered.Admitted), filtered.PoolSize), uuid.Nil, filtered.RejectionCounts())

	suggestion, err := s.optimizer.Compose(filtered.Admitted, req)
	if err != nil {
		return nil, fmt.Errorf("compose failed: %w", err)
	}
	s.emitProgress(StepCompose,
		fmt.Sprintf("composed %d of %d members", len(suggestion.Members), suggestion.TargetSize), suggestion.SuggestionID, nil)

	if err := whatif.Retain(ctx, s.snapshots, req, cs, pool, suggestion); err != nil {
		return nil, err
	}
	s.emitProgress(StepRetain, "pool snapshot retained", suggestion.SuggestionID, nil)

	result := &Result{
		Suggestion:  suggestion,
		Requirement: req,
		Constraints: cs,
		Feasibility: filtered,
	}
	s.attachExplanations(ctx, result)

	s.log.Info("team suggested",
		"suggestion_id", suggestion.SuggestionID.String(),
		"role", req.Role,
		"pool", filtered.PoolSize,
		"feasible", len(filtered.Admitted),
		"members", len(suggestion.Members),
		"shortfall", suggestion.Shortfall,
		"coverage", suggestion.CoverageRatio,
		"objective", suggestion.Objective,
	)
	return result, nil
}

// attachExplanations is best effort: a failing explainer never fails the run
func (s *Service) attachExplanations(ctx context.Context, result *Result) {
	if s.explainer == nil || len(result.Suggestion.Members) == 0 {
		return
	}
	exps, err := explain.Team(ctx, s.explainer, result.Suggestion, result.Requirement, s.explainConcurrency)
	if err != nil {
		s.log.Warn("explanations unavailable",
			"suggestion_id", result.Suggestion.SuggestionID.String(),
			"error", err.Error())
		return
	}
	result.Explanations = exps

	if ts, ok := s.explainer.(explain.TeamSummarizer); ok {
		summary, err := ts.SummarizeTeam(ctx, result.Suggestion, result.Requirement)
		if err != nil {
			s.log.Warn("team summary unavailable",
				"suggestion_id", result.Suggestion.SuggestionID.String(),
				"error", err.Error())
		} else {
			result.Summary = summary
		}
	}
	s.emitProgress(StepExplain, fmt.Sprintf("explained %d members", len(exps)), result.Suggestion.SuggestionID, nil)
}

// BatchResult is the outcome of one requirement in SuggestBatch
type BatchResult struct {
	Result *Result
	Err    error
}

// SuggestBatch composes teams for several requirements against the same pool
// concurrently. Runs share no mutable state; an invalid requirement only fails
// its own entry. Results keep the order of reqs. The returned error is
// non-nil only when ctx ends before every run has started.
func (s *Service) SuggestBatch(ctx context.Context, reqs []*types.Requirement, pool []types.CandidateProfile) ([]BatchResult, error) {
	out := make([]BatchResult, len(reqs))

	g, gCtx := errgroup.WithContext(ctx)
	if s.batchConcurrency > 0 {
		g.SetLimit(s.batchConcurrency)
	}
	for i := range reqs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			res, err := s.Suggest(gCtx, reqs[i], pool)
			out[i] = BatchResult{Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// WhatIf applies overrides to the constraints the base suggestion was filtered
// with and re-optimizes over its retained pool. Errors wrap
// types.ErrUnknownSuggestion or types.ErrConstraintConflict.
func (s *Service) WhatIf(ctx context.Context, baseID uuid.UUID, overrides *types.ConstraintOverrides) (*Result, error) {
	snap, err := s.snapshots.Get(ctx, baseID)
	if err != nil {
		return nil, err
	}
	modified := constraints.ApplyOverrides(snap.Constraints, overrides)
	return s.WhatIfConstraints(ctx, baseID, modified)
}

// WhatIfConstraints re-optimizes the base suggestion under a complete constraint set
func (s *Service) WhatIfConstraints(ctx context.Context, baseID uuid.UUID, modified types.ConstraintSet) (*Result, error) {
	outcome, err := s.engine.Reoptimize(ctx, baseID, modified)
	if err != nil {
		return nil, err
	}
	s.emitProgress(StepWhatIf,
		fmt.Sprintf("alternative to %s has %d members", baseID, len(outcome.Suggestion.Members)),
		outcome.Suggestion.SuggestionID, nil)

	snap, err := s.snapshots.Get(ctx, outcome.Suggestion.SuggestionID)
	if err != nil {
		return nil, fmt.Errorf("what-if snapshot vanished: %w", err)
	}

	result := &Result{
		Suggestion:  outcome.Suggestion,
		Requirement: &snap.Requirement,
		Constraints: outcome.Constraints,
		Feasibility: outcome.Feasibility,
	}
	s.attachExplanations(ctx, result)
	return result, nil
}

// SubmitFeedback appends feedback for a retained suggestion
func (s *Service) SubmitFeedback(ctx context.Context, suggestionID uuid.UUID, fb types.Feedback) (*types.FeedbackRecord, error) {
	rec, err := s.recorder.Record(ctx, suggestionID, fb)
	if err != nil {
		return nil, err
	}
	s.emitProgress(StepFeedback, fmt.Sprintf("%s feedback recorded", fb.Type), suggestionID, rec)
	return rec, nil
}

// QueryFeedback reads the feedback log
func (s *Service) QueryFeedback(ctx context.Context, filter types.FeedbackFilter) ([]types.FeedbackRecord, error) {
	return s.recorder.Query(ctx, filter)
}

// Snapshot returns the retained input of a suggestion
func (s *Service) Snapshot(ctx context.Context, id uuid.UUID) (*types.PoolSnapshot, error) {
	return s.snapshots.Get(ctx, id)
}

// BuildProjectBrief packages a suggestion for project-management and
// notification collaborators. The name follows "<role> Team - <project type>".
func BuildProjectBrief(suggestion *types.TeamSuggestion, req *types.Requirement, now time.Time) types.ProjectBrief {
	name := req.Role + " Team"
	if req.ProjectType != "" {
		name += " - " + req.ProjectType
	}

	brief := types.ProjectBrief{
		SuggestionID: suggestion.SuggestionID,
		Name:         name,
		StartDate:    now.Format("2006-01-02"),
		Members:      append([]types.TeamMember(nil), suggestion.Members...),
	}
	if req.Budget != nil {
		budget := *req.Budget
		brief.Budget = &budget
	}
	if req.TimelineMonths != nil {
		months := *req.TimelineMonths
		brief.DurationMonths = &months
	}

	brief.Notifications = make([]types.MemberNotice, 0, len(suggestion.Members))
	for _, m := range suggestion.Members {
		brief.Notifications = append(brief.Notifications, memberNotice(&brief, &m))
	}
	return brief
}

func memberNotice(brief *types.ProjectBrief, m *types.TeamMember) types.MemberNotice {
	greeting := m.Candidate.Name
	if greeting == "" {
		greeting = m.Candidate.EmployeeID
	}
	return types.MemberNotice{
		EmployeeID:   m.Candidate.EmployeeID,
		Email:        m.Candidate.Email,
		AssignedRole: m.AssignedRole,
		Subject:      "Selected for " + brief.Name,
		Body: fmt.Sprintf("Hi %s,\n\nYou have been selected for the project: %s\nRole: %s\nStart Date: %s\n\n"+
			"Please review the project details in your project management dashboard.\n",
			greeting, brief.Name, m.AssignedRole, brief.StartDate),
	}
}

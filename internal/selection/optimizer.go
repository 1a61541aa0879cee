package selection

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/team-composer/internal/constraints"
	"github.com/jonathan/team-composer/internal/ranking"
	"github.com/jonathan/team-composer/internal/scoring"
	"github.com/jonathan/team-composer/internal/types"
)

// improvementEpsilon is the margin a swap must beat to count as an improvement
const improvementEpsilon = 1e-9

// Options tunes the optimizer
type Options struct {
	Objective ObjectiveWeights
	// SeniorityDeviationSlack is how much a candidate that adds no skill
	// coverage may worsen the seniority-mix deviation and still be admitted
	// during the greedy pass.
	SeniorityDeviationSlack int
	// MaxExchangeIterations caps the local exchange passes. Zero disables the
	// exchange pass.
	MaxExchangeIterations int
	// NewID generates suggestion ids. Defaults to uuid.New.
	NewID func() uuid.UUID
	// Now stamps suggestions. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the default optimizer options
func DefaultOptions() Options {
	return Options{
		Objective:               DefaultObjectiveWeights(),
		SeniorityDeviationSlack: 0,
		MaxExchangeIterations:   100,
	}
}

// Validate checks the option ranges
func (o Options) Validate() error {
	if err := o.Objective.Validate(); err != nil {
		return err
	}
	if o.SeniorityDeviationSlack < 0 {
		return fmt.Errorf("optimizer: seniority_slack must be non-negative, got %d", o.SeniorityDeviationSlack)
	}
	if o.MaxExchangeIterations < 0 {
		return fmt.Errorf("optimizer: max_exchange_iterations must be non-negative, got %d", o.MaxExchangeIterations)
	}
	return nil
}

// Optimizer composes teams. It holds no per-run state, so one Optimizer can
// serve concurrent Compose calls.
type Optimizer struct {
	scorer *scoring.Scorer
	opts   Options
}

// NewOptimizer creates an Optimizer
func NewOptimizer(scorer *scoring.Scorer, opts Options) *Optimizer {
	if scorer == nil {
		scorer = scoring.DefaultScorer()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.New
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Optimizer{scorer: scorer, opts: opts}
}

// Scorer returns the scorer the optimizer evaluates teams with
func (o *Optimizer) Scorer() *scoring.Scorer {
	return o.scorer
}

// Evaluate computes the objective terms of an arbitrary team against the
// requirement, normalizing cost against the given pool.
func (o *Optimizer) Evaluate(team, pool []types.CandidateProfile, req *types.Requirement) ObjectiveBreakdown {
	return newEvaluator(o.scorer, req, o.opts.Objective, pool).evaluate(team)
}

// Compose selects up to req.TeamSize candidates from the feasible pool.
//
// Candidates are ranked by role fit, admitted greedily while tracking coverage
// gain and seniority-mix deviation, refined by a bounded local exchange pass
// and finally assigned to roles. The feasible pool is never modified and the
// result only contains candidates from it. A pool smaller than the team size
// yields a smaller team with Shortfall set; an empty pool yields an empty
// team with zero scores. A requirement that fails
// constraints.ValidateRequirement is rejected with an error matching
// types.ErrInvalidRequirement.
func (o *Optimizer) Compose(feasible []types.CandidateProfile, req *types.Requirement) (*types.TeamSuggestion, error) {
	if err := constraints.ValidateRequirement(req); err != nil {
		return nil, &Error{Message: "cannot compose team", Cause: err}
	}

	ranked := ranking.RankCandidates(feasible, req, o.scorer)
	eval := newEvaluator(o.scorer, req, o.opts.Objective, feasible)

	picks := o.greedy(ranked, req)
	swaps := 0
	if o.opts.MaxExchangeIterations > 0 {
		swaps = o.exchange(ranked, picks, eval)
	}

	// Members are reported in rank order.
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].rank < picks[j].rank
	})

	team := make([]types.CandidateProfile, 0, len(picks))
	for _, p := range picks {
		team = append(team, *ranked[p.rank].Candidate)
	}

	members := o.assignRoles(ranked, picks, req)
	objective := eval.evaluate(team)
	coverage := scoring.SkillCoverage(team, req.RequiredSkills)

	suggestion := &types.TeamSuggestion{
		SuggestionID:     o.opts.NewID(),
		Members:          members,
		TotalCost:        objective.Cost,
		SkillCoverage:    coverage,
		CoverageRatio:    scoring.CoverageRatio(coverage),
		TeamBalanceScore: objective.Balance,
		MeanRoleFit:      objective.RoleFit,
		Objective:        objective.Value,
		TargetSize:       req.TeamSize,
		Shortfall:        req.TeamSize - len(members),
		FeasiblePoolSize: len(feasible),
		ExchangeSwaps:    swaps,
		CreatedAt:        o.opts.Now().UTC(),
	}
	return suggestion, nil
}

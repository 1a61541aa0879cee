package selection

import (
	"fmt"

	"github.com/jonathan/team-composer/internal/scoring"
	"github.com/jonathan/team-composer/internal/types"
)

// ObjectiveWeights weighs the terms of the composite team objective:
//
//	coverage*Coverage + balance*Balance + meanRoleFit*RoleFit - normalizedCost*Cost
type ObjectiveWeights struct {
	Coverage float64 `json:"coverage" yaml:"coverage"`
	Balance  float64 `json:"balance" yaml:"balance"`
	RoleFit  float64 `json:"role_fit" yaml:"role_fit"`
	Cost     float64 `json:"cost" yaml:"cost"`
}

// DefaultObjectiveWeights returns the default objective weights
func DefaultObjectiveWeights() ObjectiveWeights {
	return ObjectiveWeights{Coverage: 0.4, Balance: 0.25, RoleFit: 0.25, Cost: 0.1}
}

// Validate checks that no weight is negative and at least one is positive
func (w ObjectiveWeights) Validate() error {
	for name, v := range map[string]float64{
		"coverage": w.Coverage,
		"balance":  w.Balance,
		"role_fit": w.RoleFit,
		"cost":     w.Cost,
	} {
		if v < 0 {
			return fmt.Errorf("objective weights: %s must be non-negative, got %.4f", name, v)
		}
	}
	if w.Coverage+w.Balance+w.RoleFit+w.Cost <= 0 {
		return fmt.Errorf("objective weights: at least one weight must be positive")
	}
	return nil
}

// ObjectiveBreakdown holds the terms of the objective for one team
type ObjectiveBreakdown struct {
	Coverage       float64 `json:"coverage"`
	Balance        float64 `json:"balance"`
	RoleFit        float64 `json:"role_fit"`
	Cost           float64 `json:"cost"`
	NormalizedCost float64 `json:"normalized_cost"`
	Value          float64 `json:"value"`
}

// evaluator scores candidate teams for one Compose call
type evaluator struct {
	scorer    *scoring.Scorer
	req       *types.Requirement
	weights   ObjectiveWeights
	costScale float64
}

// newEvaluator fixes the cost normalization for a run. With a budget the cost
// is measured against it; otherwise against a team of the most expensive
// candidate in the pool.
func newEvaluator(scorer *scoring.Scorer, req *types.Requirement, weights ObjectiveWeights, pool []types.CandidateProfile) *evaluator {
	scale := 0.0
	if req.Budget != nil && *req.Budget > 0 {
		scale = *req.Budget
	} else {
		maxCost := 0.0
		for i := range pool {
			if c := scorer.CandidateCost(&pool[i]); c > maxCost {
				maxCost = c
			}
		}
		scale = maxCost * float64(req.TeamSize)
	}
	return &evaluator{scorer: scorer, req: req, weights: weights, costScale: scale}
}

func (e *evaluator) evaluate(team []types.CandidateProfile) ObjectiveBreakdown {
	if len(team) == 0 {
		return ObjectiveBreakdown{}
	}

	coverage := scoring.CoverageRatio(scoring.SkillCoverage(team, e.req.RequiredSkills))
	balance := e.scorer.TeamBalance(team, e.req)

	fit := 0.0
	for i := range team {
		fit += e.scorer.RoleFit(&team[i], e.req)
	}
	fit /= float64(len(team))

	cost := e.scorer.TeamCost(team)
	normCost := 0.0
	if e.costScale > 0 {
		normCost = cost / e.costScale
	}

	w := e.weights
	return ObjectiveBreakdown{
		Coverage:       coverage,
		Balance:        balance,
		RoleFit:        fit,
		Cost:           cost,
		NormalizedCost: normCost,
		Value:          w.Coverage*coverage + w.Balance*balance + w.RoleFit*fit - w.Cost*normCost,
	}
}

// Package scoring computes role fit, skill coverage, team balance and cost.
// Every function here is pure: inputs are read-only and nothing is retained.
package scoring

import (
	"fmt"
	"math"
)

// weightSumTolerance is how far a weight group may drift from summing to 1
const weightSumTolerance = 1e-6

// RoleFitWeights weighs the three role fit components. They must sum to 1.
type RoleFitWeights struct {
	Skill        float64 `json:"skill" yaml:"skill"`
	Experience   float64 `json:"experience" yaml:"experience"`
	Availability float64 `json:"availability" yaml:"availability"`
}

// DefaultRoleFitWeights returns the default role fit weights
func DefaultRoleFitWeights() RoleFitWeights {
	return RoleFitWeights{Skill: 0.5, Experience: 0.3, Availability: 0.2}
}

// Validate checks that the weights are non-negative and sum to 1
func (w RoleFitWeights) Validate() error {
	return checkWeights("role_fit", w.Skill, w.Experience, w.Availability)
}

func (w RoleFitWeights) sum() float64 {
	return w.Skill + w.Experience + w.Availability
}

// BalanceWeights weighs seniority-mix fit against experience spread.
// SpreadTarget is the ideal experience standard deviation expressed as a
// fraction of the requirement's experience level.
type BalanceWeights struct {
	Mix          float64 `json:"mix" yaml:"mix"`
	Spread       float64 `json:"spread" yaml:"spread"`
	SpreadTarget float64 `json:"spread_target" yaml:"spread_target"`
}

// DefaultBalanceWeights returns the default balance weights.
// The spread target is a quarter of the default 0.8x-1.5x experience band width.
func DefaultBalanceWeights() BalanceWeights {
	return BalanceWeights{Mix: 0.7, Spread: 0.3, SpreadTarget: 0.175}
}

// Validate checks that the weights are non-negative and sum to 1
func (w BalanceWeights) Validate() error {
	if err := checkWeights("balance", w.Mix, w.Spread); err != nil {
		return err
	}
	if w.SpreadTarget <= 0 {
		return fmt.Errorf("balance weights: spread_target must be positive, got %.4f", w.SpreadTarget)
	}
	return nil
}

// Weights groups every tunable weight used by the Scorer
type Weights struct {
	RoleFit RoleFitWeights `json:"role_fit" yaml:"role_fit"`
	Balance BalanceWeights `json:"balance" yaml:"balance"`
}

// DefaultWeights returns the default scoring weights
func DefaultWeights() Weights {
	return Weights{
		RoleFit: DefaultRoleFitWeights(),
		Balance: DefaultBalanceWeights(),
	}
}

// Validate validates both weight groups
func (w Weights) Validate() error {
	if err := w.RoleFit.Validate(); err != nil {
		return err
	}
	return w.Balance.Validate()
}

func checkWeights(group string, values ...float64) error {
	total := 0.0
	for _, v := range values {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%s weights must be non-negative", group)
		}
		total += v
	}
	if math.Abs(total-1.0) > weightSumTolerance {
		return fmt.Errorf("%s weights must sum to 1, got %.4f", group, total)
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

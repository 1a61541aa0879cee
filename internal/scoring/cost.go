package scoring

import (
	"fmt"

	"github.com/jonathan/team-composer/internal/types"
)

// CostFunc returns the cost proxy for one candidate given its seniority band.
// No billing source is available to this module, so hosts inject one.
type CostFunc func(c *types.CandidateProfile, band types.SeniorityBand) float64

// RateTable is the configurable cost proxy: a rate per band scaled by an
// optional per-department multiplier.
type RateTable struct {
	BandRates             map[types.SeniorityBand]float64 `json:"band_rates" yaml:"band_rates"`
	DepartmentMultipliers map[string]float64              `json:"department_multipliers,omitempty" yaml:"department_multipliers,omitempty"`
	DefaultRate           float64                         `json:"default_rate" yaml:"default_rate"`
}

// DefaultRateTable returns relative rates per band with no department scaling
func DefaultRateTable() RateTable {
	return RateTable{
		BandRates: map[types.SeniorityBand]float64{
			types.BandJunior: 50,
			types.BandMid:    80,
			types.BandSenior: 120,
		},
		DefaultRate: 80,
	}
}

// Cost implements CostFunc
func (t RateTable) Cost(c *types.CandidateProfile, band types.SeniorityBand) float64 {
	rate, ok := t.BandRates[band]
	if !ok {
		rate = t.DefaultRate
	}
	if mult, ok := t.DepartmentMultipliers[c.Department]; ok {
		rate *= mult
	}
	return rate
}

// Validate checks that no rate or multiplier is negative
func (t RateTable) Validate() error {
	if t.DefaultRate < 0 {
		return fmt.Errorf("cost: default_rate must be non-negative")
	}
	for band, rate := range t.BandRates {
		if rate < 0 {
			return fmt.Errorf("cost: rate for band %q must be non-negative", band)
		}
	}
	for dept, mult := range t.DepartmentMultipliers {
		if mult < 0 {
			return fmt.Errorf("cost: multiplier for department %q must be non-negative", dept)
		}
	}
	return nil
}

package types

import "fmt"

// SeniorityBand is the experience category a candidate falls into
type SeniorityBand string

// Seniority bands, ordered from least to most experienced
const (
	BandJunior SeniorityBand = "junior"
	BandMid    SeniorityBand = "mid"
	BandSenior SeniorityBand = "senior"
)

// AllBands lists the bands in ascending order
var AllBands = []SeniorityBand{BandJunior, BandMid, BandSenior}

// Valid reports whether b is one of the known bands
func (b SeniorityBand) Valid() bool {
	switch b {
	case BandJunior, BandMid, BandSenior:
		return true
	}
	return false
}

// SeniorityThresholds maps experience years onto bands.
// Years below MidYears are junior, below SeniorYears are mid, the rest senior.
type SeniorityThresholds struct {
	MidYears    float64 `json:"mid_years" yaml:"mid_years"`
	SeniorYears float64 `json:"senior_years" yaml:"senior_years"`
}

// DefaultSeniorityThresholds returns the default band table
func DefaultSeniorityThresholds() SeniorityThresholds {
	return SeniorityThresholds{MidYears: 3, SeniorYears: 7}
}

// Band derives the seniority band for the given years of experience
func (t SeniorityThresholds) Band(years float64) SeniorityBand {
	switch {
	case years >= t.SeniorYears:
		return BandSenior
	case years >= t.MidYears:
		return BandMid
	default:
		return BandJunior
	}
}

// Validate checks that the thresholds are ordered and non-negative
func (t SeniorityThresholds) Validate() error {
	if t.MidYears < 0 || t.SeniorYears < 0 {
		return fmt.Errorf("seniority thresholds must be non-negative")
	}
	if t.MidYears > t.SeniorYears {
		return fmt.Errorf("seniority thresholds out of order: mid_years %.2f > senior_years %.2f", t.MidYears, t.SeniorYears)
	}
	return nil
}

// BandOf returns the candidate's declared band, deriving it from experience when absent
func (t SeniorityThresholds) BandOf(c *CandidateProfile) SeniorityBand {
	if c.SeniorityBand.Valid() {
		return c.SeniorityBand
	}
	return t.Band(c.ExperienceYears)
}

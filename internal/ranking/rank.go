// Package ranking orders candidates by how well they fit a requirement.
package ranking

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jonathan/team-composer/internal/scoring"
	"github.com/jonathan/team-composer/internal/types"
)

// RankedCandidate is a candidate with its role fit and position in the input pool
type RankedCandidate struct {
	Candidate           *types.CandidateProfile
	Index               int
	RoleFit             float64
	ExperienceDeviation float64
	Band                types.SeniorityBand
	Breakdown           scoring.RoleFitBreakdown
	Notes               string
}

// RankCandidates scores every candidate against the requirement and sorts them
// by role fit descending. Ties go to the smaller experience deviation, then to
// the earlier position in the input.
func RankCandidates(pool []types.CandidateProfile, req *types.Requirement, scorer *scoring.Scorer) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(pool))
	for i := range pool {
		c := &pool[i]
		breakdown := scorer.RoleFitBreakdown(c, req.RequiredSkills, req.ExperienceLevel)
		ranked = append(ranked, RankedCandidate{
			Candidate:           c,
			Index:               i,
			RoleFit:             breakdown.Score,
			ExperienceDeviation: math.Abs(c.ExperienceYears - req.ExperienceLevel),
			Band:                scorer.BandOf(c),
			Breakdown:           breakdown,
			Notes:               generateNotes(breakdown),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return Less(ranked[i], ranked[j])
	})

	return ranked
}

// Less is the ranking order used by RankCandidates
func Less(a, b RankedCandidate) bool {
	if a.RoleFit != b.RoleFit {
		return a.RoleFit > b.RoleFit
	}
	if a.ExperienceDeviation != b.ExperienceDeviation {
		return a.ExperienceDeviation < b.ExperienceDeviation
	}
	return a.Index < b.Index
}

// generateNotes creates a brief explanation of the ranking.
func generateNotes(b scoring.RoleFitBreakdown) string {
	var parts []string

	switch {
	case len(b.MatchedSkills) == 0:
		parts = append(parts, "No skill matches")
	case b.SkillOverlap >= 0.7:
		parts = append(parts, fmt.Sprintf("Strong skill match (%s)", strings.Join(b.MatchedSkills, ", ")))
	case b.SkillOverlap >= 0.4:
		parts = append(parts, fmt.Sprintf("Moderate skill match (%s)", strings.Join(b.MatchedSkills, ", ")))
	default:
		parts = append(parts, fmt.Sprintf("Weak skill match (%s)", strings.Join(b.MatchedSkills, ", ")))
	}

	if b.ExperienceProximity >= 0.8 {
		parts = append(parts, "Experience close to target")
	} else if b.ExperienceProximity < 0.4 {
		parts = append(parts, "Experience far from target")
	}

	if b.AvailabilityHeadroom < 0.3 {
		parts = append(parts, "Limited availability")
	}

	return strings.Join(parts, ". ")
}

package scoring

import (
	"math"

	"github.com/jonathan/team-composer/internal/types"
)

// RoleFitBreakdown holds the individual role fit factors
type RoleFitBreakdown struct {
	SkillOverlap         float64  `json:"skill_overlap"`
	ExperienceProximity  float64  `json:"experience_proximity"`
	AvailabilityHeadroom float64  `json:"availability_headroom"`
	MatchedSkills        []string `json:"matched_skills,omitempty"`
	Score                float64  `json:"score"`
}

// RoleFit scores how well one candidate matches the requirement, in [0,1].
// It is exactly 1 when the candidate holds every required skill, matches the
// experience level exactly and has nothing committed.
func (s *Scorer) RoleFit(c *types.CandidateProfile, req *types.Requirement) float64 {
	return s.RoleFitBreakdown(c, req.RequiredSkills, req.ExperienceLevel).Score
}

// RoleFitForSlot scores a candidate against a sub-role. Slots without their
// own skills fall back to the requirement's skills.
func (s *Scorer) RoleFitForSlot(c *types.CandidateProfile, req *types.Requirement, slot types.RoleSlot) float64 {
	skills := req.RequiredSkills
	if len(slot.RequiredSkills) > 0 {
		skills = slot.RequiredSkills
	}
	return s.RoleFitBreakdown(c, skills, req.ExperienceLevel).Score
}

// RoleFitBreakdown computes the role fit and its components
func (s *Scorer) RoleFitBreakdown(c *types.CandidateProfile, requiredSkills []string, experienceLevel float64) RoleFitBreakdown {
	overlap, matched := SkillOverlap(c, requiredSkills)
	proximity := ExperienceProximity(c.ExperienceYears, experienceLevel)
	headroom := AvailabilityHeadroom(c.Availability)

	w := s.Weights.RoleFit
	total := w.sum()
	score := 0.0
	if total > 0 {
		// Dividing by the same sum the numerator reduces to keeps a perfect
		// candidate at exactly 1.0.
		score = (w.Skill*overlap + w.Experience*proximity + w.Availability*headroom) / total
	}

	return RoleFitBreakdown{
		SkillOverlap:         overlap,
		ExperienceProximity:  proximity,
		AvailabilityHeadroom: headroom,
		MatchedSkills:        matched,
		Score:                clamp01(score),
	}
}

// SkillOverlap returns |candidate skills ∩ required| / |required| and the matched skills
func SkillOverlap(c *types.CandidateProfile, requiredSkills []string) (float64, []string) {
	required := types.NormalizeSkills(requiredSkills)
	if len(required) == 0 {
		return 0.0, nil
	}

	have := make(map[string]bool, len(c.Skills))
	for _, s := range c.Skills {
		have[types.NormalizeSkill(s)] = true
	}

	matched := make([]string, 0, len(required))
	for _, skill := range required {
		if have[skill] {
			matched = append(matched, skill)
		}
	}
	return float64(len(matched)) / float64(len(required)), matched
}

// ExperienceProximity is 1 - min(1, |years - level| / level)
func ExperienceProximity(years, level float64) float64 {
	if level <= 0 {
		return 0.0
	}
	return clamp01(1.0 - math.Min(1.0, math.Abs(years-level)/level))
}

// AvailabilityHeadroom is the uncommitted share of a candidate's capacity
func AvailabilityHeadroom(availability float64) float64 {
	return clamp01(1.0 - clamp01(availability))
}

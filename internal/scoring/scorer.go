package scoring

import (
	"math"

	"github.com/jonathan/team-composer/internal/types"
)

// Scorer bundles the weights, band table and cost function used to score
// candidates and teams. A Scorer holds no mutable state and may be shared
// between concurrent runs.
type Scorer struct {
	Weights Weights
	Bands   types.SeniorityThresholds
	Cost    CostFunc
}

// NewScorer creates a Scorer. A nil cost function falls back to DefaultRateTable.
func NewScorer(weights Weights, bands types.SeniorityThresholds, cost CostFunc) *Scorer {
	if cost == nil {
		cost = DefaultRateTable().Cost
	}
	return &Scorer{Weights: weights, Bands: bands, Cost: cost}
}

// DefaultScorer returns a Scorer with default weights, bands and rates
func DefaultScorer() *Scorer {
	return NewScorer(DefaultWeights(), types.DefaultSeniorityThresholds(), nil)
}

// BandOf returns the seniority band of a candidate under this scorer's band table
func (s *Scorer) BandOf(c *types.CandidateProfile) types.SeniorityBand {
	return s.Bands.BandOf(c)
}

// SkillCoverage maps every required skill to whether at least one team member lists it.
// Keys are the normalized skill names.
func SkillCoverage(team []types.CandidateProfile, requiredSkills []string) map[string]bool {
	required := types.NormalizeSkills(requiredSkills)
	coverage := make(map[string]bool, len(required))
	for _, skill := range required {
		coverage[skill] = false
	}
	for i := range team {
		for _, s := range team[i].Skills {
			n := types.NormalizeSkill(s)
			if _, wanted := coverage[n]; wanted {
				coverage[n] = true
			}
		}
	}
	return coverage
}

// CoverageRatio returns the share of covered skills in a coverage map
func CoverageRatio(coverage map[string]bool) float64 {
	if len(coverage) == 0 {
		return 0.0
	}
	covered := 0
	for _, ok := range coverage {
		if ok {
			covered++
		}
	}
	return float64(covered) / float64(len(coverage))
}

// BalanceBreakdown holds the components of the team balance score
type BalanceBreakdown struct {
	MixDeviation     int     `json:"mix_deviation"`
	MixScore         float64 `json:"mix_score"`
	ExperienceStdDev float64 `json:"experience_stddev"`
	SpreadScore      float64 `json:"spread_score"`
	Score            float64 `json:"score"`
}

// TeamBalance scores the team's seniority mix and experience spread, in [0,1]
func (s *Scorer) TeamBalance(team []types.CandidateProfile, req *types.Requirement) float64 {
	return s.TeamBalanceBreakdown(team, req).Score
}

// TeamBalanceBreakdown computes the balance score and its components.
//
// Mix: deviation is sum over bands of |actual - target|, normalized by
// team size plus target headcount so the score stays in [0,1]; no target means a
// perfect mix. Spread: the experience standard deviation is compared with an
// ideal of SpreadTarget * experience_level; teams that are too homogeneous or too
// spread lose score linearly until the gap equals the ideal itself.
func (s *Scorer) TeamBalanceBreakdown(team []types.CandidateProfile, req *types.Requirement) BalanceBreakdown {
	if len(team) == 0 {
		return BalanceBreakdown{}
	}

	counts := s.BandCounts(team)
	deviation := MixDeviation(counts, req.SeniorityMix)
	mixScore := 1.0
	if target := req.MixTotal(); target > 0 {
		mixScore = clamp01(1.0 - float64(deviation)/float64(len(team)+target))
	}

	stddev := experienceStdDev(team)
	spreadScore := 1.0
	if len(team) > 1 {
		ideal := s.Weights.Balance.SpreadTarget * req.ExperienceLevel
		if ideal > 0 {
			spreadScore = clamp01(1.0 - math.Min(1.0, math.Abs(stddev-ideal)/ideal))
		}
	}

	w := s.Weights.Balance
	score := 0.0
	if total := w.Mix + w.Spread; total > 0 {
		score = (w.Mix*mixScore + w.Spread*spreadScore) / total
	}

	return BalanceBreakdown{
		MixDeviation:     deviation,
		MixScore:         mixScore,
		ExperienceStdDev: stddev,
		SpreadScore:      spreadScore,
		Score:            clamp01(score),
	}
}

// BandCounts counts team members per seniority band
func (s *Scorer) BandCounts(team []types.CandidateProfile) map[types.SeniorityBand]int {
	counts := make(map[types.SeniorityBand]int, len(types.AllBands))
	for i := range team {
		counts[s.BandOf(&team[i])]++
	}
	return counts
}

// MixDeviation returns sum over bands of |actual - target|. Bands without a target count as 0.
func MixDeviation(actual, target map[types.SeniorityBand]int) int {
	if len(target) == 0 {
		return 0
	}
	deviation := 0
	seen := make(map[types.SeniorityBand]bool, len(actual)+len(target))
	for band, want := range target {
		seen[band] = true
		deviation += absInt(actual[band] - want)
	}
	for band, have := range actual {
		if !seen[band] {
			deviation += have
		}
	}
	return deviation
}

// TeamCost sums the per-candidate cost proxy over the team
func (s *Scorer) TeamCost(team []types.CandidateProfile) float64 {
	total := 0.0
	for i := range team {
		total += s.CandidateCost(&team[i])
	}
	return total
}

// CandidateCost returns the cost proxy of one candidate
func (s *Scorer) CandidateCost(c *types.CandidateProfile) float64 {
	if s.Cost == nil {
		return 0.0
	}
	return s.Cost(c, s.BandOf(c))
}

func experienceStdDev(team []types.CandidateProfile) float64 {
	if len(team) == 0 {
		return 0.0
	}
	mean := 0.0
	for i := range team {
		mean += team[i].ExperienceYears
	}
	mean /= float64(len(team))

	variance := 0.0
	for i := range team {
		d := team[i].ExperienceYears - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(team)))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package selection

import (
	"github.com/jonathan/team-composer/internal/ranking"
	"github.com/jonathan/team-composer/internal/scoring"
	"github.com/jonathan/team-composer/internal/types"
)

// pick is a selected candidate, identified by its position in the ranking
type pick struct {
	rank    int
	reasons []string
}

// greedy walks the ranking and admits candidates until the team is full.
//
// A candidate that adds no new required skill and would push the seniority-mix
// deviation up by more than the configured slack is deferred. Deferred
// candidates backfill the team in rank order when the ranking runs out before
// the team is full.
func (o *Optimizer) greedy(ranked []ranking.RankedCandidate, req *types.Requirement) []pick {
	size := req.TeamSize
	required := make(map[string]bool)
	for _, s := range types.NormalizeSkills(req.RequiredSkills) {
		required[s] = false
	}

	counts := make(map[types.SeniorityBand]int, len(types.AllBands))
	deviation := scoring.MixDeviation(counts, req.SeniorityMix)

	picks := make([]pick, 0, size)
	var deferred []int

	for i := range ranked {
		if len(picks) == size {
			break
		}
		r := &ranked[i]

		gain := coverageGain(r.Candidate, required)
		counts[r.Band]++
		next := scoring.MixDeviation(counts, req.SeniorityMix)

		if gain == 0 && next-deviation > o.opts.SeniorityDeviationSlack {
			counts[r.Band]--
			deferred = append(deferred, i)
			continue
		}

		var reasons []string
		if gain > 0 {
			reasons = append(reasons, types.ReasonCoversSkill)
			markCovered(r.Candidate, required)
		}
		if next < deviation {
			reasons = append(reasons, types.ReasonSeniority)
		}
		if len(reasons) == 0 {
			reasons = append(reasons, types.ReasonTopRoleFit)
		}
		deviation = next
		picks = append(picks, pick{rank: i, reasons: reasons})
	}

	for _, i := range deferred {
		if len(picks) == size {
			break
		}
		picks = append(picks, pick{rank: i, reasons: []string{types.ReasonBackfill}})
	}

	return picks
}

// coverageGain counts required skills the candidate holds that nobody covers yet
func coverageGain(c *types.CandidateProfile, required map[string]bool) int {
	gain := 0
	seen := make(map[string]bool, len(c.Skills))
	for _, s := range c.Skills {
		n := types.NormalizeSkill(s)
		if covered, ok := required[n]; ok && !covered && !seen[n] {
			seen[n] = true
			gain++
		}
	}
	return gain
}

func markCovered(c *types.CandidateProfile, required map[string]bool) {
	for _, s := range c.Skills {
		n := types.NormalizeSkill(s)
		if _, ok := required[n]; ok {
			required[n] = true
		}
	}
}

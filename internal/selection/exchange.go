package selection

import (
	"github.com/jonathan/team-composer/internal/ranking"
	"github.com/jonathan/team-composer/internal/types"
)

type swapKey struct {
	in, out int
}

// exchange improves the picks in place by swapping a member for a non-member.
//
// Each pass scans members in order against non-members in rank order and
// applies the first swap that raises the objective. Every (member, non-member)
// pair is evaluated at most once, and at most MaxExchangeIterations passes run.
// It returns the number of swaps applied.
func (o *Optimizer) exchange(ranked []ranking.RankedCandidate, picks []pick, eval *evaluator) int {
	if len(picks) == 0 || len(picks) >= len(ranked) {
		return 0
	}

	inTeam := make(map[int]bool, len(picks))
	team := make([]types.CandidateProfile, len(picks))
	for i, p := range picks {
		inTeam[p.rank] = true
		team[i] = *ranked[p.rank].Candidate
	}
	current := eval.evaluate(team).Value

	tried := make(map[swapKey]bool)
	swaps := 0

	for iter := 0; iter < o.opts.MaxExchangeIterations; iter++ {
		improved := false

	scan:
		for pos := range picks {
			for out := range ranked {
				if inTeam[out] {
					continue
				}
				key := swapKey{in: picks[pos].rank, out: out}
				if tried[key] {
					continue
				}
				tried[key] = true

				prev := team[pos]
				team[pos] = *ranked[out].Candidate
				value := eval.evaluate(team).Value
				if value > current+improvementEpsilon {
					delete(inTeam, picks[pos].rank)
					inTeam[out] = true
					picks[pos] = pick{rank: out, reasons: []string{types.ReasonExchange}}
					current = value
					swaps++
					improved = true
					break scan
				}
				team[pos] = prev
			}
		}

		if !improved {
			break
		}
	}

	return swaps
}

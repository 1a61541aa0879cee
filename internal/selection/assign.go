package selection

import (
	"math"

	"github.com/jonathan/team-composer/internal/ranking"
	"github.com/jonathan/team-composer/internal/types"
)

// seat is one position on the team that a member can be assigned to
type seat struct {
	role string
	slot types.RoleSlot
	sub  bool
}

// expandSeats lists one seat per sub-role headcount, followed by seats for
// the requirement's primary role until there is one seat per member.
func expandSeats(req *types.Requirement, members int) []seat {
	var seats []seat
	for _, s := range req.SubRoles {
		for n := 0; n < s.Count; n++ {
			seats = append(seats, seat{role: s.Role, slot: s, sub: true})
		}
	}
	for len(seats) < members {
		seats = append(seats, seat{role: req.Role, slot: types.RoleSlot{Role: req.Role}})
	}
	return seats
}

// assignRoles turns picks into team members. Without sub-roles every member
// takes the primary role. With sub-roles, members are matched to seats so
// that the total role fit is maximal.
func (o *Optimizer) assignRoles(ranked []ranking.RankedCandidate, picks []pick, req *types.Requirement) []types.TeamMember {
	members := make([]types.TeamMember, len(picks))
	for i, p := range picks {
		r := &ranked[p.rank]
		members[i] = types.TeamMember{
			Candidate:        *r.Candidate,
			AssignedRole:     req.Role,
			RoleFitScore:     r.RoleFit,
			SeniorityBand:    r.Band,
			Cost:             o.scorer.CandidateCost(r.Candidate),
			SelectionReasons: append([]string(nil), p.reasons...),
		}
	}

	if len(req.SubRoles) == 0 || len(members) == 0 {
		return members
	}

	seats := expandSeats(req, len(members))
	fits := make([][]float64, len(members))
	cost := make([][]float64, len(members))
	for i := range members {
		fits[i] = make([]float64, len(seats))
		cost[i] = make([]float64, len(seats))
		for j, s := range seats {
			fit := members[i].RoleFitScore
			if s.sub {
				fit = o.scorer.RoleFitForSlot(&members[i].Candidate, req, s.slot)
			}
			fits[i][j] = fit
			cost[i][j] = 1.0 - fit
		}
	}

	for i, j := range hungarian(cost) {
		members[i].AssignedRole = seats[j].role
		members[i].RoleFitScore = fits[i][j]
	}
	return members
}

// hungarian solves the rectangular assignment problem for an n x m cost
// matrix with n <= m, returning the column assigned to each row so that the
// total cost is minimal.
func hungarian(cost [][]float64) []int {
	n := len(cost)
	if n == 0 {
		return nil
	}
	m := len(cost[0])
	inf := math.Inf(1)

	u := make([]float64, n+1)
	v := make([]float64, m+1)
	p := make([]int, m+1)
	way := make([]int, m+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, m+1)
		for j := range minv {
			minv[j] = inf
		}
		used := make([]bool, m+1)

		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := 0
			for j := 1; j <= m; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= m; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	assignment := make([]int, n)
	for j := 1; j <= m; j++ {
		if p[j] != 0 {
			assignment[p[j]-1] = j - 1
		}
	}
	return assignment
}

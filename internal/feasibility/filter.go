// Package feasibility removes candidates that violate the hard constraints of a run.
//
// The filter is a single left-to-right pass. Department caps are enforced with
// running counts of admitted candidates, so when a department has more eligible
// candidates than its cap the earliest ones in the input win. Callers that care
// which candidates survive a cap must order the pool accordingly (for example by
// a search ranking) before filtering.
package feasibility

import (
	"fmt"

	"github.com/jonathan/team-composer/internal/types"
)

// RejectReason names the hard constraint a candidate failed
type RejectReason string

// Rejection reasons, in the order they are checked
const (
	ReasonOverWorkload    RejectReason = "over_workload"
	ReasonBelowExperience RejectReason = "below_experience"
	ReasonAboveExperience RejectReason = "above_experience"
	ReasonDepartmentCap   RejectReason = "department_cap"
)

// Rejection records why one candidate was not admitted
type Rejection struct {
	EmployeeID string       `json:"employee_id"`
	Index      int          `json:"index"`
	Reason     RejectReason `json:"reason"`
	Detail     string       `json:"detail"`
}

// Result is the outcome of filtering a pool. An empty Admitted slice with
// PoolSize 0 means there was nothing to filter; with PoolSize > 0 it means every
// candidate was rejected, and Rejected says why.
type Result struct {
	Admitted         []types.CandidateProfile `json:"admitted"`
	Rejected         []Rejection              `json:"rejected,omitempty"`
	PoolSize         int                      `json:"pool_size"`
	DepartmentCounts map[string]int           `json:"department_counts"`
}

// EmptyPool reports whether the input pool had no candidates at all
func (r *Result) EmptyPool() bool {
	return r.PoolSize == 0
}

// AllRejected reports whether a non-empty pool produced no admitted candidates
func (r *Result) AllRejected() bool {
	return r.PoolSize > 0 && len(r.Admitted) == 0
}

// RejectionCounts tallies rejections per reason
func (r *Result) RejectionCounts() map[RejectReason]int {
	counts := make(map[RejectReason]int)
	for _, rej := range r.Rejected {
		counts[rej.Reason]++
	}
	return counts
}

// Filter returns the candidates that satisfy every hard constraint, in input order
func Filter(pool []types.CandidateProfile, cs types.ConstraintSet) []types.CandidateProfile {
	return Evaluate(pool, cs).Admitted
}

// Evaluate filters the pool and reports every rejection
func Evaluate(pool []types.CandidateProfile, cs types.ConstraintSet) Result {
	result := Result{
		Admitted:         make([]types.CandidateProfile, 0, len(pool)),
		PoolSize:         len(pool),
		DepartmentCounts: make(map[string]int),
	}

	for i := range pool {
		c := &pool[i]
		if reason, detail, ok := check(c, cs, result.DepartmentCounts); !ok {
			result.Rejected = append(result.Rejected, Rejection{
				EmployeeID: c.EmployeeID,
				Index:      i,
				Reason:     reason,
				Detail:     detail,
			})
			continue
		}
		result.DepartmentCounts[c.Department]++
		result.Admitted = append(result.Admitted, *c)
	}

	return result
}

// check applies the per-candidate constraints and then the running department cap
func check(c *types.CandidateProfile, cs types.ConstraintSet, counts map[string]int) (RejectReason, string, bool) {
	if c.Availability > cs.MaxWorkload {
		return ReasonOverWorkload, fmt.Sprintf("availability %.2f exceeds max workload %.2f", c.Availability, cs.MaxWorkload), false
	}
	if c.ExperienceYears < cs.MinExperienceYears {
		return ReasonBelowExperience, fmt.Sprintf("%.1f years below minimum %.1f", c.ExperienceYears, cs.MinExperienceYears), false
	}
	if c.ExperienceYears > cs.MaxExperienceYears {
		return ReasonAboveExperience, fmt.Sprintf("%.1f years above maximum %.1f", c.ExperienceYears, cs.MaxExperienceYears), false
	}
	if limit, capped := cs.MaxPerDepartment[c.Department]; capped && counts[c.Department] >= limit {
		return ReasonDepartmentCap, fmt.Sprintf("department %q already has %d of %d", c.Department, counts[c.Department], limit), false
	}
	return "", "", true
}

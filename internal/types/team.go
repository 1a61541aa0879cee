package types

import (
	"time"

	"github.com/google/uuid"
)

// Selection reason tags attached to team members
const (
	ReasonTopRoleFit  = "top_role_fit"
	ReasonCoversSkill = "covers_skill"
	ReasonSeniority   = "fills_seniority"
	ReasonBackfill    = "backfill"
	ReasonExchange    = "exchange"
)

// TeamMember is a view over a CandidateProfile for one selection run
type TeamMember struct {
	Candidate        CandidateProfile `json:"candidate"`
	AssignedRole     string           `json:"assigned_role"`
	RoleFitScore     float64          `json:"role_fit_score"`
	SeniorityBand    SeniorityBand    `json:"seniority_band"`
	Cost             float64          `json:"cost"`
	SelectionReasons []string         `json:"selection_reasons,omitempty"`
}

// TeamSuggestion is the scored output of one optimizer run. It is logically
// immutable: a what-if produces a new suggestion with a new ID.
type TeamSuggestion struct {
	SuggestionID     uuid.UUID       `json:"suggestion_id"`
	BaseSuggestionID *uuid.UUID      `json:"base_suggestion_id,omitempty"`
	Members          []TeamMember    `json:"members"`
	TotalCost        float64         `json:"total_cost"`
	SkillCoverage    map[string]bool `json:"skill_coverage"`
	CoverageRatio    float64         `json:"coverage_ratio"`
	TeamBalanceScore float64         `json:"team_balance_score"`
	MeanRoleFit      float64         `json:"mean_role_fit"`
	Objective        float64         `json:"objective"`
	TargetSize       int             `json:"target_size"`
	Shortfall        int             `json:"shortfall"`
	FeasiblePoolSize int             `json:"feasible_pool_size"`
	ExchangeSwaps    int             `json:"exchange_swaps"`
	CreatedAt        time.Time       `json:"created_at"`
}

// MemberIDs returns the employee ids of the members in team order
func (s *TeamSuggestion) MemberIDs() []string {
	ids := make([]string, 0, len(s.Members))
	for _, m := range s.Members {
		ids = append(ids, m.Candidate.EmployeeID)
	}
	return ids
}

// PoolSnapshot is the retained input of a suggestion, used by what-if runs so
// that alternatives are computed against exactly the same candidates.
type PoolSnapshot struct {
	SuggestionID uuid.UUID          `json:"suggestion_id"`
	Requirement  Requirement        `json:"requirement"`
	Constraints  ConstraintSet      `json:"constraints"`
	Pool         []CandidateProfile `json:"pool"`
	MemberIDs    []string           `json:"member_ids"`
	CreatedAt    time.Time          `json:"created_at"`
}

// Clone returns a deep copy: neither the pool, its candidates nor the
// requirement share memory with s
func (s *PoolSnapshot) Clone() *PoolSnapshot {
	out := *s
	out.Requirement = *s.Requirement.Clone()
	out.Constraints = s.Constraints.Clone()
	if s.Pool != nil {
		out.Pool = make([]CandidateProfile, len(s.Pool))
		for i := range s.Pool {
			out.Pool[i] = s.Pool[i].Clone()
		}
	}
	out.MemberIDs = append([]string(nil), s.MemberIDs...)
	return &out
}

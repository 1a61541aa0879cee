// Package explain produces human-readable reasons for team membership.
// Explanations are generated after composition and never influence it.
package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/team-composer/internal/scoring"
	"github.com/jonathan/team-composer/internal/types"
	"golang.org/x/sync/errgroup"
)

// Explanation describes why one member fits the team
type Explanation struct {
	EmployeeID string   `json:"employee_id"`
	Summary    string   `json:"summary"`
	Strengths  []string `json:"strengths,omitempty"`
	Gaps       []string `json:"gaps,omitempty"`
}

// Explainer explains one member's selection
type Explainer interface {
	Explain(ctx context.Context, member *types.TeamMember, req *types.Requirement) (*Explanation, error)
}

// TeamSummarizer is implemented by explainers that can also describe the team as a whole
type TeamSummarizer interface {
	SummarizeTeam(ctx context.Context, suggestion *types.TeamSuggestion, req *types.Requirement) (string, error)
}

// RuleExplainer derives explanations from the role fit breakdown alone
type RuleExplainer struct {
	Scorer *scoring.Scorer
}

// Explain implements Explainer
func (e *RuleExplainer) Explain(_ context.Context, member *types.TeamMember, req *types.Requirement) (*Explanation, error) {
	scorer := e.Scorer
	if scorer == nil {
		scorer = scoring.DefaultScorer()
	}
	c := &member.Candidate
	b := scorer.RoleFitBreakdown(c, req.RequiredSkills, req.ExperienceLevel)

	var strengths, gaps []string
	if len(b.MatchedSkills) > 0 {
		strengths = append(strengths, "covers "+strings.Join(b.MatchedSkills, ", "))
	}
	if missing := missingSkills(c, req.RequiredSkills); len(missing) > 0 {
		gaps = append(gaps, "lacks "+strings.Join(missing, ", "))
	}
	switch {
	case b.ExperienceProximity >= 0.8:
		strengths = append(strengths, fmt.Sprintf("%.0f years, close to the %.0f-year target", c.ExperienceYears, req.ExperienceLevel))
	case c.ExperienceYears < req.ExperienceLevel:
		gaps = append(gaps, fmt.Sprintf("%.0f years, below the %.0f-year target", c.ExperienceYears, req.ExperienceLevel))
	default:
		gaps = append(gaps, fmt.Sprintf("%.0f years, above the %.0f-year target", c.ExperienceYears, req.ExperienceLevel))
	}
	if b.AvailabilityHeadroom < 0.5 {
		gaps = append(gaps, fmt.Sprintf("%.0f%% already committed", c.Availability*100))
	}

	return &Explanation{
		EmployeeID: c.EmployeeID,
		Summary: fmt.Sprintf("%s (%s) proposed as %s with role fit %.2f: %s",
			c.EmployeeID, member.SeniorityBand, member.AssignedRole, member.RoleFitScore,
			strings.Join(member.SelectionReasons, ", ")),
		Strengths: strengths,
		Gaps:      gaps,
	}, nil
}

func missingSkills(c *types.CandidateProfile, required []string) []string {
	var missing []string
	for _, skill := range types.NormalizeSkills(required) {
		if !c.HasSkill(skill) {
			missing = append(missing, skill)
		}
	}
	return missing
}

// Team explains every member of a suggestion, running at most concurrency
// explanations at once. Results keep member order.
func Team(ctx context.Context, e Explainer, suggestion *types.TeamSuggestion, req *types.Requirement, concurrency int) ([]Explanation, error) {
	out := make([]Explanation, len(suggestion.Members))

	g, gCtx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i := range suggestion.Members {
		g.Go(func() error {
			exp, err := e.Explain(gCtx, &suggestion.Members[i], req)
			if err != nil {
				return fmt.Errorf("failed to explain %s: %w", suggestion.Members[i].Candidate.EmployeeID, err)
			}
			out[i] = *exp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

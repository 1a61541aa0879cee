package explain

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/team-composer/internal/llm"
	"github.com/jonathan/team-composer/internal/prompts"
	"github.com/jonathan/team-composer/internal/scoring"
	"github.com/jonathan/team-composer/internal/types"
)

const promptFile = "explain.json"

var (
	_ Explainer      = (*LLMExplainer)(nil)
	_ TeamSummarizer = (*LLMExplainer)(nil)
)

// LLMExplainer asks a language model to phrase the explanation
type LLMExplainer struct {
	client llm.Client
	scorer *scoring.Scorer
}

// NewLLMExplainer creates an LLMExplainer
func NewLLMExplainer(client llm.Client, scorer *scoring.Scorer) *LLMExplainer {
	if scorer == nil {
		scorer = scoring.DefaultScorer()
	}
	return &LLMExplainer{client: client, scorer: scorer}
}

// Explain implements Explainer
func (e *LLMExplainer) Explain(ctx context.Context, member *types.TeamMember, req *types.Requirement) (*Explanation, error) {
	prompt, err := prompts.Render(promptFile, "member-explanation", memberPromptData(member, req, e.scorer))
	if err != nil {
		return nil, err
	}

	raw, err := e.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var exp Explanation
	if err := llm.DecodeJSON(raw, &exp); err != nil {
		return nil, err
	}
	exp.EmployeeID = member.Candidate.EmployeeID
	return &exp, nil
}

// SummarizeTeam asks the model for a short prose summary of the whole team
func (e *LLMExplainer) SummarizeTeam(ctx context.Context, suggestion *types.TeamSuggestion, req *types.Requirement) (string, error) {
	var uncovered []string
	for _, skill := range types.NormalizeSkills(req.RequiredSkills) {
		if !suggestion.SkillCoverage[skill] {
			uncovered = append(uncovered, skill)
		}
	}
	if len(uncovered) == 0 {
		uncovered = []string{"none"}
	}

	prompt, err := prompts.Render(promptFile, "team-summary", map[string]string{
		"Size":           strconv.Itoa(len(suggestion.Members)),
		"Role":           req.Role,
		"RequiredSkills": strings.Join(req.RequiredSkills, ", "),
		"Coverage":       fmt.Sprintf("%.0f%%", suggestion.CoverageRatio*100),
		"Balance":        fmt.Sprintf("%.2f", suggestion.TeamBalanceScore),
		"Uncovered":      strings.Join(uncovered, ", "),
	})
	if err != nil {
		return "", err
	}

	text, err := e.client.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func memberPromptData(member *types.TeamMember, req *types.Requirement, scorer *scoring.Scorer) map[string]string {
	c := &member.Candidate
	b := scorer.RoleFitBreakdown(c, req.RequiredSkills, req.ExperienceLevel)
	return map[string]string{
		"Role":            req.Role,
		"ProjectType":     orNone(req.ProjectType),
		"RequiredSkills":  strings.Join(req.RequiredSkills, ", "),
		"ExperienceLevel": strconv.FormatFloat(req.ExperienceLevel, 'f', -1, 64),
		"Traits":          orNone(strings.Join(req.PersonalityTraits, ", ")),
		"EmployeeID":      c.EmployeeID,
		"CurrentRole":     orNone(c.CurrentRole),
		"Department":      c.Department,
		"AssignedRole":    member.AssignedRole,
		"ExperienceYears": strconv.FormatFloat(c.ExperienceYears, 'f', -1, 64),
		"SeniorityBand":   string(member.SeniorityBand),
		"Skills":          orNone(strings.Join(c.Skills, ", ")),
		"MatchedSkills":   orNone(strings.Join(b.MatchedSkills, ", ")),
		"RoleFit":         fmt.Sprintf("%.2f", member.RoleFitScore),
		"Reasons":         orNone(strings.Join(member.SelectionReasons, ", ")),
		"Highlights":      orNone(strings.Join(c.FeedbackHighlights, " | ")),
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

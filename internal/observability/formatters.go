// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/team-composer/internal/explain"
	"github.com/jonathan/team-composer/internal/feasibility"
	"github.com/jonathan/team-composer/internal/ranking"
	"github.com/jonathan/team-composer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRequirement outputs the staffing need and the hard constraints derived from it
func (p *Printer) PrintRequirement(req *types.Requirement, cs types.ConstraintSet) {
	if req == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role:       %s\n", req.Role))
	if req.ProjectType != "" {
		sb.WriteString(fmt.Sprintf("Project:    %s\n", req.ProjectType))
	}
	sb.WriteString(fmt.Sprintf("Team size:  %d\n", req.TeamSize))
	sb.WriteString(fmt.Sprintf("Skills:     %s\n", strings.Join(req.RequiredSkills, ", ")))
	sb.WriteString(fmt.Sprintf("Experience: %.1f years (band %.1f-%.1f)\n",
		req.ExperienceLevel, cs.MinExperienceYears, cs.MaxExperienceYears))
	sb.WriteString(fmt.Sprintf("Workload:   at most %.0f%% committed\n", cs.MaxWorkload*100))

	if len(cs.MaxPerDepartment) > 0 {
		sb.WriteString("Department caps:\n")
		for _, dept := range sortedKeys(cs.MaxPerDepartment) {
			sb.WriteString(fmt.Sprintf("  • %s: %d\n", dept, cs.MaxPerDepartment[dept]))
		}
	}
	if len(cs.RequiredSeniorityMix) > 0 {
		sb.WriteString("Seniority mix:\n")
		for _, band := range types.AllBands {
			if n, ok := cs.RequiredSeniorityMix[band]; ok {
				sb.WriteString(fmt.Sprintf("  • %s: %d\n", band, n))
			}
		}
	}

	p.printBox("REQUIREMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFeasibility outputs how many candidates survived filtering and why the rest did not
func (p *Printer) PrintFeasibility(res *feasibility.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pool:       %d\n", res.PoolSize))
	sb.WriteString(fmt.Sprintf("Feasible:   %d\n", len(res.Admitted)))
	sb.WriteString(fmt.Sprintf("Rejected:   %d\n", len(res.Rejected)))

	switch {
	case res.EmptyPool():
		sb.WriteString("\nThe candidate pool is empty\n")
	case res.AllRejected():
		sb.WriteString("\nEvery candidate violates a hard constraint\n")
	}

	if len(res.Rejected) > 0 {
		sb.WriteString("\nRejections by reason:\n")
		counts := res.RejectionCounts()
		reasons := make([]string, 0, len(counts))
		for r := range counts {
			reasons = append(reasons, string(r))
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			sb.WriteString(fmt.Sprintf("  • %s: %d\n", r, counts[feasibility.RejectReason(r)]))
		}

		sb.WriteString("\n")
		count := min(len(res.Rejected), maxItemsToShow)
		for i := 0; i < count; i++ {
			rej := res.Rejected[i]
			sb.WriteString(fmt.Sprintf("  ✗ %s (%s)\n", rej.EmployeeID, rej.Detail))
		}
		if len(res.Rejected) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(res.Rejected)-maxItemsToShow))
		}
	}

	p.printBox("FEASIBILITY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRankedCandidates outputs the top N feasible candidates by role fit.
func (p *Printer) PrintRankedCandidates(ranked []ranking.RankedCandidate) {
	if len(ranked) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates ranked: %d\n\n", len(ranked)))

	count := min(len(ranked), maxItemsToShow)
	for i := 0; i < count; i++ {
		rc := ranked[i]
		sb.WriteString(fmt.Sprintf("#%d  %s (%s, %s)\n", i+1, rc.Candidate.EmployeeID, rc.Candidate.Department, rc.Band))
		sb.WriteString(fmt.Sprintf("    Fit: %.2f\n", rc.RoleFit))
		if rc.Notes != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", rc.Notes))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(ranked) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more\n", len(ranked)-maxItemsToShow))
	}

	p.printBox("RANKED CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSuggestion outputs the composed team with its scores
func (p *Printer) PrintSuggestion(s *types.TeamSuggestion) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:         %s\n", s.SuggestionID))
	if s.BaseSuggestionID != nil {
		sb.WriteString(fmt.Sprintf("Based on:   %s\n", *s.BaseSuggestionID))
	}
	sb.WriteString(fmt.Sprintf("Members:    %d of %d", len(s.Members), s.TargetSize))
	if s.Shortfall > 0 {
		sb.WriteString(fmt.Sprintf(" (short by %d)", s.Shortfall))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Coverage:   %.0f%%\n", s.CoverageRatio*100))
	sb.WriteString(fmt.Sprintf("Balance:    %.2f\n", s.TeamBalanceScore))
	sb.WriteString(fmt.Sprintf("Mean fit:   %.2f\n", s.MeanRoleFit))
	sb.WriteString(fmt.Sprintf("Total cost: %.2f\n", s.TotalCost))
	sb.WriteString(fmt.Sprintf("Objective:  %.4f\n", s.Objective))

	if len(s.Members) > 0 {
		sb.WriteString("\n")
		for _, m := range s.Members {
			sb.WriteString(fmt.Sprintf("  • %s as %s (%s, fit %.2f)\n",
				m.Candidate.EmployeeID, m.AssignedRole, m.SeniorityBand, m.RoleFitScore))
		}
	}

	var missing []string
	for _, skill := range sortedKeys(s.SkillCoverage) {
		if !s.SkillCoverage[skill] {
			missing = append(missing, skill)
		}
	}
	if len(missing) > 0 {
		sb.WriteString(fmt.Sprintf("\nUncovered:  %s\n", strings.Join(missing, ", ")))
	}

	p.printBox("TEAM SUGGESTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExplanations outputs one line of reasoning per member
func (p *Printer) PrintExplanations(exps []explain.Explanation) {
	if len(exps) == 0 {
		return
	}

	var sb strings.Builder
	for i, e := range exps {
		sb.WriteString(fmt.Sprintf("%s: %s\n", e.EmployeeID, e.Summary))
		for _, s := range e.Strengths {
			sb.WriteString(fmt.Sprintf("  + %s\n", s))
		}
		for _, g := range e.Gaps {
			sb.WriteString(fmt.Sprintf("  - %s\n", g))
		}
		if i < len(exps)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("WHY THESE MEMBERS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFeedback outputs feedback records, newest last
func (p *Printer) PrintFeedback(records []types.FeedbackRecord) {
	var sb strings.Builder
	if len(records) == 0 {
		sb.WriteString("No feedback recorded")
	}
	for i, r := range records {
		sb.WriteString(fmt.Sprintf("%s  %s  %s\n", r.RecordedAt.Format("2006-01-02 15:04"), r.Feedback.Type, r.SuggestionID))
		if r.Feedback.Rating != nil {
			sb.WriteString(fmt.Sprintf("    Rating: %d/5\n", *r.Feedback.Rating))
		}
		if r.Feedback.Comments != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", r.Feedback.Comments))
		}
		if i < len(records)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("FEEDBACK", strings.TrimSuffix(sb.String(), "\n"))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

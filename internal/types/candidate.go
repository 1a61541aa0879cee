// Package types provides type definitions for structured data used throughout the team-composer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// ProjectRecord is one entry of a candidate's project history
type ProjectRecord struct {
	Name        string   `json:"name"`
	Role        string   `json:"role,omitempty"`
	ProjectType string   `json:"project_type,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	StartDate   string   `json:"start_date,omitempty"` // YYYY-MM
	EndDate     string   `json:"end_date,omitempty"`   // YYYY-MM or "present"
}

// CandidateProfile is a normalized employee record as delivered by ingestion.
// It is read-only for the duration of a selection run.
type CandidateProfile struct {
	EmployeeID      string   `json:"employee_id" validate:"required"`
	Name            string   `json:"name,omitempty"`
	Email           string   `json:"email,omitempty" validate:"omitempty,email"`
	Department      string   `json:"department" validate:"required"`
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years" validate:"gte=0"`
	// Availability is the fraction of capacity already committed: 0 is fully free,
	// 1 is fully booked.
	Availability       float64         `json:"availability" validate:"gte=0,lte=1"`
	CurrentRole        string          `json:"current_role,omitempty"`
	History            []ProjectRecord `json:"history,omitempty"`
	FeedbackHighlights []string        `json:"feedback_highlights,omitempty"`
	SeniorityBand      SeniorityBand   `json:"seniority_band,omitempty"`
}

// Validate validates the CandidateProfile using the validator.
func (c *CandidateProfile) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// HasSkill reports whether the candidate lists the skill (case-insensitive).
func (c *CandidateProfile) HasSkill(skill string) bool {
	target := NormalizeSkill(skill)
	if target == "" {
		return false
	}
	for _, s := range c.Skills {
		if NormalizeSkill(s) == target {
			return true
		}
	}
	return false
}

// NormalizeSkill trims and lowercases a skill tag so that set operations are
// insensitive to formatting differences between HR systems.
func NormalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// NormalizeSkills returns the normalized, de-duplicated skill set in first-seen order.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		n := NormalizeSkill(s)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Clone returns a copy that shares no slices with c
func (c CandidateProfile) Clone() CandidateProfile {
	out := c
	out.Skills = cloneStrings(c.Skills)
	out.FeedbackHighlights = cloneStrings(c.FeedbackHighlights)
	if c.History != nil {
		out.History = make([]ProjectRecord, len(c.History))
		for i, h := range c.History {
			h.Skills = cloneStrings(h.Skills)
			out.History[i] = h
		}
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

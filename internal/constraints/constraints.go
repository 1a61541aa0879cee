// Package constraints derives and validates the hard constraints of a selection run.
package constraints

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/team-composer/internal/types"
)

// Policy holds the externally configurable rules used to turn a Requirement
// into a ConstraintSet.
type Policy struct {
	MinExperienceFactor float64 `json:"min_experience_factor" yaml:"min_experience_factor"`
	MaxExperienceFactor float64 `json:"max_experience_factor" yaml:"max_experience_factor"`
	MaxWorkload         float64 `json:"max_workload" yaml:"max_workload"`
}

// DefaultPolicy returns the 0.8x-1.5x experience band with an 80% workload ceiling
func DefaultPolicy() Policy {
	return Policy{
		MinExperienceFactor: 0.8,
		MaxExperienceFactor: 1.5,
		MaxWorkload:         0.8,
	}
}

// Validate checks that the policy can produce a consistent ConstraintSet
func (p Policy) Validate() error {
	if p.MinExperienceFactor < 0 || p.MaxExperienceFactor < 0 {
		return fmt.Errorf("experience factors must be non-negative")
	}
	if p.MinExperienceFactor > p.MaxExperienceFactor {
		return fmt.Errorf("min_experience_factor %.2f exceeds max_experience_factor %.2f",
			p.MinExperienceFactor, p.MaxExperienceFactor)
	}
	if p.MaxWorkload < 0 || p.MaxWorkload > 1 {
		return fmt.Errorf("max_workload must be within [0,1], got %.2f", p.MaxWorkload)
	}
	return nil
}

// ValidateRequirement rejects requirements that cannot be optimized.
// Nothing is coerced: every problem is reported as ErrInvalidRequirement.
func ValidateRequirement(req *types.Requirement) error {
	if req == nil {
		return invalid("", "requirement is required")
	}
	if req.TeamSize <= 0 {
		return invalid("team_size", fmt.Sprintf("must be positive, got %d", req.TeamSize))
	}
	if len(types.NormalizeSkills(req.RequiredSkills)) == 0 {
		return invalid("required_skills", "must contain at least one skill")
	}
	if !(req.ExperienceLevel > 0) || math.IsInf(req.ExperienceLevel, 0) {
		return invalid("experience_level", fmt.Sprintf("must be positive, got %v", req.ExperienceLevel))
	}

	for band, n := range req.SeniorityMix {
		if !band.Valid() {
			return invalid("seniority_mix", fmt.Sprintf("unknown seniority band %q", band))
		}
		if n < 0 {
			return invalid("seniority_mix", fmt.Sprintf("target for %q must be non-negative", band))
		}
	}
	if total := req.MixTotal(); total > req.TeamSize {
		return invalid("seniority_mix", fmt.Sprintf("targets sum to %d, exceeding team_size %d", total, req.TeamSize))
	}

	for dept, limit := range req.DepartmentConstraints {
		if limit < 0 {
			return invalid("department_constraints", fmt.Sprintf("cap for %q must be non-negative", dept))
		}
	}

	seats := 0
	for _, slot := range req.SubRoles {
		seats += slot.Count
	}
	if seats > req.TeamSize {
		return invalid("sub_roles", fmt.Sprintf("sub-role seats sum to %d, exceeding team_size %d", seats, req.TeamSize))
	}

	if err := req.Validate(); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return invalid(verrs[0].Namespace(), fmt.Sprintf("failed %q rule", verrs[0].Tag()))
		}
		return invalid("", err.Error())
	}

	return nil
}

// Build derives the ConstraintSet for a requirement under a policy
func Build(req *types.Requirement, policy Policy) types.ConstraintSet {
	cs := types.ConstraintSet{
		MinExperienceYears: req.ExperienceLevel * policy.MinExperienceFactor,
		MaxExperienceYears: req.ExperienceLevel * policy.MaxExperienceFactor,
		MaxWorkload:        policy.MaxWorkload,
	}
	if len(req.DepartmentConstraints) > 0 {
		cs.MaxPerDepartment = make(map[string]int, len(req.DepartmentConstraints))
		for dept, limit := range req.DepartmentConstraints {
			cs.MaxPerDepartment[dept] = limit
		}
	}
	if len(req.SeniorityMix) > 0 {
		cs.RequiredSeniorityMix = make(map[types.SeniorityBand]int, len(req.SeniorityMix))
		for band, n := range req.SeniorityMix {
			cs.RequiredSeniorityMix[band] = n
		}
	}
	return cs
}

// Validate rejects internally contradictory constraint sets with ErrConstraintConflict
func Validate(cs types.ConstraintSet) error {
	if math.IsNaN(cs.MinExperienceYears) || math.IsNaN(cs.MaxExperienceYears) {
		return conflict("experience", "bounds must be numbers")
	}
	if cs.MinExperienceYears < 0 {
		return conflict("min_experience_years", "must be non-negative")
	}
	if cs.MinExperienceYears > cs.MaxExperienceYears {
		return conflict("min_experience_years", fmt.Sprintf("%.2f exceeds max_experience_years %.2f",
			cs.MinExperienceYears, cs.MaxExperienceYears))
	}
	if math.IsNaN(cs.MaxWorkload) || cs.MaxWorkload < 0 || cs.MaxWorkload > 1 {
		return conflict("max_workload", fmt.Sprintf("must be within [0,1], got %v", cs.MaxWorkload))
	}
	for dept, limit := range cs.MaxPerDepartment {
		if limit < 0 {
			return conflict("max_per_department", fmt.Sprintf("cap for %q must be non-negative", dept))
		}
	}
	for band, n := range cs.RequiredSeniorityMix {
		if !band.Valid() {
			return conflict("required_seniority_mix", fmt.Sprintf("unknown seniority band %q", band))
		}
		if n < 0 {
			return conflict("required_seniority_mix", fmt.Sprintf("target for %q must be non-negative", band))
		}
	}
	return nil
}

// ValidateFor validates the constraint set and checks that its seniority mix
// fits within the requirement's team size.
func ValidateFor(cs types.ConstraintSet, req *types.Requirement) error {
	if err := Validate(cs); err != nil {
		return err
	}
	total := 0
	for _, n := range cs.RequiredSeniorityMix {
		total += n
	}
	if total > req.TeamSize {
		return conflict("required_seniority_mix", fmt.Sprintf("targets sum to %d, exceeding team_size %d", total, req.TeamSize))
	}
	return nil
}

// ApplyOverrides returns a copy of base with the overrides applied
func ApplyOverrides(base types.ConstraintSet, o *types.ConstraintOverrides) types.ConstraintSet {
	out := base.Clone()
	if o == nil {
		return out
	}
	if o.ClearDepartmentCaps {
		out.MaxPerDepartment = nil
	}
	if o.MaxPerDepartment != nil {
		out.MaxPerDepartment = make(map[string]int, len(o.MaxPerDepartment))
		for dept, limit := range o.MaxPerDepartment {
			out.MaxPerDepartment[dept] = limit
		}
	}
	if o.MinExperienceYears != nil {
		out.MinExperienceYears = *o.MinExperienceYears
	}
	if o.MaxExperienceYears != nil {
		out.MaxExperienceYears = *o.MaxExperienceYears
	}
	if o.RequiredSeniorityMix != nil {
		out.RequiredSeniorityMix = make(map[types.SeniorityBand]int, len(o.RequiredSeniorityMix))
		for band, n := range o.RequiredSeniorityMix {
			out.RequiredSeniorityMix[band] = n
		}
	}
	if o.MaxWorkload != nil {
		out.MaxWorkload = *o.MaxWorkload
	}
	return out
}

func invalid(field, msg string) error {
	return &types.ValidationError{Kind: types.ErrInvalidRequirement, Field: field, Message: msg}
}

func conflict(field, msg string) error {
	return &types.ValidationError{Kind: types.ErrConstraintConflict, Field: field, Message: msg}
}

package types

import "github.com/go-playground/validator/v10"

// RoleSlot is a sub-role within a team, e.g. two "backend" and one "qa" seats.
// Slots that carry their own skills are scored against those instead of the
// requirement's skills during role assignment.
type RoleSlot struct {
	Role           string   `json:"role" yaml:"role" validate:"required"`
	Count          int      `json:"count" yaml:"count" validate:"gt=0"`
	RequiredSkills []string `json:"required_skills,omitempty" yaml:"required_skills,omitempty"`
}

// Requirement describes the staffing need of a project
type Requirement struct {
	Role                  string                `json:"role" yaml:"role" validate:"required"`
	RequiredSkills        []string              `json:"required_skills" yaml:"required_skills" validate:"required,min=1,dive,required"`
	ExperienceLevel       float64               `json:"experience_level" yaml:"experience_level" validate:"gt=0"`
	PersonalityTraits     []string              `json:"personality_traits,omitempty" yaml:"personality_traits,omitempty"`
	TeamSize              int                   `json:"team_size" yaml:"team_size" validate:"gt=0"`
	ProjectType           string                `json:"project_type" yaml:"project_type"`
	Budget                *float64              `json:"budget,omitempty" yaml:"budget,omitempty" validate:"omitempty,gte=0"`
	TimelineMonths        *int                  `json:"timeline_months,omitempty" yaml:"timeline_months,omitempty" validate:"omitempty,gt=0"`
	DepartmentConstraints map[string]int        `json:"department_constraints,omitempty" yaml:"department_constraints,omitempty"`
	SeniorityMix          map[SeniorityBand]int `json:"seniority_mix,omitempty" yaml:"seniority_mix,omitempty"`
	SubRoles              []RoleSlot            `json:"sub_roles,omitempty" yaml:"sub_roles,omitempty" validate:"dive"`
}

// Validate validates the Requirement struct tags using the validator.
// Cross-field rules (seniority mix totals, sub-role seats) live in the constraints package.
func (r *Requirement) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// MixTotal returns the sum of the seniority mix targets
func (r *Requirement) MixTotal() int {
	total := 0
	for _, n := range r.SeniorityMix {
		total += n
	}
	return total
}

// Clone returns a copy whose maps and slices can be modified independently
func (r *Requirement) Clone() *Requirement {
	out := *r
	out.RequiredSkills = append([]string(nil), r.RequiredSkills...)
	out.PersonalityTraits = append([]string(nil), r.PersonalityTraits...)
	out.SubRoles = append([]RoleSlot(nil), r.SubRoles...)
	if r.DepartmentConstraints != nil {
		out.DepartmentConstraints = make(map[string]int, len(r.DepartmentConstraints))
		for k, v := range r.DepartmentConstraints {
			out.DepartmentConstraints[k] = v
		}
	}
	if r.SeniorityMix != nil {
		out.SeniorityMix = make(map[SeniorityBand]int, len(r.SeniorityMix))
		for k, v := range r.SeniorityMix {
			out.SeniorityMix[k] = v
		}
	}
	return &out
}

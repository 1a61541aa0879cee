package types

// ConstraintSet holds the hard constraints derived from a Requirement.
// A nil MaxPerDepartment (or a missing key) means the department is unconstrained.
type ConstraintSet struct {
	MaxPerDepartment     map[string]int        `json:"max_per_department,omitempty"`
	MinExperienceYears   float64               `json:"min_experience_years"`
	MaxExperienceYears   float64               `json:"max_experience_years"`
	RequiredSeniorityMix map[SeniorityBand]int `json:"required_seniority_mix,omitempty"`
	MaxWorkload          float64               `json:"max_workload"`
}

// Clone returns a deep copy of the constraint set
func (c ConstraintSet) Clone() ConstraintSet {
	out := c
	if c.MaxPerDepartment != nil {
		out.MaxPerDepartment = make(map[string]int, len(c.MaxPerDepartment))
		for k, v := range c.MaxPerDepartment {
			out.MaxPerDepartment[k] = v
		}
	}
	if c.RequiredSeniorityMix != nil {
		out.RequiredSeniorityMix = make(map[SeniorityBand]int, len(c.RequiredSeniorityMix))
		for k, v := range c.RequiredSeniorityMix {
			out.RequiredSeniorityMix[k] = v
		}
	}
	return out
}

// ConstraintOverrides is a partial ConstraintSet supplied by a caller for a what-if run.
// Nil fields keep the base value. A present map replaces the base map entirely;
// ClearDepartmentCaps removes all caps.
type ConstraintOverrides struct {
	MaxPerDepartment     map[string]int        `json:"max_per_department,omitempty" yaml:"max_per_department,omitempty"`
	ClearDepartmentCaps  bool                  `json:"clear_department_caps,omitempty" yaml:"clear_department_caps,omitempty"`
	MinExperienceYears   *float64              `json:"min_experience_years,omitempty" yaml:"min_experience_years,omitempty"`
	MaxExperienceYears   *float64              `json:"max_experience_years,omitempty" yaml:"max_experience_years,omitempty"`
	RequiredSeniorityMix map[SeniorityBand]int `json:"required_seniority_mix,omitempty" yaml:"required_seniority_mix,omitempty"`
	MaxWorkload          *float64              `json:"max_workload,omitempty" yaml:"max_workload,omitempty"`
}

// IsEmpty reports whether the overrides change nothing
func (o *ConstraintOverrides) IsEmpty() bool {
	return o == nil || (o.MaxPerDepartment == nil && !o.ClearDepartmentCaps &&
		o.MinExperienceYears == nil && o.MaxExperienceYears == nil &&
		o.RequiredSeniorityMix == nil && o.MaxWorkload == nil)
}

// Clone returns a deep copy of the overrides, or nil for nil
func (o *ConstraintOverrides) Clone() *ConstraintOverrides {
	if o == nil {
		return nil
	}
	out := *o
	if o.MaxPerDepartment != nil {
		out.MaxPerDepartment = make(map[string]int, len(o.MaxPerDepartment))
		for k, v := range o.MaxPerDepartment {
			out.MaxPerDepartment[k] = v
		}
	}
	if o.RequiredSeniorityMix != nil {
		out.RequiredSeniorityMix = make(map[SeniorityBand]int, len(o.RequiredSeniorityMix))
		for k, v := range o.RequiredSeniorityMix {
			out.RequiredSeniorityMix[k] = v
		}
	}
	out.MinExperienceYears = cloneFloat(o.MinExperienceYears)
	out.MaxExperienceYears = cloneFloat(o.MaxExperienceYears)
	out.MaxWorkload = cloneFloat(o.MaxWorkload)
	return &out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

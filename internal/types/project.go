package types

import "github.com/google/uuid"

// ProjectBrief is the hand-off payload for project-management and
// notification collaborators. Delivery happens outside this module.
type ProjectBrief struct {
	SuggestionID   uuid.UUID      `json:"suggestion_id"`
	Name           string         `json:"name"`
	StartDate      string         `json:"start_date"`
	Budget         *float64       `json:"budget,omitempty"`
	DurationMonths *int           `json:"duration_months,omitempty"`
	Members        []TeamMember   `json:"members"`
	Notifications  []MemberNotice `json:"notifications"`
}

// MemberNotice is the message addressed to one selected member
type MemberNotice struct {
	EmployeeID   string `json:"employee_id"`
	Email        string `json:"email,omitempty"`
	AssignedRole string `json:"assigned_role"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
}

package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FeedbackType classifies a human verdict on a suggestion
type FeedbackType string

// Feedback types
const (
	FeedbackAccept FeedbackType = "accept"
	FeedbackReject FeedbackType = "reject"
	FeedbackModify FeedbackType = "modify"
)

// Feedback is the human reaction to a team suggestion
type Feedback struct {
	Type          FeedbackType         `json:"feedback_type" yaml:"feedback_type" validate:"required,oneof=accept reject modify"`
	Comments      string               `json:"comments,omitempty" yaml:"comments,omitempty"`
	Rating        *int                 `json:"rating,omitempty" yaml:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Modifications *ConstraintOverrides `json:"modifications,omitempty" yaml:"modifications,omitempty"`
	SubmittedBy   string               `json:"submitted_by,omitempty" yaml:"submitted_by,omitempty"`
}

// Validate validates the Feedback using the validator.
func (f *Feedback) Validate() error {
	validate := validator.New()
	return validate.Struct(f)
}

// FeedbackRecord is one append-only entry of the feedback log
type FeedbackRecord struct {
	ID           uuid.UUID `json:"id"`
	SuggestionID uuid.UUID `json:"suggestion_id"`
	Feedback     Feedback  `json:"feedback"`
	MemberIDs    []string  `json:"member_ids"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// FeedbackFilter selects records from the feedback log. Zero values match everything.
type FeedbackFilter struct {
	SuggestionID uuid.UUID
	Type         FeedbackType
	Since        time.Time
	Until        time.Time
	Limit        int
}

// Matches reports whether the record passes the filter (Limit is not considered)
func (f FeedbackFilter) Matches(r *FeedbackRecord) bool {
	if f.SuggestionID != uuid.Nil && r.SuggestionID != f.SuggestionID {
		return false
	}
	if f.Type != "" && r.Feedback.Type != f.Type {
		return false
	}
	if !f.Since.IsZero() && r.RecordedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !r.RecordedAt.Before(f.Until) {
		return false
	}
	return true
}

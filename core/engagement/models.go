package engagement

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Status of an Engagement.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// Engagement binds one teacher to one student subject under one contract,
// with an independently negotiated teacher rate. Accumulated lesson counts
// are derived from logged time entries by an external collaborator and are
// deliberately not part of this record.
type Engagement struct {
	ID               int       `json:"id"`
	ContractID       int       `json:"contract_id"`
	StudentSubjectID int       `json:"student_subject_id"`
	TeacherID        int       `json:"teacher_id"`
	TeacherRate      float64   `json:"teacher_rate"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at"` // UTC
}

// NewEngagement contains information needed to create a new Engagement.
type NewEngagement struct {
	ContractID       int     `json:"contract_id" validate:"required,gt=0"`
	StudentSubjectID int     `json:"student_subject_id" validate:"required,gt=0"`
	TeacherID        int     `json:"teacher_id" validate:"required,gt=0"`
	TeacherRate      float64 `json:"teacher_rate" validate:"required,gt=0"`
}

func (ne NewEngagement) Validate(validate *validator.Validate) error {
	return validate.Struct(ne)
}

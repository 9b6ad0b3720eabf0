package mediation

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lernwerk/backoffice/core"
)

// StageType is one step of the staffing progress of a student subject.
// "not_mediated" is a first-class sentinel for the absence of any record;
// it is never stored.
type StageType string

const (
	StageTeacherSearch   StageType = "teacher_search"
	StageTeacherProposed StageType = "teacher_proposed"
	StageTrialLesson     StageType = "trial_lesson"
	StageMediated        StageType = "mediated"
	StageOnHold          StageType = "on_hold"

	StageNotMediated StageType = "not_mediated"
)

var AllStageTypes = []StageType{
	StageTeacherSearch, StageTeacherProposed, StageTrialLesson, StageMediated, StageOnHold,
}

func (t StageType) Valid() bool {
	for _, st := range AllStageTypes {
		if t == st {
			return true
		}
	}
	return false
}

// StudentSubject is a subject a student wants tutoring in. EngagementID and
// ContractID point at the engagement it resolved into, if any.
type StudentSubject struct {
	ID           int       `json:"id"`
	StudentID    int       `json:"student_id"`
	Subject      string    `json:"subject"`
	Detail       string    `json:"detail"`
	EngagementID *int      `json:"engagement_id,omitempty"`
	ContractID   *int      `json:"contract_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// MediationStage is one staffing-progress record. Records are append-only:
// later stages supersede, never overwrite, so the history is preserved.
type MediationStage struct {
	ID               int       `json:"id"`
	StudentSubjectID int       `json:"student_subject_id"`
	Type             StageType `json:"type"`
	Actor            string    `json:"actor"`
	CreatedAt        time.Time `json:"created_at"` // UTC
}

// NotMediated is the sentinel returned when a subject has no stage records.
func NotMediated(studentSubjectID int) MediationStage {
	return MediationStage{StudentSubjectID: studentSubjectID, Type: StageNotMediated}
}

// NewStudentSubject contains information needed to create a new StudentSubject.
type NewStudentSubject struct {
	StudentID int    `json:"student_id" validate:"required,gt=0"`
	Subject   string `json:"subject" validate:"required"`
	Detail    string `json:"detail"`
}

func (ns *NewStudentSubject) Validate(validate *validator.Validate) error {
	ns.Subject = core.CleanString(ns.Subject)
	ns.Detail = core.CleanString(ns.Detail)
	return validate.Struct(ns)
}

// RecordStageRequest is the admin payload for recording staffing progress.
type RecordStageRequest struct {
	Type StageType `json:"type" validate:"required"`
}

func (r RecordStageRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

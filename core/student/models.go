package student

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lernwerk/backoffice/core"
)

// Status is the top-level lifecycle status of a student record.
type Status string

const (
	StatusLeads                Status = "leads"
	StatusAppointmentCall      Status = "appointment_call"
	StatusMediationOpen        Status = "mediation_open"
	StatusPartiallyMediated    Status = "partially_mediated"
	StatusMediated             Status = "mediated"
	StatusSpecialistConsulting Status = "specialist_consulting"
	StatusContractedCustomers  Status = "contracted_customers"
	StatusSuspended            Status = "suspended"
	StatusDeleted              Status = "deleted"
	StatusUnplaceable          Status = "unplaceable"
	StatusWaitingList          Status = "waiting_list"
	StatusFollowup             Status = "followup"

	// legacy dropdown codes, kept with their source spellings
	StatusAppl Status = "appl"
	StatusEng  Status = "eng"
)

var AllStatuses = []Status{
	StatusLeads, StatusAppointmentCall, StatusMediationOpen, StatusPartiallyMediated,
	StatusMediated, StatusSpecialistConsulting, StatusContractedCustomers,
	StatusSuspended, StatusDeleted, StatusUnplaceable, StatusWaitingList,
	StatusFollowup, StatusAppl, StatusEng,
}

// suggestedNext guides the UI through the usual acquisition funnel; it is
// advisory only. Staff may request any transition and the engine accepts it.
var suggestedNext = map[Status]Status{
	StatusLeads:                StatusAppointmentCall,
	StatusAppointmentCall:      StatusMediationOpen,
	StatusMediationOpen:        StatusPartiallyMediated,
	StatusPartiallyMediated:    StatusMediated,
	StatusMediated:             StatusContractedCustomers,
	StatusSpecialistConsulting: StatusMediationOpen,
	StatusWaitingList:          StatusMediationOpen,
	StatusFollowup:             StatusAppointmentCall,
	StatusAppl:                 StatusAppointmentCall,
}

// statusesRequiringReason must carry a free-text reason on every transition
// into them; for all others the reason is optional.
var statusesRequiringReason = map[Status]bool{
	StatusSuspended:   true,
	StatusDeleted:     true,
	StatusWaitingList: true,
	StatusUnplaceable: true,
	StatusFollowup:    true,
}

func (s Status) Valid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Terminal statuses have no outgoing automatic transitions. Suspended and
// Deleted additionally block the forced transition on contract activation
// until an admin clears them.
func (s Status) Terminal() bool {
	return s == StatusContractedCustomers || s == StatusSuspended || s == StatusDeleted
}

func (s Status) Blocked() bool {
	return s == StatusSuspended || s == StatusDeleted
}

func (s Status) RequiresReason() bool {
	return statusesRequiringReason[s]
}

// SuggestedNext returns the advisory next status for the UI dropdown, if any.
func SuggestedNext(s Status) (Status, bool) {
	next, ok := suggestedNext[s]
	return next, ok
}

// Student is a prospective or enrolled customer. Records are never physically
// removed; "deleted" and "suspended" are statuses.
type Student struct {
	ID            int       `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Street        string    `json:"street"`
	PostalCode    string    `json:"postal_code"`
	City          string    `json:"city"`
	AcademicLevel string    `json:"academic_level"`
	Status        Status    `json:"status"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// StatusChange is one audit row per status transition.
type StatusChange struct {
	ID         int       `json:"id"`
	StudentID  int       `json:"student_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	Actor      string    `json:"actor"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	PostalCode    string `json:"postal_code"`
	City          string `json:"city"`
	AcademicLevel string `json:"academic_level"`
	Notes         string `json:"notes"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	return validate.Struct(ns)
}

// StatusChangeRequest is the admin payload for a status transition.
type StatusChangeRequest struct {
	Status Status `json:"status" validate:"required"`
	Reason string `json:"reason"`
}

func (r *StatusChangeRequest) Validate(validate *validator.Validate) error {
	r.Reason = core.CleanString(r.Reason)
	return validate.Struct(r)
}

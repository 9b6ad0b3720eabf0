package student

import (
	"context"
	"errors"
	"time"

	"github.com/lernwerk/backoffice/core"
)

var (
	// errors
	ErrNotFound      = errors.New("student not found")
	ErrInvalidStatus = errors.New("unknown student status")
	// ErrInvalidState is returned when a forced transition hits a student in
	// "suspended" or "deleted"; those must be cleared by an admin first.
	ErrInvalidState = errors.New("student status is blocked and must be cleared by an admin")

	errReasonRequired = errors.New("a reason is required for this status")
)

// reason recorded on the forced transition fired by contract activation
const activationReason = "contract activated"

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student, exec ...core.DBExecutor) (Student, error)
		GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (Student, error)
		QueryAllStudents(ctx context.Context, exec ...core.DBExecutor) ([]Student, error)
		UpdateStudentStatus(ctx context.Context, id int, status Status, exec ...core.DBExecutor) (Student, error)
		CreateStatusChange(ctx context.Context, chg StatusChange, exec ...core.DBExecutor) (StatusChange, error)
		QueryStatusChanges(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]StatusChange, error)
	}

	Service interface {
		Create(ctx context.Context, ns NewStudent) (Student, error)
		GetByID(ctx context.Context, id int) (Student, error)
		QueryAll(ctx context.Context) ([]Student, error)
		// SetStatus applies an admin-requested transition. Any transition is
		// accepted (staff retain override capability; confirmation prompts
		// are a client concern), but statuses flagged as requiring a reason
		// reject an empty one.
		SetStatus(ctx context.Context, id int, status Status, actor, reason string) (Student, error)
		// ForceContracted moves the student into "contracted_customers" on
		// contract activation, overriding the current status unless it is
		// "suspended" or "deleted". It joins the caller's transaction when
		// given an executor.
		ForceContracted(ctx context.Context, id int, actor string, exec ...core.DBExecutor) (Student, error)
		StatusHistory(ctx context.Context, id int) ([]StatusChange, error)
	}

	service struct {
		tx   core.Transactor
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(tx core.Transactor, repo Repository) Service {
	return &service{tx: tx, repo: repo}
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	s := Student{
		FirstName:     ns.FirstName,
		LastName:      ns.LastName,
		Email:         ns.Email,
		Phone:         ns.Phone,
		Street:        ns.Street,
		PostalCode:    ns.PostalCode,
		City:          ns.City,
		AcademicLevel: ns.AcademicLevel,
		Notes:         ns.Notes,
		Status:        StatusLeads,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateStudent(ctx, s)
}

func (svc *service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *service) SetStatus(ctx context.Context, id int, status Status, actor, reason string) (Student, error) {
	if !status.Valid() {
		return Student{}, ErrInvalidStatus
	}
	if status.RequiresReason() && core.CleanString(reason) == "" {
		return Student{}, core.NewValidationError(errReasonRequired,
			core.FieldError{Field: "reason", Error: errReasonRequired.Error()})
	}

	s, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}

	err = svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		s, err = svc.applyStatus(ctx, s, status, actor, reason, exec)
		return err
	})
	return s, err
}

func (svc *service) ForceContracted(ctx context.Context, id int, actor string, exec ...core.DBExecutor) (Student, error) {
	s, err := svc.repo.GetStudentByID(ctx, id, exec...)
	if err != nil {
		return Student{}, err
	}
	if s.Status.Blocked() {
		return Student{}, ErrInvalidState
	}
	if s.Status == StatusContractedCustomers {
		return s, nil
	}

	if len(exec) > 0 {
		return svc.applyStatus(ctx, s, StatusContractedCustomers, actor, activationReason, exec[0])
	}
	err = svc.tx.RunInTx(ctx, func(txExec core.DBExecutor) error {
		s, err = svc.applyStatus(ctx, s, StatusContractedCustomers, actor, activationReason, txExec)
		return err
	})
	return s, err
}

func (svc *service) StatusHistory(ctx context.Context, id int) ([]StatusChange, error) {
	if _, err := svc.repo.GetStudentByID(ctx, id); err != nil {
		return nil, err
	}
	return svc.repo.QueryStatusChanges(ctx, id)
}

func (svc *service) applyStatus(ctx context.Context, s Student, status Status, actor, reason string, exec core.DBExecutor) (Student, error) {
	updated, err := svc.repo.UpdateStudentStatus(ctx, s.ID, status, exec)
	if err != nil {
		return Student{}, err
	}
	chg := StatusChange{
		StudentID:  s.ID,
		FromStatus: s.Status,
		ToStatus:   status,
		Actor:      actor,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err = svc.repo.CreateStatusChange(ctx, chg, exec); err != nil {
		return Student{}, err
	}
	return updated, nil
}

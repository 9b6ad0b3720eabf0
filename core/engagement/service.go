package engagement

import (
	"context"
	"errors"
	"time"

	"github.com/lernwerk/backoffice/core"
)

var (
	// errors
	ErrNotFound = errors.New("engagement not found")
	// ErrConflict signals a concurrent-write invariant violation: the
	// subject was already assigned while this request was in flight. It is
	// surfaced, never retried automatically; the caller must re-decide.
	ErrConflict = errors.New("student subject already has an active engagement")
	// ErrInvalidState is returned when the contract is not active.
	ErrInvalidState = errors.New("contract is not active")
)

type (
	Repository interface {
		// CreateEngagement enforces the one-active-engagement-per-subject
		// invariant with a serializing check-then-write (unique partial
		// index in SQL, table lock in the in-memory store) and fails with
		// ErrConflict for the losing writer.
		CreateEngagement(ctx context.Context, e Engagement, exec ...core.DBExecutor) (Engagement, error)
		GetEngagementByID(ctx context.Context, id int, exec ...core.DBExecutor) (Engagement, error)
		GetActiveEngagementBySubject(ctx context.Context, studentSubjectID int, exec ...core.DBExecutor) (Engagement, error)
		QueryEngagementsByContract(ctx context.Context, contractID int, exec ...core.DBExecutor) ([]Engagement, error)
		// CancelEngagement is conditional on the row being active.
		CancelEngagement(ctx context.Context, id int, exec ...core.DBExecutor) (int64, error)
		// CancelEngagementsByContract cancels every active engagement under
		// a contract; used by the contract cancellation cascade.
		CancelEngagementsByContract(ctx context.Context, contractID int, exec ...core.DBExecutor) (int64, error)
	}

	// ContractDirectory is the slice of the contract service used here.
	ContractDirectory interface {
		ContractActive(ctx context.Context, id int, exec ...core.DBExecutor) (bool, error)
	}

	// SubjectBinder links a created engagement back onto its student
	// subject; implemented by the mediation repository.
	SubjectBinder interface {
		BindEngagement(ctx context.Context, studentSubjectID int, engagementID, contractID *int, exec ...core.DBExecutor) error
	}

	Service interface {
		Create(ctx context.Context, ne NewEngagement) (Engagement, error)
		GetByID(ctx context.Context, id int) (Engagement, error)
		QueryByContract(ctx context.Context, contractID int) ([]Engagement, error)
		// Cancel is idempotent on an already-cancelled engagement. Lesson
		// logs are owned by an external collaborator and stay untouched.
		Cancel(ctx context.Context, id int) (Engagement, error)
		// CancelActiveBySubject cancels the subject's active engagement if
		// one exists; used by the subject-deletion cascade.
		CancelActiveBySubject(ctx context.Context, studentSubjectID int, exec ...core.DBExecutor) error
	}

	service struct {
		tx        core.Transactor
		repo      Repository
		contracts ContractDirectory
		subjects  SubjectBinder
	}
)

var _ Service = (*service)(nil)

func NewService(tx core.Transactor, repo Repository, contracts ContractDirectory, subjects SubjectBinder) Service {
	return &service{tx: tx, repo: repo, contracts: contracts, subjects: subjects}
}

func (svc *service) Create(ctx context.Context, ne NewEngagement) (Engagement, error) {
	active, err := svc.contracts.ContractActive(ctx, ne.ContractID)
	if err != nil {
		return Engagement{}, err
	}
	if !active {
		return Engagement{}, ErrInvalidState
	}

	now := time.Now().UTC()
	e := Engagement{
		ContractID:       ne.ContractID,
		StudentSubjectID: ne.StudentSubjectID,
		TeacherID:        ne.TeacherID,
		TeacherRate:      ne.TeacherRate,
		Status:           StatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		if e, err = svc.repo.CreateEngagement(ctx, e, exec); err != nil {
			return err
		}
		return svc.subjects.BindEngagement(ctx, e.StudentSubjectID, &e.ID, &e.ContractID, exec)
	})
	if err != nil {
		return Engagement{}, err
	}
	return e, nil
}

func (svc *service) GetByID(ctx context.Context, id int) (Engagement, error) {
	return svc.repo.GetEngagementByID(ctx, id)
}

func (svc *service) QueryByContract(ctx context.Context, contractID int) ([]Engagement, error) {
	return svc.repo.QueryEngagementsByContract(ctx, contractID)
}

func (svc *service) Cancel(ctx context.Context, id int) (Engagement, error) {
	e, err := svc.repo.GetEngagementByID(ctx, id)
	if err != nil {
		return Engagement{}, err
	}
	if e.Status == StatusCancelled {
		return e, nil
	}
	if _, err = svc.repo.CancelEngagement(ctx, id); err != nil {
		return Engagement{}, err
	}
	// a raced concurrent cancel wrote the same terminal state; either way
	// the re-read is authoritative
	return svc.repo.GetEngagementByID(ctx, id)
}

func (svc *service) CancelActiveBySubject(ctx context.Context, studentSubjectID int, exec ...core.DBExecutor) error {
	e, err := svc.repo.GetActiveEngagementBySubject(ctx, studentSubjectID, exec...)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	_, err = svc.repo.CancelEngagement(ctx, e.ID, exec...)
	return err
}

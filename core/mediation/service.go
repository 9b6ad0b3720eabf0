package mediation

import (
	"context"
	"errors"
	"time"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/engagement"
)

var (
	// errors
	ErrNotFound     = errors.New("student subject not found")
	ErrInvalidStage = errors.New("unknown mediation stage")

	// ErrNoStage is returned by repositories when a subject has no stage
	// records yet; the service maps it to the NotMediated sentinel.
	ErrNoStage = errors.New("no mediation stage recorded")
)

type (
	Repository interface {
		CreateStudentSubject(ctx context.Context, ss StudentSubject, exec ...core.DBExecutor) (StudentSubject, error)
		GetStudentSubjectByID(ctx context.Context, id int, exec ...core.DBExecutor) (StudentSubject, error)
		QueryStudentSubjectsByStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]StudentSubject, error)
		// BindEngagement sets (or clears, with nils) the resolved
		// engagement/contract references of a subject. Also satisfies
		// engagement.SubjectBinder.
		BindEngagement(ctx context.Context, studentSubjectID int, engagementID, contractID *int, exec ...core.DBExecutor) error
		// DeleteStudentSubject removes the subject and its stage history.
		DeleteStudentSubject(ctx context.Context, id int, exec ...core.DBExecutor) error
		CreateStage(ctx context.Context, st MediationStage, exec ...core.DBExecutor) (MediationStage, error)
		// LatestStage returns the most recently created stage record, or
		// ErrNoStage when none exists.
		LatestStage(ctx context.Context, studentSubjectID int, exec ...core.DBExecutor) (MediationStage, error)
		QueryStages(ctx context.Context, studentSubjectID int, exec ...core.DBExecutor) ([]MediationStage, error)
	}

	// EngagementService is the slice of the engagement service used here.
	EngagementService interface {
		GetByID(ctx context.Context, id int) (engagement.Engagement, error)
		CancelActiveBySubject(ctx context.Context, studentSubjectID int, exec ...core.DBExecutor) error
	}

	Service interface {
		CreateSubject(ctx context.Context, ns NewStudentSubject) (StudentSubject, error)
		GetSubject(ctx context.Context, id int) (StudentSubject, error)
		QueryByStudent(ctx context.Context, studentID int) ([]StudentSubject, error)
		// RecordStage always appends; prior records are never mutated.
		RecordStage(ctx context.Context, studentSubjectID int, stage StageType, actor string) (MediationStage, error)
		// CurrentStage returns the latest record, or the NotMediated
		// sentinel; the sentinel is a value, not an error.
		CurrentStage(ctx context.Context, studentSubjectID int) (MediationStage, error)
		StageHistory(ctx context.Context, studentSubjectID int) ([]MediationStage, error)
		// ResolveEngagement returns the subject's resolved engagement, or
		// nil; absence is not an error.
		ResolveEngagement(ctx context.Context, studentSubjectID int) (*engagement.Engagement, error)
		// DeleteSubject cancels any active engagement on the subject, then
		// removes the subject and its mediation history. Confirmation is a
		// caller-boundary concern, not a precondition here.
		DeleteSubject(ctx context.Context, studentSubjectID int) error
	}

	service struct {
		tx          core.Transactor
		repo        Repository
		engagements EngagementService
	}
)

var _ Service = (*service)(nil)

func NewService(tx core.Transactor, repo Repository, engagements EngagementService) Service {
	return &service{tx: tx, repo: repo, engagements: engagements}
}

func (svc *service) CreateSubject(ctx context.Context, ns NewStudentSubject) (StudentSubject, error) {
	ss := StudentSubject{
		StudentID: ns.StudentID,
		Subject:   ns.Subject,
		Detail:    ns.Detail,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateStudentSubject(ctx, ss)
}

func (svc *service) GetSubject(ctx context.Context, id int) (StudentSubject, error) {
	return svc.repo.GetStudentSubjectByID(ctx, id)
}

func (svc *service) QueryByStudent(ctx context.Context, studentID int) ([]StudentSubject, error) {
	return svc.repo.QueryStudentSubjectsByStudent(ctx, studentID)
}

func (svc *service) RecordStage(ctx context.Context, studentSubjectID int, stage StageType, actor string) (MediationStage, error) {
	if !stage.Valid() {
		return MediationStage{}, ErrInvalidStage
	}
	if _, err := svc.repo.GetStudentSubjectByID(ctx, studentSubjectID); err != nil {
		return MediationStage{}, err
	}
	st := MediationStage{
		StudentSubjectID: studentSubjectID,
		Type:             stage,
		Actor:            actor,
		CreatedAt:        time.Now().UTC(),
	}
	return svc.repo.CreateStage(ctx, st)
}

func (svc *service) CurrentStage(ctx context.Context, studentSubjectID int) (MediationStage, error) {
	if _, err := svc.repo.GetStudentSubjectByID(ctx, studentSubjectID); err != nil {
		return MediationStage{}, err
	}
	st, err := svc.repo.LatestStage(ctx, studentSubjectID)
	if err != nil {
		if errors.Is(err, ErrNoStage) {
			return NotMediated(studentSubjectID), nil
		}
		return MediationStage{}, err
	}
	return st, nil
}

func (svc *service) StageHistory(ctx context.Context, studentSubjectID int) ([]MediationStage, error) {
	if _, err := svc.repo.GetStudentSubjectByID(ctx, studentSubjectID); err != nil {
		return nil, err
	}
	return svc.repo.QueryStages(ctx, studentSubjectID)
}

func (svc *service) ResolveEngagement(ctx context.Context, studentSubjectID int) (*engagement.Engagement, error) {
	ss, err := svc.repo.GetStudentSubjectByID(ctx, studentSubjectID)
	if err != nil {
		return nil, err
	}
	if ss.EngagementID == nil {
		return nil, nil
	}
	e, err := svc.engagements.GetByID(ctx, *ss.EngagementID)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (svc *service) DeleteSubject(ctx context.Context, studentSubjectID int) error {
	if _, err := svc.repo.GetStudentSubjectByID(ctx, studentSubjectID); err != nil {
		return err
	}
	return svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		if err := svc.engagements.CancelActiveBySubject(ctx, studentSubjectID, exec); err != nil {
			return err
		}
		return svc.repo.DeleteStudentSubject(ctx, studentSubjectID, exec)
	})
}

package mediation_test

import (
	"context"
	"testing"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/engagement"
	"github.com/lernwerk/backoffice/core/mediation"
	dummydb "github.com/lernwerk/backoffice/storage/database/dummy"
	testutil "github.com/lernwerk/backoffice/tests"
)

type contractDirectoryStub struct{}

func (contractDirectoryStub) ContractActive(ctx context.Context, id int, exec ...core.DBExecutor) (bool, error) {
	return true, nil
}

type mediationFixture struct {
	svc            mediation.Service
	repo           mediation.Repository
	engagementRepo engagement.Repository
}

func setup(t *testing.T) *mediationFixture {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	tx := dummydb.NewTransactor()
	repo := dummydb.NewMediationRepository(db)
	engagementRepo := dummydb.NewEngagementRepository(db)

	engagementSvc := engagement.NewService(tx, engagementRepo, contractDirectoryStub{}, repo)
	svc := mediation.NewService(tx, repo, engagementSvc)
	return &mediationFixture{svc: svc, repo: repo, engagementRepo: engagementRepo}
}

func TestMediationService_CurrentStage_defaultsToNotMediated(t *testing.T) {
	f := setup(t)
	ss := testutil.CreateSubject(t, f.repo, 1, "Mathematik")

	st, err := f.svc.CurrentStage(context.Background(), ss.ID)
	if err != nil {
		t.Fatalf("CurrentStage() error = %v", err)
	}
	if st.Type != mediation.StageNotMediated {
		t.Errorf("Type = %s, want %s", st.Type, mediation.StageNotMediated)
	}
	if st.ID != 0 {
		t.Error("the sentinel must not look like a stored record")
	}
}

func TestMediationService_RecordStage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ss := testutil.CreateSubject(t, f.repo, 1, "Mathematik")

	progression := []mediation.StageType{
		mediation.StageTeacherSearch,
		mediation.StageTeacherProposed,
		mediation.StageOnHold,
		mediation.StageTeacherProposed, // stages may repeat
		mediation.StageTrialLesson,
		mediation.StageMediated,
	}
	for _, stage := range progression {
		if _, err := f.svc.RecordStage(ctx, ss.ID, stage, "admin"); err != nil {
			t.Fatalf("RecordStage(%s) error = %v", stage, err)
		}
	}

	// history is append-only and in order
	history, err := f.svc.StageHistory(ctx, ss.ID)
	if err != nil {
		t.Fatalf("StageHistory() error = %v", err)
	}
	if len(history) != len(progression) {
		t.Fatalf("recorded %d stages, want %d", len(history), len(progression))
	}
	for i, st := range history {
		if st.Type != progression[i] {
			t.Errorf("history[%d].Type = %s, want %s", i, st.Type, progression[i])
		}
	}

	current, err := f.svc.CurrentStage(ctx, ss.ID)
	if err != nil {
		t.Fatalf("CurrentStage() error = %v", err)
	}
	if current.Type != mediation.StageMediated {
		t.Errorf("current stage = %s, want %s", current.Type, mediation.StageMediated)
	}
}

func TestMediationService_RecordStage_failures(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ss := testutil.CreateSubject(t, f.repo, 1, "Mathematik")

	if _, err := f.svc.RecordStage(ctx, ss.ID, mediation.StageType("lol"), "admin"); err != mediation.ErrInvalidStage {
		t.Errorf("RecordStage(unknown) error = %v, wantErr %v", err, mediation.ErrInvalidStage)
	}
	// the sentinel is never stored
	if _, err := f.svc.RecordStage(ctx, ss.ID, mediation.StageNotMediated, "admin"); err != mediation.ErrInvalidStage {
		t.Errorf("RecordStage(not_mediated) error = %v, wantErr %v", err, mediation.ErrInvalidStage)
	}
	if _, err := f.svc.RecordStage(ctx, 999, mediation.StageTeacherSearch, "admin"); err != mediation.ErrNotFound {
		t.Errorf("RecordStage(unknown subject) error = %v, wantErr %v", err, mediation.ErrNotFound)
	}
}

func TestMediationService_ResolveEngagement(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ss := testutil.CreateSubject(t, f.repo, 1, "Mathematik")

	// unresolved subject yields nil, not an error
	e, err := f.svc.ResolveEngagement(ctx, ss.ID)
	if err != nil {
		t.Fatalf("ResolveEngagement() error = %v", err)
	}
	if e != nil {
		t.Errorf("ResolveEngagement() = %+v, want nil", e)
	}

	created := testutil.CreateEngagement(t, f.engagementRepo, 1, ss.ID, 7)
	if err = f.repo.BindEngagement(ctx, ss.ID, &created.ID, &created.ContractID); err != nil {
		t.Fatalf("BindEngagement() error = %v", err)
	}

	e, err = f.svc.ResolveEngagement(ctx, ss.ID)
	if err != nil {
		t.Fatalf("ResolveEngagement() error = %v", err)
	}
	if e == nil || e.ID != created.ID {
		t.Errorf("ResolveEngagement() = %+v, want engagement %d", e, created.ID)
	}
}

func TestMediationService_DeleteSubject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ss := testutil.CreateSubject(t, f.repo, 1, "Mathematik")

	if _, err := f.svc.RecordStage(ctx, ss.ID, mediation.StageTeacherSearch, "admin"); err != nil {
		t.Fatalf("RecordStage() error = %v", err)
	}
	e := testutil.CreateEngagement(t, f.engagementRepo, 1, ss.ID, 7)

	if err := f.svc.DeleteSubject(ctx, ss.ID); err != nil {
		t.Fatalf("DeleteSubject() error = %v", err)
	}

	// the subject and its history are gone, the engagement is cancelled
	if _, err := f.svc.GetSubject(ctx, ss.ID); err != mediation.ErrNotFound {
		t.Errorf("GetSubject() error = %v, wantErr %v", err, mediation.ErrNotFound)
	}
	e, err := f.engagementRepo.GetEngagementByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEngagementByID() error = %v", err)
	}
	if e.Status != engagement.StatusCancelled {
		t.Errorf("engagement status = %s, want %s", e.Status, engagement.StatusCancelled)
	}

	if err := f.svc.DeleteSubject(ctx, ss.ID); err != mediation.ErrNotFound {
		t.Errorf("second DeleteSubject() error = %v, wantErr %v", err, mediation.ErrNotFound)
	}
}

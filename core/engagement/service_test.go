package engagement_test

import (
	"context"
	"sync"
	"testing"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/engagement"
	"github.com/lernwerk/backoffice/core/mediation"
	dummydb "github.com/lernwerk/backoffice/storage/database/dummy"
	testutil "github.com/lernwerk/backoffice/tests"
)

// contractDirectoryStub stands in for the contract service; engagement
// creation only asks whether the contract is active.
type contractDirectoryStub struct {
	active map[int]bool
}

func (s contractDirectoryStub) ContractActive(ctx context.Context, id int, exec ...core.DBExecutor) (bool, error) {
	return s.active[id], nil
}

type engagementFixture struct {
	svc           engagement.Service
	repo          engagement.Repository
	mediationRepo mediation.Repository
}

func setup(t *testing.T, activeContracts ...int) *engagementFixture {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewEngagementRepository(db)
	mediationRepo := dummydb.NewMediationRepository(db)

	contracts := contractDirectoryStub{active: make(map[int]bool)}
	for _, id := range activeContracts {
		contracts.active[id] = true
	}

	svc := engagement.NewService(dummydb.NewTransactor(), repo, contracts, mediationRepo)
	return &engagementFixture{svc: svc, repo: repo, mediationRepo: mediationRepo}
}

func TestEngagementService_Create(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()
	ss := testutil.CreateSubject(t, f.mediationRepo, 1, "Mathematik")

	e, err := f.svc.Create(ctx, engagement.NewEngagement{
		ContractID:       1,
		StudentSubjectID: ss.ID,
		TeacherID:        7,
		TeacherRate:      18,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if e.Status != engagement.StatusActive {
		t.Errorf("Status = %s, want %s", e.Status, engagement.StatusActive)
	}

	// the subject now points back at its engagement and contract
	ss, err = f.mediationRepo.GetStudentSubjectByID(ctx, ss.ID)
	if err != nil {
		t.Fatalf("GetStudentSubjectByID() error = %v", err)
	}
	if ss.EngagementID == nil || *ss.EngagementID != e.ID {
		t.Errorf("subject EngagementID = %v, want %d", ss.EngagementID, e.ID)
	}
	if ss.ContractID == nil || *ss.ContractID != e.ContractID {
		t.Errorf("subject ContractID = %v, want %d", ss.ContractID, e.ContractID)
	}
}

func TestEngagementService_Create_requiresActiveContract(t *testing.T) {
	f := setup(t) // no active contracts
	ss := testutil.CreateSubject(t, f.mediationRepo, 1, "Mathematik")

	_, err := f.svc.Create(context.Background(), engagement.NewEngagement{
		ContractID:       1,
		StudentSubjectID: ss.ID,
		TeacherID:        7,
		TeacherRate:      18,
	})
	if err != engagement.ErrInvalidState {
		t.Errorf("Create() error = %v, wantErr %v", err, engagement.ErrInvalidState)
	}
}

func TestEngagementService_Create_secondActiveConflicts(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()
	ss := testutil.CreateSubject(t, f.mediationRepo, 1, "Mathematik")
	ne := engagement.NewEngagement{ContractID: 1, StudentSubjectID: ss.ID, TeacherID: 7, TeacherRate: 18}

	if _, err := f.svc.Create(ctx, ne); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	ne.TeacherID = 8
	if _, err := f.svc.Create(ctx, ne); err != engagement.ErrConflict {
		t.Errorf("second Create() error = %v, wantErr %v", err, engagement.ErrConflict)
	}

	// a cancelled engagement frees the subject up again
	e, err := f.repo.GetActiveEngagementBySubject(ctx, ss.ID)
	if err != nil {
		t.Fatalf("GetActiveEngagementBySubject() error = %v", err)
	}
	if _, err = f.svc.Cancel(ctx, e.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if _, err = f.svc.Create(ctx, ne); err != nil {
		t.Errorf("Create() after cancel error = %v", err)
	}
}

func TestEngagementService_Create_concurrent(t *testing.T) {
	f := setup(t, 1)
	ss := testutil.CreateSubject(t, f.mediationRepo, 1, "Mathematik")

	const writers = 8
	errs := make([]error, writers)
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Create(context.Background(), engagement.NewEngagement{
				ContractID:       1,
				StudentSubjectID: ss.ID,
				TeacherID:        100 + i,
				TeacherRate:      18,
			})
		}(i)
	}
	wg.Wait()

	var won, conflicted int
	for _, err := range errs {
		switch err {
		case nil:
			won++
		case engagement.ErrConflict:
			conflicted++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if won != 1 || conflicted != writers-1 {
		t.Errorf("won = %d, conflicted = %d; want exactly one winner", won, conflicted)
	}
}

func TestEngagementService_Cancel_idempotent(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()
	ss := testutil.CreateSubject(t, f.mediationRepo, 1, "Mathematik")
	e := testutil.CreateEngagement(t, f.repo, 1, ss.ID, 7)

	cancelled, err := f.svc.Cancel(ctx, e.ID)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if cancelled.Status != engagement.StatusCancelled {
		t.Errorf("Status = %s, want %s", cancelled.Status, engagement.StatusCancelled)
	}

	again, err := f.svc.Cancel(ctx, e.ID)
	if err != nil {
		t.Fatalf("second Cancel() error = %v", err)
	}
	if again.Status != engagement.StatusCancelled {
		t.Errorf("Status = %s, want %s", again.Status, engagement.StatusCancelled)
	}
}

func TestEngagementService_CancelActiveBySubject(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()
	ss := testutil.CreateSubject(t, f.mediationRepo, 1, "Mathematik")

	// no active engagement is not an error
	if err := f.svc.CancelActiveBySubject(ctx, ss.ID); err != nil {
		t.Fatalf("CancelActiveBySubject(no engagement) error = %v", err)
	}

	e := testutil.CreateEngagement(t, f.repo, 1, ss.ID, 7)
	if err := f.svc.CancelActiveBySubject(ctx, ss.ID); err != nil {
		t.Fatalf("CancelActiveBySubject() error = %v", err)
	}
	e, err := f.repo.GetEngagementByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEngagementByID() error = %v", err)
	}
	if e.Status != engagement.StatusCancelled {
		t.Errorf("Status = %s, want %s", e.Status, engagement.StatusCancelled)
	}
}

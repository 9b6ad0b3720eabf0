package student_test

import (
	"context"
	"testing"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/student"
	dummydb "github.com/lernwerk/backoffice/storage/database/dummy"
	testutil "github.com/lernwerk/backoffice/tests"
)

func setup(t *testing.T) (student.Service, student.Repository) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewStudentRepository(db)
	return student.NewService(dummydb.NewTransactor(), repo), repo
}

func TestStudentService_Create(t *testing.T) {
	svc, _ := setup(t)

	s, err := svc.Create(context.Background(), student.NewStudent{
		FirstName: "Mara",
		LastName:  "Schneider",
		Email:     "mara@test.test",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if s.Status != student.StatusLeads {
		t.Errorf("Status = %s, want %s", s.Status, student.StatusLeads)
	}
	if s.ID == 0 {
		t.Error("ID not assigned")
	}
}

func TestStudentService_SetStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    student.Status
		to      student.Status
		reason  string
		wantErr error
	}{
		{name: "funnel step", from: student.StatusLeads, to: student.StatusAppointmentCall},
		{name: "skip ahead", from: student.StatusLeads, to: student.StatusMediated},
		{name: "backwards", from: student.StatusMediated, to: student.StatusLeads},
		{name: "out of terminal", from: student.StatusContractedCustomers, to: student.StatusMediationOpen},
		{name: "out of suspended", from: student.StatusSuspended, to: student.StatusLeads},
		{name: "legacy code", from: student.StatusLeads, to: student.StatusAppl},
		{name: "suspend with reason", from: student.StatusLeads, to: student.StatusSuspended, reason: "unpaid invoices"},
		{name: "delete with reason", from: student.StatusLeads, to: student.StatusDeleted, reason: "requested by parent"},
		{name: "waiting list with reason", from: student.StatusMediationOpen, to: student.StatusWaitingList, reason: "no teacher available"},
		{name: "suspend without reason", from: student.StatusLeads, to: student.StatusSuspended, wantErr: &core.ValidationError{}},
		{name: "unplaceable without reason", from: student.StatusMediationOpen, to: student.StatusUnplaceable, wantErr: &core.ValidationError{}},
		{name: "followup without reason", from: student.StatusLeads, to: student.StatusFollowup, wantErr: &core.ValidationError{}},
		{name: "unknown status", from: student.StatusLeads, to: student.Status("lol"), wantErr: student.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := setup(t)
			s := testutil.CreateStudent(t, repo, "Mara", "Schneider", "mara@test.test", tt.from)

			updated, err := svc.SetStatus(context.Background(), s.ID, tt.to, "admin", tt.reason)

			if tt.wantErr != nil {
				if _, wantValidation := tt.wantErr.(*core.ValidationError); wantValidation {
					if _, ok := err.(*core.ValidationError); !ok {
						t.Errorf("SetStatus() error = %v, want *core.ValidationError", err)
					}
				} else if err != tt.wantErr {
					t.Errorf("SetStatus() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("SetStatus() error = %v", err)
			}
			if updated.Status != tt.to {
				t.Errorf("Status = %s, want %s", updated.Status, tt.to)
			}

			changes, err := svc.StatusHistory(context.Background(), s.ID)
			if err != nil {
				t.Fatalf("StatusHistory() error = %v", err)
			}
			if len(changes) != 1 {
				t.Fatalf("recorded %d status changes, want 1", len(changes))
			}
			chg := changes[0]
			if chg.FromStatus != tt.from || chg.ToStatus != tt.to || chg.Actor != "admin" || chg.Reason != tt.reason {
				t.Errorf("StatusChange = %+v", chg)
			}
		})
	}
}

func TestStudentService_ForceContracted(t *testing.T) {
	tests := []struct {
		name    string
		from    student.Status
		wantErr error
	}{
		{name: "from mediated", from: student.StatusMediated},
		{name: "from leads", from: student.StatusLeads},
		{name: "already contracted", from: student.StatusContractedCustomers},
		{name: "suspended blocks", from: student.StatusSuspended, wantErr: student.ErrInvalidState},
		{name: "deleted blocks", from: student.StatusDeleted, wantErr: student.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := setup(t)
			s := testutil.CreateStudent(t, repo, "Mara", "Schneider", "mara@test.test", tt.from)

			updated, err := svc.ForceContracted(context.Background(), s.ID, "admin")
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("ForceContracted() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ForceContracted() error = %v", err)
			}
			if updated.Status != student.StatusContractedCustomers {
				t.Errorf("Status = %s, want %s", updated.Status, student.StatusContractedCustomers)
			}

			// already-contracted is a no-op; everything else leaves one audit row
			changes, _ := svc.StatusHistory(context.Background(), s.ID)
			wantChanges := 1
			if tt.from == student.StatusContractedCustomers {
				wantChanges = 0
			}
			if len(changes) != wantChanges {
				t.Errorf("recorded %d status changes, want %d", len(changes), wantChanges)
			}
		})
	}
}

func TestStatusSuggestedNext(t *testing.T) {
	if next, ok := student.SuggestedNext(student.StatusLeads); !ok || next != student.StatusAppointmentCall {
		t.Errorf("SuggestedNext(leads) = %s, %t", next, ok)
	}
	if _, ok := student.SuggestedNext(student.StatusContractedCustomers); ok {
		t.Error("terminal status must not suggest a next step")
	}
	if _, ok := student.SuggestedNext(student.StatusEng); ok {
		t.Error("legacy eng status has no defined next step")
	}
}

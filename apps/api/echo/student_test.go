package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lernwerk/backoffice/core/student"
	testutil "github.com/lernwerk/backoffice/tests"
)

func Test_studentApi_create(t *testing.T) {
	f := setupAPI(t)
	token := getToken(t, "anna", false)

	tests := []struct {
		name     string
		body     interface{}
		token    string
		wantCode int
	}{
		{
			name:     "no auth",
			body:     student.NewStudent{FirstName: "Mara", LastName: "Schneider", Email: "mara@test.test"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "ok",
			body:     student.NewStudent{FirstName: "Mara", LastName: "Schneider", Email: "mara@test.test"},
			token:    token,
			wantCode: http.StatusCreated,
		},
		{
			name:     "missing fields",
			body:     student.NewStudent{FirstName: "Mara"},
			token:    token,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad email",
			body:     student.NewStudent{FirstName: "Mara", LastName: "Schneider", Email: "nope"},
			token:    token,
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/v1/students", tt.token, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			if tt.wantCode == http.StatusCreated {
				var s student.Student
				decodeBody(t, rec, &s)
				assert.Equal(t, student.StatusLeads, s.Status)
				assert.NotZero(t, s.ID)
			}
		})
	}
}

func Test_studentApi_retrieve(t *testing.T) {
	f := setupAPI(t)
	token := getToken(t, "anna", false)
	s := testutil.CreateStudent(t, f.studentRepo, "Mara", "Schneider", "mara@test.test", student.StatusLeads)

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/v1/students/%d", s.ID), token)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got student.Student
	decodeBody(t, rec, &got)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, "Mara", got.FirstName)

	rec = f.do(t, http.MethodGet, "/v1/students/999", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/students/lol", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_studentApi_setStatus(t *testing.T) {
	f := setupAPI(t)
	token := getToken(t, "anna", false)

	tests := []struct {
		name     string
		from     student.Status
		body     student.StatusChangeRequest
		wantCode int
	}{
		{
			name:     "funnel step",
			from:     student.StatusLeads,
			body:     student.StatusChangeRequest{Status: student.StatusAppointmentCall},
			wantCode: http.StatusOK,
		},
		{
			name:     "any transition goes",
			from:     student.StatusContractedCustomers,
			body:     student.StatusChangeRequest{Status: student.StatusLeads},
			wantCode: http.StatusOK,
		},
		{
			name:     "suspend needs reason",
			from:     student.StatusLeads,
			body:     student.StatusChangeRequest{Status: student.StatusSuspended},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "suspend with reason",
			from:     student.StatusLeads,
			body:     student.StatusChangeRequest{Status: student.StatusSuspended, Reason: "unpaid invoices"},
			wantCode: http.StatusOK,
		},
		{
			name:     "unknown status",
			from:     student.StatusLeads,
			body:     student.StatusChangeRequest{Status: student.Status("lol")},
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testutil.CreateStudent(t, f.studentRepo, "Mara", "Schneider", "mara@test.test", tt.from)

			rec := f.do(t, http.MethodPut, fmt.Sprintf("/v1/students/%d/status", s.ID), token, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			if tt.wantCode == http.StatusOK {
				var got student.Student
				decodeBody(t, rec, &got)
				assert.Equal(t, tt.body.Status, got.Status)

				// the audit row carries the actor from the token
				changes, err := f.studentSvc.StatusHistory(context.Background(), s.ID)
				assert.NoError(t, err)
				if assert.Len(t, changes, 1) {
					assert.Equal(t, "anna", changes[0].Actor)
					assert.Equal(t, tt.from, changes[0].FromStatus)
				}
			}
		})
	}
}

func Test_studentApi_suggestedStatus(t *testing.T) {
	f := setupAPI(t)
	token := getToken(t, "anna", false)

	s := testutil.CreateStudent(t, f.studentRepo, "Mara", "Schneider", "mara@test.test", student.StatusLeads)
	rec := f.do(t, http.MethodGet, fmt.Sprintf("/v1/students/%d/suggested-status", s.ID), token)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got map[string]student.Status
	decodeBody(t, rec, &got)
	assert.Equal(t, student.StatusAppointmentCall, got["suggested_status"])

	// terminal statuses have no suggestion
	s = testutil.CreateStudent(t, f.studentRepo, "Timo", "Brandt", "timo@test.test", student.StatusContractedCustomers)
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/v1/students/%d/suggested-status", s.ID), token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_studentApi_statusHistory(t *testing.T) {
	f := setupAPI(t)
	token := getToken(t, "anna", false)
	s := testutil.CreateStudent(t, f.studentRepo, "Mara", "Schneider", "mara@test.test", student.StatusLeads)

	for _, status := range []student.Status{student.StatusAppointmentCall, student.StatusMediationOpen} {
		rec := f.do(t, http.MethodPut, fmt.Sprintf("/v1/students/%d/status", s.ID), token,
			student.StatusChangeRequest{Status: status})
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/v1/students/%d/status-history", s.ID), token)
	assert.Equal(t, http.StatusOK, rec.Code)

	var changes []student.StatusChange
	decodeBody(t, rec, &changes)
	if assert.Len(t, changes, 2) {
		assert.Equal(t, student.StatusAppointmentCall, changes[0].ToStatus)
		assert.Equal(t, student.StatusMediationOpen, changes[1].ToStatus)
	}
}

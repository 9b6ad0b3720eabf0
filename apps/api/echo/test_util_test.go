package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/lernwerk/backoffice/core/contract"
	"github.com/lernwerk/backoffice/core/engagement"
	"github.com/lernwerk/backoffice/core/mediation"
	"github.com/lernwerk/backoffice/core/student"
	emailsvc "github.com/lernwerk/backoffice/services/email"
	dummydb "github.com/lernwerk/backoffice/storage/database/dummy"
	testutil "github.com/lernwerk/backoffice/tests"
)

type httpErr struct {
	Error string `json:"error"`
}

type apiFixture struct {
	server Server

	studentRepo    student.Repository
	contractRepo   contract.Repository
	engagementRepo engagement.Repository
	mediationRepo  mediation.Repository

	studentSvc  student.Service
	contractSvc contract.Service
}

func setupAPI(t *testing.T) *apiFixture {
	t.Helper()
	emailsvc.ClearSentMessages()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	tx := dummydb.NewTransactor()
	studentRepo := dummydb.NewStudentRepository(db)
	contractRepo := dummydb.NewContractRepository(db)
	engagementRepo := dummydb.NewEngagementRepository(db)
	mediationRepo := dummydb.NewMediationRepository(db)

	studentSvc := student.NewService(tx, studentRepo)
	contractSvc := contract.NewService(tx, contractRepo, studentSvc, engagementRepo,
		emailsvc.NewConsoleServiceMock(), testutil.NopLogger{})
	engagementSvc := engagement.NewService(tx, engagementRepo, contractSvc, mediationRepo)
	mediationSvc := mediation.NewService(tx, mediationRepo, engagementSvc)

	server := NewServer(&Options{
		DisableReqLogs: true,
		StudentSvc:     studentSvc,
		MediationSvc:   mediationSvc,
		ContractSvc:    contractSvc,
		EngagementSvc:  engagementSvc,
		Logger:         testutil.NopLogger{},
	})

	return &apiFixture{
		server:         server,
		studentRepo:    studentRepo,
		contractRepo:   contractRepo,
		engagementRepo: engagementRepo,
		mediationRepo:  mediationRepo,
		studentSvc:     studentSvc,
		contractSvc:    contractSvc,
	}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, data ...interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if len(data) > 0 {
		if err := json.NewEncoder(&body).Encode(data[0]); err != nil {
			t.Fatalf("encoding request body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, username string, admin bool) string {
	t.Helper()
	token, err := GenerateToken(GetStaffClaims(username, admin))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q failed: %v", rec.Body.String(), err)
	}
}

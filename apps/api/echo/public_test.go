package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lernwerk/backoffice/core/contract"
	"github.com/lernwerk/backoffice/core/student"
	testutil "github.com/lernwerk/backoffice/tests"
)

func pendingContract(t *testing.T, f *apiFixture, mode contract.PaymentMode) (contract.Contract, string) {
	t.Helper()
	s := testutil.CreateStudent(t, f.studentRepo, "Mara", "Schneider", "mara@test.test", student.StatusMediated)
	c := testutil.CreateContract(t, f.contractRepo, s.ID, contract.StatusPendingSignature, contract.PaymentTerms{Mode: mode})
	token, err := contract.EncodeID(c.ID)
	if err != nil {
		t.Fatalf("EncodeID() failed: %v", err)
	}
	return c, token
}

func Test_publicApi_view(t *testing.T) {
	f := setupAPI(t)
	c, token := pendingContract(t, f, contract.ModeInvoice)

	rec := f.do(t, http.MethodGet, "/v1/public/contracts/"+token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var view publicContractView
	decodeBody(t, rec, &view)
	assert.Equal(t, c.ID, view.ID)
	// invoice contracts show the agency's remittance details
	if assert.NotNil(t, view.Remittance) {
		assert.NotEmpty(t, view.Remittance.IBAN)
	}
}

func Test_publicApi_view_notAvailable(t *testing.T) {
	f := setupAPI(t)
	_, token := pendingContract(t, f, contract.ModeInvoice)

	// cancel it; the public link goes dark
	_, err := f.contractRepo.CancelContract(context.Background(), 1)
	assert.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage token": "lol",
		"unknown id":    mustEncodeID(t, 999),
		"cancelled":     token,
	} {
		t.Run(name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, "/v1/public/contracts/"+tok, "")
			assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
		})
	}
}

func Test_publicApi_sign(t *testing.T) {
	f := setupAPI(t)
	c, token := pendingContract(t, f, contract.ModeDirectDebit)

	payload := contract.SignContract{
		Signature:     "data:image/png;base64,iVBOR...",
		BankInstitute: "Sparkasse",
		IBAN:          "de02 1203 0000 0000 2020 51",
	}
	rec := f.do(t, http.MethodPost, "/v1/public/contracts/"+token+"/sign", "", payload)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var view publicContractView
	decodeBody(t, rec, &view)
	assert.Equal(t, contract.StatusActive, view.Status)
	assert.False(t, view.SignedAt.IsZero())

	// the student was pulled into contracted_customers
	s, err := f.studentSvc.GetByID(context.Background(), c.StudentID)
	assert.NoError(t, err)
	assert.Equal(t, student.StatusContractedCustomers, s.Status)

	// a second sign attempt conflicts
	rec = f.do(t, http.MethodPost, "/v1/public/contracts/"+token+"/sign", "", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func Test_publicApi_sign_failures(t *testing.T) {
	f := setupAPI(t)
	_, token := pendingContract(t, f, contract.ModeDirectDebit)

	tests := []struct {
		name     string
		token    string
		payload  contract.SignContract
		wantCode int
	}{
		{
			name:     "garbage token",
			token:    "lol",
			payload:  contract.SignContract{Signature: "x"},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "missing signature",
			token:    token,
			payload:  contract.SignContract{BankInstitute: "Sparkasse", IBAN: "DE02120300000000202051"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad iban",
			token:    token,
			payload:  contract.SignContract{Signature: "x", BankInstitute: "Sparkasse", IBAN: "DE123"},
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/v1/public/contracts/"+tt.token+"/sign", "", tt.payload)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func Test_contractApi_cancelRequiresAdmin(t *testing.T) {
	f := setupAPI(t)
	c, _ := pendingContract(t, f, contract.ModeInvoice)
	path := fmt.Sprintf("/v1/contracts/%d/cancel", c.ID)

	rec := f.do(t, http.MethodPost, path, getToken(t, "anna", false))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, path, getToken(t, "boss", true))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got contract.Contract
	decodeBody(t, rec, &got)
	assert.Equal(t, contract.StatusCancelled, got.Status)
}

func mustEncodeID(t *testing.T, id int) string {
	t.Helper()
	token, err := contract.EncodeID(id)
	if err != nil {
		t.Fatalf("EncodeID() failed: %v", err)
	}
	return token
}

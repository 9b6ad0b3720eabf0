package contract

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lernwerk/backoffice/core"
)

// Status is the lifecycle state of a Contract.
// PendingSignature -> Active -> Cancelled, with a fast path to Active when
// the signature requirement is bypassed at creation.
type Status string

const (
	StatusPendingSignature Status = "pending_signature"
	StatusActive           Status = "active"
	StatusCancelled        Status = "cancelled"
)

// PaymentMode selects the payment instrument of a Contract.
type PaymentMode string

const (
	ModeDirectDebit PaymentMode = "direct_debit"
	ModeInvoice     PaymentMode = "invoice"
)

// DirectDebit carries the SEPA direct-debit fields of a contract.
type DirectDebit struct {
	BankInstitute string `json:"bank_institute"`
	IBAN          string `json:"iban"`
	AccountHolder string `json:"account_holder"`
}

// PaymentTerms is a tagged variant: DirectDebit is set if and only if
// Mode == ModeDirectDebit and the bank details have been collected.
// Invoice-mode contracts carry nothing from the counterparty; the agency's
// own remittance details are static reference data (core.Conf.Agency).
type PaymentTerms struct {
	Mode        PaymentMode  `json:"mode"`
	DirectDebit *DirectDebit `json:"direct_debit,omitempty"`
}

// Contract is a tutoring agreement for a Student. Contracts are destroyed
// only logically (status -> cancelled); rows are never deleted so the
// financial audit trail stays intact.
type Contract struct {
	ID                 int          `json:"id"`
	StudentID          int          `json:"student_id"`
	Status             Status       `json:"status"`
	StartDate          time.Time    `json:"start_date"`
	EndDate            time.Time    `json:"end_date"`
	DurationMonths     int          `json:"duration_months"`
	MinLessonsPerMonth int          `json:"min_lessons_per_month"`
	LessonDurationMins int          `json:"lesson_duration_mins"`
	RatePerLesson      float64      `json:"rate_per_lesson"`
	RegistrationFee    float64      `json:"registration_fee"`
	Payment            PaymentTerms `json:"payment"`
	Signature          string       `json:"-"`          // image payload (data URL)
	SignedAt           time.Time    `json:"signed_at"`  // UTC; zero until signed
	BypassSignature    bool         `json:"bypass_signature"`
	CreatedAt          time.Time    `json:"created_at"` // UTC
	UpdatedAt          time.Time    `json:"updated_at"` // UTC
}

func (c Contract) Signed() bool { return !c.SignedAt.IsZero() }

// NewContract contains the terms needed to create a new Contract.
// For direct-debit contracts the bank fields may be left empty unless the
// signature is bypassed: the counterparty supplies them at signing.
type NewContract struct {
	StudentID          int       `json:"student_id" validate:"required,gt=0"`
	StartDate          time.Time `json:"start_date" validate:"required"`
	EndDate            time.Time `json:"end_date" validate:"required"`
	DurationMonths     int       `json:"duration_months" validate:"required,gte=1"`
	MinLessonsPerMonth int       `json:"min_lessons_per_month" validate:"required,gte=1"`
	LessonDurationMins int       `json:"lesson_duration_mins" validate:"required,gte=30"`
	RatePerLesson      float64   `json:"rate_per_lesson" validate:"required,gt=0"`
	RegistrationFee    float64   `json:"registration_fee" validate:"gte=0"`
	PaymentMode        string    `json:"payment_mode" validate:"required,oneof=direct_debit invoice"`
	BankInstitute      string    `json:"bank_institute"`
	IBAN               string    `json:"iban" validate:"omitempty,iban22"`
	AccountHolder      string    `json:"account_holder"`
	BypassSignature    bool      `json:"bypass_signature"`
}

func (nc *NewContract) Validate(validate *validator.Validate) error {
	nc.BankInstitute = core.CleanString(nc.BankInstitute)
	nc.IBAN = NormalizeIBAN(nc.IBAN)
	nc.AccountHolder = core.CleanString(nc.AccountHolder)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	if !nc.EndDate.After(nc.StartDate) {
		return core.NewValidationError(errInvalidTerms,
			core.FieldError{Field: "end_date", Error: "end date must be after start date"})
	}
	return nil
}

// SignContract is the payload submitted by the external signer via the
// public signing link.
type SignContract struct {
	Signature     string `json:"signature"`
	BankInstitute string `json:"bank_institute"`
	IBAN          string `json:"iban"`
	AccountHolder string `json:"account_holder"`
}

// UpdateMinimumLessons is the admin payload for a contract amendment.
type UpdateMinimumLessons struct {
	MinLessonsPerMonth int `json:"min_lessons_per_month" validate:"required,gte=1"`
}

func (u UpdateMinimumLessons) Validate(validate *validator.Validate) error {
	return validate.Struct(u)
}

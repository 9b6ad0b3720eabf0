package contract

import (
	"errors"
	"regexp"
	"strings"

	"github.com/lernwerk/backoffice/core"
)

var (
	// ErrInvalidPaymentInstrument wraps every field-level payment validation
	// failure; the offending field is named in the attached FieldError.
	ErrInvalidPaymentInstrument = errors.New("invalid payment instrument")

	errInvalidTerms = errors.New("invalid contract terms")

	// exactly 22 uppercase alphanumeric characters after normalization;
	// a hard format rule of the agency's country context, not a soft check
	ibanRegex  = regexp.MustCompile(`^[A-Z0-9]{22}$`)
	spaceRegex = regexp.MustCompile(`\s+`)
)

// NormalizeIBAN strips all whitespace and uppercases.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(spaceRegex.ReplaceAllString(iban, ""))
}

func paymentFieldError(field, text string) error {
	return core.NewValidationError(ErrInvalidPaymentInstrument, core.FieldError{Field: field, Error: text})
}

// ValidatePaymentTerms enforces the field rules of a payment mode and
// returns the validated, normalized terms. Pure function, no I/O.
//
// Direct debit: non-empty bank institute, 22-char alphanumeric IBAN and a
// present account holder (the caller defaults it from the student record).
// Invoice: nothing is required from the counterparty.
func ValidatePaymentTerms(mode PaymentMode, bankInstitute, iban, accountHolder string) (PaymentTerms, error) {
	switch mode {
	case ModeInvoice:
		return PaymentTerms{Mode: ModeInvoice}, nil

	case ModeDirectDebit:
		bankInstitute = core.CleanString(bankInstitute)
		accountHolder = core.CleanString(accountHolder)
		iban = NormalizeIBAN(iban)

		if bankInstitute == "" {
			return PaymentTerms{}, paymentFieldError("bank_institute", "bank institute is required for direct debit")
		}
		if !ibanRegex.MatchString(iban) {
			return PaymentTerms{}, paymentFieldError("iban", "IBAN must be exactly 22 characters, letters and digits only")
		}
		if accountHolder == "" {
			return PaymentTerms{}, paymentFieldError("account_holder", "account holder is required for direct debit")
		}
		return PaymentTerms{
			Mode: ModeDirectDebit,
			DirectDebit: &DirectDebit{
				BankInstitute: bankInstitute,
				IBAN:          iban,
				AccountHolder: accountHolder,
			},
		}, nil

	default:
		return PaymentTerms{}, paymentFieldError("payment_mode", "unknown payment mode")
	}
}

package contract

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/student"
)

var (
	// errors
	ErrNotFound         = errors.New("contract not found")
	ErrInvalidState     = errors.New("operation not allowed in the contract's current state")
	ErrMissingSignature = errors.New("a signature is required")
)

// actor recorded on the forced student transition fired by the public
// signing callback; the signer is not a staff member.
const signActor = "external-signer"

type (
	Repository interface {
		CreateContract(ctx context.Context, c Contract, exec ...core.DBExecutor) (Contract, error)
		GetContractByID(ctx context.Context, id int, exec ...core.DBExecutor) (Contract, error)
		QueryContractsByStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]Contract, error)
		// ActivateContract writes signature, payment fields, signedAt and
		// flips the status to active, conditional on the row still being in
		// pending_signature. Returns the number of rows written (0 on a
		// stale state).
		ActivateContract(ctx context.Context, c Contract, exec ...core.DBExecutor) (int64, error)
		// CancelContract flips the status to cancelled, conditional on the
		// row being in pending_signature or active.
		CancelContract(ctx context.Context, id int, exec ...core.DBExecutor) (int64, error)
		// UpdateMinimumLessons is conditional on the row being active.
		UpdateMinimumLessons(ctx context.Context, id, lessons int, exec ...core.DBExecutor) (int64, error)
	}

	// StudentDirectory is the slice of the student service used here.
	StudentDirectory interface {
		GetByID(ctx context.Context, id int) (student.Student, error)
		ForceContracted(ctx context.Context, id int, actor string, exec ...core.DBExecutor) (student.Student, error)
	}

	// EngagementCanceller cascades a contract cancellation onto the
	// engagements under it, inside the caller's transaction.
	EngagementCanceller interface {
		CancelEngagementsByContract(ctx context.Context, contractID int, exec ...core.DBExecutor) (int64, error)
	}

	Service interface {
		Create(ctx context.Context, nc NewContract, actor string) (Contract, error)
		GetByID(ctx context.Context, id int) (Contract, error)
		GetByToken(ctx context.Context, token string) (Contract, error)
		QueryByStudent(ctx context.Context, studentID int) ([]Contract, error)
		ResendSigningLink(ctx context.Context, id int) error
		Sign(ctx context.Context, token string, data SignContract) (Contract, error)
		UpdateMinLessons(ctx context.Context, id, lessons int) (Contract, error)
		Cancel(ctx context.Context, id int) (Contract, error)
		// ContractActive reports whether the contract exists and is active;
		// used by the engagement service as its creation gate.
		ContractActive(ctx context.Context, id int, exec ...core.DBExecutor) (bool, error)
	}

	service struct {
		tx          core.Transactor
		repo        Repository
		students    StudentDirectory
		engagements EngagementCanceller
		mailSvc     core.EmailService
		logger      core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	tx core.Transactor,
	repo Repository,
	students StudentDirectory,
	engagements EngagementCanceller,
	mailSvc core.EmailService,
	logger core.Logger,
) Service {
	return &service{
		tx:          tx,
		repo:        repo,
		students:    students,
		engagements: engagements,
		mailSvc:     mailSvc,
		logger:      logger,
	}
}

func (svc *service) Create(ctx context.Context, nc NewContract, actor string) (Contract, error) {
	s, err := svc.students.GetByID(ctx, nc.StudentID)
	if err != nil {
		return Contract{}, err
	}

	terms, err := svc.buildPaymentTerms(nc, s)
	if err != nil {
		return Contract{}, err
	}

	now := time.Now().UTC()
	c := Contract{
		StudentID:          nc.StudentID,
		Status:             StatusPendingSignature,
		StartDate:          nc.StartDate,
		EndDate:            nc.EndDate,
		DurationMonths:     nc.DurationMonths,
		MinLessonsPerMonth: nc.MinLessonsPerMonth,
		LessonDurationMins: nc.LessonDurationMins,
		RatePerLesson:      nc.RatePerLesson,
		RegistrationFee:    nc.RegistrationFee,
		Payment:            terms,
		BypassSignature:    nc.BypassSignature,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if nc.BypassSignature {
		// fast path: active immediately, no signature requirement
		c.Status = StatusActive
		c.SignedAt = now
		err = svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
			c, err = svc.repo.CreateContract(ctx, c, exec)
			if err != nil {
				return err
			}
			_, err = svc.students.ForceContracted(ctx, c.StudentID, actor, exec)
			return err
		})
		if err != nil {
			return Contract{}, err
		}
		svc.sendActivatedMail(c, s)
		return c, nil
	}

	if c, err = svc.repo.CreateContract(ctx, c); err != nil {
		return Contract{}, err
	}
	svc.sendSigningRequestMail(c, s)
	return c, nil
}

func (svc *service) GetByID(ctx context.Context, id int) (Contract, error) {
	return svc.repo.GetContractByID(ctx, id)
}

// GetByToken resolves a public link. The decoded identifier is the sole
// authorization; nothing beyond this one contract is reachable through it.
func (svc *service) GetByToken(ctx context.Context, token string) (Contract, error) {
	id, err := DecodeID(token)
	if err != nil {
		return Contract{}, err
	}
	return svc.repo.GetContractByID(ctx, id)
}

func (svc *service) QueryByStudent(ctx context.Context, studentID int) ([]Contract, error) {
	return svc.repo.QueryContractsByStudent(ctx, studentID)
}

func (svc *service) ResendSigningLink(ctx context.Context, id int) error {
	c, err := svc.repo.GetContractByID(ctx, id)
	if err != nil {
		return err
	}
	if c.Status != StatusPendingSignature {
		return ErrInvalidState
	}
	s, err := svc.students.GetByID(ctx, c.StudentID)
	if err != nil {
		return err
	}
	svc.sendSigningRequestMail(c, s)
	return nil
}

func (svc *service) Sign(ctx context.Context, token string, data SignContract) (Contract, error) {
	id, err := DecodeID(token)
	if err != nil {
		return Contract{}, err
	}
	c, err := svc.repo.GetContractByID(ctx, id)
	if err != nil {
		return Contract{}, err
	}
	if c.Status != StatusPendingSignature {
		return Contract{}, ErrInvalidState
	}
	if core.CleanString(data.Signature) == "" {
		return Contract{}, ErrMissingSignature
	}

	s, err := svc.students.GetByID(ctx, c.StudentID)
	if err != nil {
		return Contract{}, err
	}

	if c.Payment.Mode == ModeDirectDebit {
		// fields supplied by the signer win over fields captured at creation
		inst, iban, holder := data.BankInstitute, data.IBAN, data.AccountHolder
		if dd := c.Payment.DirectDebit; dd != nil {
			inst = firstNonEmpty(inst, dd.BankInstitute)
			iban = firstNonEmpty(iban, dd.IBAN)
			holder = firstNonEmpty(holder, dd.AccountHolder)
		}
		holder = firstNonEmpty(holder, s.FullName())
		if c.Payment, err = ValidatePaymentTerms(ModeDirectDebit, inst, iban, holder); err != nil {
			return Contract{}, err
		}
	}

	c.Signature = data.Signature
	c.SignedAt = time.Now().UTC()
	c.Status = StatusActive

	err = svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		rows, err := svc.repo.ActivateContract(ctx, c, exec)
		if err != nil {
			return err
		}
		if rows == 0 { // lost the race to a concurrent sign or cancel
			return ErrInvalidState
		}
		_, err = svc.students.ForceContracted(ctx, c.StudentID, signActor, exec)
		return err
	})
	if err != nil {
		return Contract{}, err
	}

	svc.sendActivatedMail(c, s)
	return c, nil
}

func (svc *service) UpdateMinLessons(ctx context.Context, id, lessons int) (Contract, error) {
	if lessons < 1 {
		return Contract{}, core.NewValidationError(errInvalidTerms,
			core.FieldError{Field: "min_lessons_per_month", Error: "must be at least 1"})
	}
	rows, err := svc.repo.UpdateMinimumLessons(ctx, id, lessons)
	if err != nil {
		return Contract{}, err
	}
	if rows == 0 {
		if _, err = svc.repo.GetContractByID(ctx, id); err != nil {
			return Contract{}, err
		}
		return Contract{}, ErrInvalidState
	}
	return svc.repo.GetContractByID(ctx, id)
}

// Cancel is idempotent: cancelling an already-cancelled contract is a no-op.
func (svc *service) Cancel(ctx context.Context, id int) (Contract, error) {
	c, err := svc.repo.GetContractByID(ctx, id)
	if err != nil {
		return Contract{}, err
	}
	if c.Status == StatusCancelled {
		return c, nil
	}

	err = svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		rows, err := svc.repo.CancelContract(ctx, c.ID, exec)
		if err != nil {
			return err
		}
		if rows == 0 {
			// raced with another cancel; the re-read below settles it
			return nil
		}
		_, err = svc.engagements.CancelEngagementsByContract(ctx, c.ID, exec)
		return err
	})
	if err != nil {
		return Contract{}, err
	}
	return svc.repo.GetContractByID(ctx, id)
}

func (svc *service) ContractActive(ctx context.Context, id int, exec ...core.DBExecutor) (bool, error) {
	c, err := svc.repo.GetContractByID(ctx, id, exec...)
	if err != nil {
		return false, err
	}
	return c.Status == StatusActive, nil
}

// buildPaymentTerms validates the payment fields of a new contract. For a
// direct-debit contract that still awaits its signature, empty bank fields
// are allowed: the counterparty supplies them at signing.
func (svc *service) buildPaymentTerms(nc NewContract, s student.Student) (PaymentTerms, error) {
	mode := PaymentMode(nc.PaymentMode)
	if mode == ModeDirectDebit && !nc.BypassSignature &&
		nc.BankInstitute == "" && nc.IBAN == "" && nc.AccountHolder == "" {
		return PaymentTerms{Mode: ModeDirectDebit}, nil
	}
	return ValidatePaymentTerms(mode, nc.BankInstitute, nc.IBAN, firstNonEmpty(nc.AccountHolder, s.FullName()))
}

func (svc *service) sendSigningRequestMail(c Contract, s student.Student) {
	token, err := EncodeID(c.ID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("encoding signing link for contract %d: %v", c.ID, err), err)
		return
	}
	ev := ContractSigningRequested{
		EventID:      uuid.New(),
		ContractID:   c.ID,
		StudentEmail: s.Email,
		Link:         fmt.Sprintf("%s/sign/%s", core.Conf.FrontendBaseURL, token),
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: s.FullName(), Address: s.Email}},
		Subject: "Your tutoring contract is ready to sign",
		BodyStr: fmt.Sprintf(
			"Hello %s,\n\nyour tutoring contract is ready. Please review and sign it here:\n\n%s\n",
			s.FullName(), ev.Link,
		),
		TemplateData: ev,
	})
}

func (svc *service) sendActivatedMail(c Contract, s student.Student) {
	ev := ContractActivated{
		EventID:     uuid.New(),
		ContractID:  c.ID,
		StudentName: s.FullName(),
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: s.FullName(), Address: s.Email}},
		Subject: "Your tutoring contract is active",
		BodyStr: fmt.Sprintf(
			"Hello %s,\n\nyour tutoring contract is now active. We will be in touch to schedule the first lessons.\n",
			s.FullName(),
		),
		TemplateData: ev,
	})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = core.CleanString(v); v != "" {
			return v
		}
	}
	return ""
}

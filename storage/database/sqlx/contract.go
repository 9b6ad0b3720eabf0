package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/contract"
)

type contractRepository struct {
	db *sqlx.DB
}

var _ contract.Repository = (*contractRepository)(nil) // interface compliance check

func NewContractRepository(db *sqlx.DB) contract.Repository {
	return &contractRepository{db: db}
}

type contractRow struct {
	ID                 int         `db:"id"`
	StudentID          int         `db:"student_id"`
	Status             string      `db:"status"`
	StartDate          time.Time   `db:"start_date"`
	EndDate            time.Time   `db:"end_date"`
	DurationMonths     int         `db:"duration_months"`
	MinLessonsPerMonth int         `db:"min_lessons_per_month"`
	LessonDurationMins int         `db:"lesson_duration_mins"`
	RatePerLesson      float64     `db:"rate_per_lesson"`
	RegistrationFee    float64     `db:"registration_fee"`
	PaymentMode        string      `db:"payment_mode"`
	BankInstitute      null.String `db:"bank_institute"`
	IBAN               null.String `db:"iban"`
	AccountHolder      null.String `db:"account_holder"`
	Signature          null.String `db:"signature"`
	SignedAt           null.Time   `db:"signed_at"`
	BypassSignature    bool        `db:"bypass_signature"`
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
}

func (r contractRow) toModel() contract.Contract {
	c := contract.Contract{
		ID:                 r.ID,
		StudentID:          r.StudentID,
		Status:             contract.Status(r.Status),
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		DurationMonths:     r.DurationMonths,
		MinLessonsPerMonth: r.MinLessonsPerMonth,
		LessonDurationMins: r.LessonDurationMins,
		RatePerLesson:      r.RatePerLesson,
		RegistrationFee:    r.RegistrationFee,
		Payment:            contract.PaymentTerms{Mode: contract.PaymentMode(r.PaymentMode)},
		Signature:          r.Signature.String,
		SignedAt:           r.SignedAt.Time,
		BypassSignature:    r.BypassSignature,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if c.Payment.Mode == contract.ModeDirectDebit && r.IBAN.Valid {
		c.Payment.DirectDebit = &contract.DirectDebit{
			BankInstitute: r.BankInstitute.String,
			IBAN:          r.IBAN.String,
			AccountHolder: r.AccountHolder.String,
		}
	}
	return c
}

func bankFields(c contract.Contract) (null.String, null.String, null.String) {
	if dd := c.Payment.DirectDebit; dd != nil {
		return null.StringFrom(dd.BankInstitute), null.StringFrom(dd.IBAN), null.StringFrom(dd.AccountHolder)
	}
	return null.String{}, null.String{}, null.String{}
}

const contractColumns = `id, student_id, status, start_date, end_date, duration_months, min_lessons_per_month,
	lesson_duration_mins, rate_per_lesson, registration_fee, payment_mode, bank_institute, iban,
	account_holder, signature, signed_at, bypass_signature, created_at, updated_at`

func (repo contractRepository) CreateContract(ctx context.Context, c contract.Contract, exec ...core.DBExecutor) (contract.Contract, error) {
	inst, iban, holder := bankFields(c)
	q := `INSERT INTO contract (student_id, status, start_date, end_date, duration_months, min_lessons_per_month,
	        lesson_duration_mins, rate_per_lesson, registration_fee, payment_mode, bank_institute, iban,
	        account_holder, signature, signed_at, bypass_signature, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	      RETURNING id`
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &c.ID, q,
		c.StudentID, string(c.Status), c.StartDate, c.EndDate, c.DurationMonths, c.MinLessonsPerMonth,
		c.LessonDurationMins, c.RatePerLesson, c.RegistrationFee, string(c.Payment.Mode), inst, iban, holder,
		null.NewString(c.Signature, c.Signature != ""), null.NewTime(c.SignedAt, !c.SignedAt.IsZero()),
		c.BypassSignature, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return contract.Contract{}, errors.Wrap(err, "inserting contract")
	}
	return c, nil
}

func (repo contractRepository) GetContractByID(ctx context.Context, id int, exec ...core.DBExecutor) (contract.Contract, error) {
	var row contractRow
	q := `SELECT ` + contractColumns + ` FROM contract WHERE id = $1`
	if err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return contract.Contract{}, contract.ErrNotFound
		}
		return contract.Contract{}, errors.Wrap(err, "getting contract")
	}
	return row.toModel(), nil
}

func (repo contractRepository) QueryContractsByStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]contract.Contract, error) {
	var rows []contractRow
	q := `SELECT ` + contractColumns + ` FROM contract WHERE student_id = $1 ORDER BY id`
	if err := sqlx.SelectContext(ctx, ext(repo.db, exec), &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying contracts")
	}
	contracts := make([]contract.Contract, 0, len(rows))
	for _, row := range rows {
		contracts = append(contracts, row.toModel())
	}
	return contracts, nil
}

func (repo contractRepository) ActivateContract(ctx context.Context, c contract.Contract, exec ...core.DBExecutor) (int64, error) {
	inst, iban, holder := bankFields(c)
	q := `UPDATE contract
	      SET status = $2, signature = $3, signed_at = $4, bank_institute = $5, iban = $6, account_holder = $7, updated_at = $8
	      WHERE id = $1 AND status = $9`
	res, err := ext(repo.db, exec).ExecContext(ctx, q,
		c.ID, string(contract.StatusActive), null.NewString(c.Signature, c.Signature != ""),
		null.NewTime(c.SignedAt, !c.SignedAt.IsZero()), inst, iban, holder, time.Now().UTC(),
		string(contract.StatusPendingSignature))
	if err != nil {
		return 0, errors.Wrap(err, "activating contract")
	}
	return res.RowsAffected()
}

func (repo contractRepository) CancelContract(ctx context.Context, id int, exec ...core.DBExecutor) (int64, error) {
	q := `UPDATE contract SET status = $2, updated_at = $3 WHERE id = $1 AND status IN ($4, $5)`
	res, err := ext(repo.db, exec).ExecContext(ctx, q,
		id, string(contract.StatusCancelled), time.Now().UTC(),
		string(contract.StatusPendingSignature), string(contract.StatusActive))
	if err != nil {
		return 0, errors.Wrap(err, "cancelling contract")
	}
	return res.RowsAffected()
}

func (repo contractRepository) UpdateMinimumLessons(ctx context.Context, id, lessons int, exec ...core.DBExecutor) (int64, error) {
	q := `UPDATE contract SET min_lessons_per_month = $2, updated_at = $3 WHERE id = $1 AND status = $4`
	res, err := ext(repo.db, exec).ExecContext(ctx, q, id, lessons, time.Now().UTC(), string(contract.StatusActive))
	if err != nil {
		return 0, errors.Wrap(err, "updating minimum lessons")
	}
	return res.RowsAffected()
}

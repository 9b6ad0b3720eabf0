package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/engagement"
)

type engagementRepository struct {
	db *sqlx.DB
}

var _ engagement.Repository = (*engagementRepository)(nil) // interface compliance check

func NewEngagementRepository(db *sqlx.DB) engagement.Repository {
	return &engagementRepository{db: db}
}

type engagementRow struct {
	ID               int       `db:"id"`
	ContractID       int       `db:"contract_id"`
	StudentSubjectID int       `db:"student_subject_id"`
	TeacherID        int       `db:"teacher_id"`
	TeacherRate      float64   `db:"teacher_rate"`
	Status           string    `db:"status"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r engagementRow) toModel() engagement.Engagement {
	return engagement.Engagement{
		ID:               r.ID,
		ContractID:       r.ContractID,
		StudentSubjectID: r.StudentSubjectID,
		TeacherID:        r.TeacherID,
		TeacherRate:      r.TeacherRate,
		Status:           engagement.Status(r.Status),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

const engagementColumns = `id, contract_id, student_subject_id, teacher_id, teacher_rate, status, created_at, updated_at`

// CreateEngagement relies on the partial unique index on
// (student_subject_id) WHERE status = 'active' for the serializing
// check-then-write; the losing concurrent writer sees ErrConflict.
func (repo engagementRepository) CreateEngagement(ctx context.Context, e engagement.Engagement, exec ...core.DBExecutor) (engagement.Engagement, error) {
	q := `INSERT INTO engagement (contract_id, student_subject_id, teacher_id, teacher_rate, status, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &e.ID, q,
		e.ContractID, e.StudentSubjectID, e.TeacherID, e.TeacherRate, string(e.Status), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return engagement.Engagement{}, engagement.ErrConflict
		}
		return engagement.Engagement{}, errors.Wrap(err, "inserting engagement")
	}
	return e, nil
}

func (repo engagementRepository) GetEngagementByID(ctx context.Context, id int, exec ...core.DBExecutor) (engagement.Engagement, error) {
	var row engagementRow
	q := `SELECT ` + engagementColumns + ` FROM engagement WHERE id = $1`
	if err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return engagement.Engagement{}, engagement.ErrNotFound
		}
		return engagement.Engagement{}, errors.Wrap(err, "getting engagement")
	}
	return row.toModel(), nil
}

func (repo engagementRepository) GetActiveEngagementBySubject(ctx context.Context, studentSubjectID int, exec ...core.DBExecutor) (engagement.Engagement, error) {
	var row engagementRow
	q := `SELECT ` + engagementColumns + ` FROM engagement WHERE student_subject_id = $1 AND status = $2`
	if err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, q, studentSubjectID, string(engagement.StatusActive)); err != nil {
		if err == sql.ErrNoRows {
			return engagement.Engagement{}, engagement.ErrNotFound
		}
		return engagement.Engagement{}, errors.Wrap(err, "getting active engagement")
	}
	return row.toModel(), nil
}

func (repo engagementRepository) QueryEngagementsByContract(ctx context.Context, contractID int, exec ...core.DBExecutor) ([]engagement.Engagement, error) {
	var rows []engagementRow
	q := `SELECT ` + engagementColumns + ` FROM engagement WHERE contract_id = $1 ORDER BY id`
	if err := sqlx.SelectContext(ctx, ext(repo.db, exec), &rows, q, contractID); err != nil {
		return nil, errors.Wrap(err, "querying engagements")
	}
	engagements := make([]engagement.Engagement, 0, len(rows))
	for _, row := range rows {
		engagements = append(engagements, row.toModel())
	}
	return engagements, nil
}

func (repo engagementRepository) CancelEngagement(ctx context.Context, id int, exec ...core.DBExecutor) (int64, error) {
	q := `UPDATE engagement SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`
	res, err := ext(repo.db, exec).ExecContext(ctx, q,
		id, string(engagement.StatusCancelled), time.Now().UTC(), string(engagement.StatusActive))
	if err != nil {
		return 0, errors.Wrap(err, "cancelling engagement")
	}
	return res.RowsAffected()
}

func (repo engagementRepository) CancelEngagementsByContract(ctx context.Context, contractID int, exec ...core.DBExecutor) (int64, error) {
	q := `UPDATE engagement SET status = $2, updated_at = $3 WHERE contract_id = $1 AND status = $4`
	res, err := ext(repo.db, exec).ExecContext(ctx, q,
		contractID, string(engagement.StatusCancelled), time.Now().UTC(), string(engagement.StatusActive))
	if err != nil {
		return 0, errors.Wrap(err, "cancelling engagements by contract")
	}
	return res.RowsAffected()
}

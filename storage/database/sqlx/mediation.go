package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/mediation"
)

type mediationRepository struct {
	db *sqlx.DB
}

var _ mediation.Repository = (*mediationRepository)(nil) // interface compliance check

func NewMediationRepository(db *sqlx.DB) mediation.Repository {
	return &mediationRepository{db: db}
}

type subjectRow struct {
	ID           int       `db:"id"`
	StudentID    int       `db:"student_id"`
	Subject      string    `db:"subject"`
	Detail       string    `db:"detail"`
	EngagementID null.Int  `db:"engagement_id"`
	ContractID   null.Int  `db:"contract_id"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r subjectRow) toModel() mediation.StudentSubject {
	ss := mediation.StudentSubject{
		ID:        r.ID,
		StudentID: r.StudentID,
		Subject:   r.Subject,
		Detail:    r.Detail,
		CreatedAt: r.CreatedAt,
	}
	if r.EngagementID.Valid {
		id := r.EngagementID.Int
		ss.EngagementID = &id
	}
	if r.ContractID.Valid {
		id := r.ContractID.Int
		ss.ContractID = &id
	}
	return ss
}

type stageRow struct {
	ID               int       `db:"id"`
	StudentSubjectID int       `db:"student_subject_id"`
	Type             string    `db:"type"`
	Actor            string    `db:"actor"`
	CreatedAt        time.Time `db:"created_at"`
}

func (r stageRow) toModel() mediation.MediationStage {
	return mediation.MediationStage{
		ID:               r.ID,
		StudentSubjectID: r.StudentSubjectID,
		Type:             mediation.StageType(r.Type),
		Actor:            r.Actor,
		CreatedAt:        r.CreatedAt,
	}
}

const subjectColumns = `id, student_id, subject, detail, engagement_id, contract_id, created_at`

func (repo mediationRepository) CreateStudentSubject(ctx context.Context, ss mediation.StudentSubject, exec ...core.DBExecutor) (mediation.StudentSubject, error) {
	q := `INSERT INTO student_subject (student_id, subject, detail, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &ss.ID, q, ss.StudentID, ss.Subject, ss.Detail, ss.CreatedAt)
	if err != nil {
		return mediation.StudentSubject{}, errors.Wrap(err, "inserting student subject")
	}
	return ss, nil
}

func (repo mediationRepository) GetStudentSubjectByID(ctx context.Context, id int, exec ...core.DBExecutor) (mediation.StudentSubject, error) {
	var row subjectRow
	q := `SELECT ` + subjectColumns + ` FROM student_subject WHERE id = $1`
	if err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return mediation.StudentSubject{}, mediation.ErrNotFound
		}
		return mediation.StudentSubject{}, errors.Wrap(err, "getting student subject")
	}
	return row.toModel(), nil
}

func (repo mediationRepository) QueryStudentSubjectsByStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]mediation.StudentSubject, error) {
	var rows []subjectRow
	q := `SELECT ` + subjectColumns + ` FROM student_subject WHERE student_id = $1 ORDER BY id`
	if err := sqlx.SelectContext(ctx, ext(repo.db, exec), &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student subjects")
	}
	subjects := make([]mediation.StudentSubject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.toModel())
	}
	return subjects, nil
}

func (repo mediationRepository) BindEngagement(ctx context.Context, studentSubjectID int, engagementID, contractID *int, exec ...core.DBExecutor) error {
	q := `UPDATE student_subject SET engagement_id = $2, contract_id = $3 WHERE id = $1`
	res, err := ext(repo.db, exec).ExecContext(ctx, q, studentSubjectID, null.IntFromPtr(engagementID), null.IntFromPtr(contractID))
	if err != nil {
		return errors.Wrap(err, "binding engagement")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "binding engagement")
	}
	if rows == 0 {
		return mediation.ErrNotFound
	}
	return nil
}

func (repo mediationRepository) DeleteStudentSubject(ctx context.Context, id int, exec ...core.DBExecutor) error {
	// stage history goes with it (ON DELETE CASCADE)
	res, err := ext(repo.db, exec).ExecContext(ctx, `DELETE FROM student_subject WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student subject")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting student subject")
	}
	if rows == 0 {
		return mediation.ErrNotFound
	}
	return nil
}

func (repo mediationRepository) CreateStage(ctx context.Context, st mediation.MediationStage, exec ...core.DBExecutor) (mediation.MediationStage, error) {
	q := `INSERT INTO mediation_stage (student_subject_id, type, actor, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &st.ID, q, st.StudentSubjectID, string(st.Type), st.Actor, st.CreatedAt)
	if err != nil {
		return mediation.MediationStage{}, errors.Wrap(err, "inserting mediation stage")
	}
	return st, nil
}

func (repo mediationRepository) LatestStage(ctx context.Context, studentSubjectID int, exec ...core.DBExecutor) (mediation.MediationStage, error) {
	var row stageRow
	q := `SELECT id, student_subject_id, type, actor, created_at FROM mediation_stage
	      WHERE student_subject_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`
	if err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, q, studentSubjectID); err != nil {
		if err == sql.ErrNoRows {
			return mediation.MediationStage{}, mediation.ErrNoStage
		}
		return mediation.MediationStage{}, errors.Wrap(err, "getting latest stage")
	}
	return row.toModel(), nil
}

func (repo mediationRepository) QueryStages(ctx context.Context, studentSubjectID int, exec ...core.DBExecutor) ([]mediation.MediationStage, error) {
	var rows []stageRow
	q := `SELECT id, student_subject_id, type, actor, created_at FROM mediation_stage
	      WHERE student_subject_id = $1 ORDER BY created_at, id`
	if err := sqlx.SelectContext(ctx, ext(repo.db, exec), &rows, q, studentSubjectID); err != nil {
		return nil, errors.Wrap(err, "querying mediation stages")
	}
	stages := make([]mediation.MediationStage, 0, len(rows))
	for _, row := range rows {
		stages = append(stages, row.toModel())
	}
	return stages, nil
}

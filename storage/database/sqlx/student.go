package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

type studentRow struct {
	ID            int       `db:"id"`
	FirstName     string    `db:"first_name"`
	LastName      string    `db:"last_name"`
	Email         string    `db:"email"`
	Phone         string    `db:"phone"`
	Street        string    `db:"street"`
	PostalCode    string    `db:"postal_code"`
	City          string    `db:"city"`
	AcademicLevel string    `db:"academic_level"`
	Status        string    `db:"status"`
	Notes         string    `db:"notes"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r studentRow) toModel() student.Student {
	return student.Student{
		ID:            r.ID,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		Phone:         r.Phone,
		Street:        r.Street,
		PostalCode:    r.PostalCode,
		City:          r.City,
		AcademicLevel: r.AcademicLevel,
		Status:        student.Status(r.Status),
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

const studentColumns = `id, first_name, last_name, email, phone, street, postal_code, city, academic_level, status, notes, created_at, updated_at`

func (repo studentRepository) CreateStudent(ctx context.Context, s student.Student, exec ...core.DBExecutor) (student.Student, error) {
	q := `INSERT INTO student (first_name, last_name, email, phone, street, postal_code, city, academic_level, status, notes, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &s.ID, q,
		s.FirstName, s.LastName, s.Email, s.Phone, s.Street, s.PostalCode, s.City,
		s.AcademicLevel, string(s.Status), s.Notes, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	var row studentRow
	q := `SELECT ` + studentColumns + ` FROM student WHERE id = $1`
	if err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return row.toModel(), nil
}

func (repo studentRepository) QueryAllStudents(ctx context.Context, exec ...core.DBExecutor) ([]student.Student, error) {
	var rows []studentRow
	q := `SELECT ` + studentColumns + ` FROM student ORDER BY id`
	if err := sqlx.SelectContext(ctx, ext(repo.db, exec), &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toModel())
	}
	return students, nil
}

func (repo studentRepository) UpdateStudentStatus(ctx context.Context, id int, status student.Status, exec ...core.DBExecutor) (student.Student, error) {
	var row studentRow
	q := `UPDATE student SET status = $2, updated_at = $3 WHERE id = $1 RETURNING ` + studentColumns
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &row, q, id, string(status), time.Now().UTC())
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "updating student status")
	}
	return row.toModel(), nil
}

func (repo studentRepository) CreateStatusChange(ctx context.Context, chg student.StatusChange, exec ...core.DBExecutor) (student.StatusChange, error) {
	q := `INSERT INTO student_status_change (student_id, from_status, to_status, actor, reason, created_at)
	      VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := sqlx.GetContext(ctx, ext(repo.db, exec), &chg.ID, q,
		chg.StudentID, string(chg.FromStatus), string(chg.ToStatus), chg.Actor, chg.Reason, chg.CreatedAt)
	if err != nil {
		return student.StatusChange{}, errors.Wrap(err, "inserting status change")
	}
	return chg, nil
}

func (repo studentRepository) QueryStatusChanges(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]student.StatusChange, error) {
	type changeRow struct {
		ID         int       `db:"id"`
		StudentID  int       `db:"student_id"`
		FromStatus string    `db:"from_status"`
		ToStatus   string    `db:"to_status"`
		Actor      string    `db:"actor"`
		Reason     string    `db:"reason"`
		CreatedAt  time.Time `db:"created_at"`
	}
	var rows []changeRow
	q := `SELECT id, student_id, from_status, to_status, actor, reason, created_at
	      FROM student_status_change WHERE student_id = $1 ORDER BY created_at, id`
	if err := sqlx.SelectContext(ctx, ext(repo.db, exec), &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying status changes")
	}
	changes := make([]student.StatusChange, 0, len(rows))
	for _, row := range rows {
		changes = append(changes, student.StatusChange{
			ID:         row.ID,
			StudentID:  row.StudentID,
			FromStatus: student.Status(row.FromStatus),
			ToStatus:   student.Status(row.ToStatus),
			Actor:      row.Actor,
			Reason:     row.Reason,
			CreatedAt:  row.CreatedAt,
		})
	}
	return changes, nil
}

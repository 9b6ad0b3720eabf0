package dummydb

import (
	"context"
	"time"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	s.ID = repo.db.pkCount
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context, exec ...core.DBExecutor) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(repo.db.table))
	for id := 1; id <= repo.db.pkCount; id++ {
		if s, ok := repo.db.table[id]; ok {
			students = append(students, *s)
		}
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudentStatus(ctx context.Context, id int, status student.Status, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s, ok := repo.db.table[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	s.Status = status
	s.UpdatedAt = time.Now().UTC()
	return *s, nil
}

func (repo *studentRepository) CreateStatusChange(ctx context.Context, chg student.StatusChange, exec ...core.DBExecutor) (student.StatusChange, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.chgCount++
	chg.ID = repo.db.chgCount
	repo.db.changes = append(repo.db.changes, chg)
	return chg, nil
}

func (repo *studentRepository) QueryStatusChanges(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]student.StatusChange, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var changes []student.StatusChange
	for _, chg := range repo.db.changes {
		if chg.StudentID == studentID {
			changes = append(changes, chg)
		}
	}
	return changes, nil
}

package dummydb

import (
	"context"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/mediation"
)

type mediationRepository struct {
	db *mediationTable
}

var _ mediation.Repository = (*mediationRepository)(nil) // interface compliance check

func NewMediationRepository(db *DB) mediation.Repository {
	return &mediationRepository{db: db.mediation}
}

func (repo *mediationRepository) CreateStudentSubject(ctx context.Context, ss mediation.StudentSubject, exec ...core.DBExecutor) (mediation.StudentSubject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.subjectCount++
	ss.ID = repo.db.subjectCount
	repo.db.subjects[ss.ID] = &ss
	return ss, nil
}

func (repo *mediationRepository) GetStudentSubjectByID(ctx context.Context, id int, exec ...core.DBExecutor) (mediation.StudentSubject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ss, ok := repo.db.subjects[id]; ok {
		return *ss, nil
	}
	return mediation.StudentSubject{}, mediation.ErrNotFound
}

func (repo *mediationRepository) QueryStudentSubjectsByStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]mediation.StudentSubject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var subjects []mediation.StudentSubject
	for id := 1; id <= repo.db.subjectCount; id++ {
		if ss, ok := repo.db.subjects[id]; ok && ss.StudentID == studentID {
			subjects = append(subjects, *ss)
		}
	}
	return subjects, nil
}

func (repo *mediationRepository) BindEngagement(ctx context.Context, studentSubjectID int, engagementID, contractID *int, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	ss, ok := repo.db.subjects[studentSubjectID]
	if !ok {
		return mediation.ErrNotFound
	}
	ss.EngagementID = engagementID
	ss.ContractID = contractID
	return nil
}

func (repo *mediationRepository) DeleteStudentSubject(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return mediation.ErrNotFound
	}
	delete(repo.db.subjects, id)

	// stage history goes with the subject
	kept := repo.db.stages[:0]
	for _, st := range repo.db.stages {
		if st.StudentSubjectID != id {
			kept = append(kept, st)
		}
	}
	repo.db.stages = kept
	return nil
}

func (repo *mediationRepository) CreateStage(ctx context.Context, st mediation.MediationStage, exec ...core.DBExecutor) (mediation.MediationStage, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.stageCount++
	st.ID = repo.db.stageCount
	repo.db.stages = append(repo.db.stages, st)
	return st, nil
}

func (repo *mediationRepository) LatestStage(ctx context.Context, studentSubjectID int, exec ...core.DBExecutor) (mediation.MediationStage, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	// stages is append-only, so the last match is the latest
	for i := len(repo.db.stages) - 1; i >= 0; i-- {
		if repo.db.stages[i].StudentSubjectID == studentSubjectID {
			return repo.db.stages[i], nil
		}
	}
	return mediation.MediationStage{}, mediation.ErrNoStage
}

func (repo *mediationRepository) QueryStages(ctx context.Context, studentSubjectID int, exec ...core.DBExecutor) ([]mediation.MediationStage, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var stages []mediation.MediationStage
	for _, st := range repo.db.stages {
		if st.StudentSubjectID == studentSubjectID {
			stages = append(stages, st)
		}
	}
	return stages, nil
}

package dummydb

import (
	"context"
	"time"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/engagement"
)

type engagementRepository struct {
	db *engagementTable
}

var _ engagement.Repository = (*engagementRepository)(nil) // interface compliance check

func NewEngagementRepository(db *DB) engagement.Repository {
	return &engagementRepository{db: db.engagement}
}

// CreateEngagement does the check-then-write under the table's write lock
// so the one-active-engagement-per-subject invariant holds under
// concurrent creates.
func (repo *engagementRepository) CreateEngagement(ctx context.Context, e engagement.Engagement, exec ...core.DBExecutor) (engagement.Engagement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, other := range repo.db.table {
		if other.StudentSubjectID == e.StudentSubjectID && other.Status == engagement.StatusActive {
			return engagement.Engagement{}, engagement.ErrConflict
		}
	}
	repo.db.pkCount++
	e.ID = repo.db.pkCount
	repo.db.table[e.ID] = &e
	return e, nil
}

func (repo *engagementRepository) GetEngagementByID(ctx context.Context, id int, exec ...core.DBExecutor) (engagement.Engagement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.table[id]; ok {
		return *e, nil
	}
	return engagement.Engagement{}, engagement.ErrNotFound
}

func (repo *engagementRepository) GetActiveEngagementBySubject(ctx context.Context, studentSubjectID int, exec ...core.DBExecutor) (engagement.Engagement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, e := range repo.db.table {
		if e.StudentSubjectID == studentSubjectID && e.Status == engagement.StatusActive {
			return *e, nil
		}
	}
	return engagement.Engagement{}, engagement.ErrNotFound
}

func (repo *engagementRepository) QueryEngagementsByContract(ctx context.Context, contractID int, exec ...core.DBExecutor) ([]engagement.Engagement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var engagements []engagement.Engagement
	for id := 1; id <= repo.db.pkCount; id++ {
		if e, ok := repo.db.table[id]; ok && e.ContractID == contractID {
			engagements = append(engagements, *e)
		}
	}
	return engagements, nil
}

func (repo *engagementRepository) CancelEngagement(ctx context.Context, id int, exec ...core.DBExecutor) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e, ok := repo.db.table[id]
	if !ok || e.Status != engagement.StatusActive {
		return 0, nil
	}
	e.Status = engagement.StatusCancelled
	e.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (repo *engagementRepository) CancelEngagementsByContract(ctx context.Context, contractID int, exec ...core.DBExecutor) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int64
	for _, e := range repo.db.table {
		if e.ContractID == contractID && e.Status == engagement.StatusActive {
			e.Status = engagement.StatusCancelled
			e.UpdatedAt = time.Now().UTC()
			n++
		}
	}
	return n, nil
}

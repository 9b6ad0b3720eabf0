package dummydb

import (
	"context"
	"time"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/contract"
)

type contractRepository struct {
	db *contractTable
}

var _ contract.Repository = (*contractRepository)(nil) // interface compliance check

func NewContractRepository(db *DB) contract.Repository {
	return &contractRepository{db: db.contract}
}

func (repo *contractRepository) CreateContract(ctx context.Context, c contract.Contract, exec ...core.DBExecutor) (contract.Contract, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	c.ID = repo.db.pkCount
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *contractRepository) GetContractByID(ctx context.Context, id int, exec ...core.DBExecutor) (contract.Contract, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return contract.Contract{}, contract.ErrNotFound
}

func (repo *contractRepository) QueryContractsByStudent(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]contract.Contract, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var contracts []contract.Contract
	for id := 1; id <= repo.db.pkCount; id++ {
		if c, ok := repo.db.table[id]; ok && c.StudentID == studentID {
			contracts = append(contracts, *c)
		}
	}
	return contracts, nil
}

func (repo *contractRepository) ActivateContract(ctx context.Context, c contract.Contract, exec ...core.DBExecutor) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[c.ID]
	if !ok || orig.Status != contract.StatusPendingSignature {
		return 0, nil
	}
	orig.Status = contract.StatusActive
	orig.Signature = c.Signature
	orig.SignedAt = c.SignedAt
	orig.Payment = c.Payment
	orig.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (repo *contractRepository) CancelContract(ctx context.Context, id int, exec ...core.DBExecutor) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.table[id]
	if !ok || (c.Status != contract.StatusPendingSignature && c.Status != contract.StatusActive) {
		return 0, nil
	}
	c.Status = contract.StatusCancelled
	c.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (repo *contractRepository) UpdateMinimumLessons(ctx context.Context, id, lessons int, exec ...core.DBExecutor) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.table[id]
	if !ok || c.Status != contract.StatusActive {
		return 0, nil
	}
	c.MinLessonsPerMonth = lessons
	c.UpdatedAt = time.Now().UTC()
	return 1, nil
}

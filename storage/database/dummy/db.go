// Package dummydb provides an in-memory implementation of the domain
// repositories for tests.
package dummydb

import (
	"context"
	"sync"

	"github.com/lernwerk/backoffice/core"
	"github.com/lernwerk/backoffice/core/contract"
	"github.com/lernwerk/backoffice/core/engagement"
	"github.com/lernwerk/backoffice/core/mediation"
	"github.com/lernwerk/backoffice/core/student"
)

type (
	DB struct {
		student    *studentTable
		contract   *contractTable
		engagement *engagementTable
		mediation  *mediationTable
	}

	studentTable struct {
		sync.RWMutex
		pkCount  int
		chgCount int
		table    map[int]*student.Student
		changes  []student.StatusChange
	}

	contractTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*contract.Contract
	}

	engagementTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*engagement.Engagement
	}

	mediationTable struct {
		sync.RWMutex
		subjectCount int
		stageCount   int
		subjects     map[int]*mediation.StudentSubject
		stages       []mediation.MediationStage
	}
)

func Open() (*DB, error) {
	db := &DB{
		student:    &studentTable{table: make(map[int]*student.Student)},
		contract:   &contractTable{table: make(map[int]*contract.Contract)},
		engagement: &engagementTable{table: make(map[int]*engagement.Engagement)},
		mediation:  &mediationTable{subjects: make(map[int]*mediation.StudentSubject)},
	}
	return db, nil
}

// Transactor serializes units of work with a plain mutex. Writes are not
// rolled back on error; good enough for tests exercising service logic.
type Transactor struct {
	mu sync.Mutex
}

var _ core.Transactor = (*Transactor)(nil)

func NewTransactor() *Transactor { return &Transactor{} }

func (t *Transactor) RunInTx(ctx context.Context, fn func(exec core.DBExecutor) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(nil)
}

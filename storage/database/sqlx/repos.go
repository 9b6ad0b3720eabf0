// Package sqlxrepos implements the domain repositories against Postgres.
package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lernwerk/backoffice/core"
)

const pqUniqueViolation = pq.ErrorCode("23505")

// ext picks the service-supplied executor (an open transaction) over the
// repository's base handle.
func ext(db *sqlx.DB, exec []core.DBExecutor) sqlx.ExtContext {
	if len(exec) > 0 {
		if e, ok := exec[0].(sqlx.ExtContext); ok {
			return e
		}
	}
	return db
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == pqUniqueViolation
}

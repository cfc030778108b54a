package repository

import (
	"errors"

	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func asPQ(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

// isUniqueViolation reports a unique violation, optionally on a named constraint.
func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := asPQ(err)
	if !ok || pqErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func isForeignKeyViolation(err error) bool {
	pqErr, ok := asPQ(err)
	return ok && pqErr.Code == pgForeignKeyViolation
}

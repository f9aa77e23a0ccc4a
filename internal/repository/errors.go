package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrUniqueViolation marks inserts or updates rejected by a unique constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

const pqUniqueViolation = "23505"

// translatePQError maps driver errors onto repository sentinels.
func translatePQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
		return ErrUniqueViolation
	}
	return err
}

package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	apperrors "github.com/waitingboard/api/pkg/errors"
)

const uniqueViolation = "23505"

// isUniqueViolation recognises the unique-constraint error of either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

// mapError turns driver errors into application errors. conflictMsg is the
// client-facing message for a unique violation.
func mapError(err error, resource, conflictMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return apperrors.NotFound(resource, err)
	case isUniqueViolation(err):
		return apperrors.Conflict(conflictMsg, err)
	default:
		return err
	}
}

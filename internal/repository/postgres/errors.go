package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/jwalitptl/hpms-api/internal/repository"
)

const (
	uniqueViolation     pq.ErrorCode = "23505"
	foreignKeyViolation pq.ErrorCode = "23503"
)

// writeError maps driver errors from INSERT and UPDATE statements.
func writeError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %w", op, repository.ErrDuplicate)
		case foreignKeyViolation:
			return fmt.Errorf("%s: %w", op, repository.ErrMissingReference)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// deleteError maps driver errors from DELETE statements.
func deleteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return fmt.Errorf("%s: %w", op, repository.ErrReferenced)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// readError maps sql.ErrNoRows onto repository.ErrNotFound.
func readError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// expectAffected turns a zero-row UPDATE or DELETE into ErrNotFound.
func expectAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	pkgerrors "github.com/jewel109/mobiledoor-api/pkg/errors"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// IsUniqueViolation reports whether err is a unique constraint violation. When
// constraintName is provided, the constraint must match as well. SQLite does
// not report index names, only the qualified columns, so columns is matched
// against its message instead.
func IsUniqueViolation(err error, constraintName string, columns ...string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return false
		}
		return constraintName == "" || pgErr.ConstraintName == constraintName
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	if constraintName == "" || strings.Contains(msg, constraintName) {
		return true
	}
	return len(columns) > 0 && strings.Contains(msg, strings.Join(columns, ", "))
}

// IsRetryable reports whether the database aborted the statement because of
// contention rather than bad input.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		if strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") {
			return true
		}
	}
	return false
}

// classifyTxError turns lock contention surfacing from a transaction into a
// retryable conflict. Errors that already carry a domain code pass through.
func classifyTxError(err error) error {
	if !IsRetryable(err) {
		return err
	}
	if typed := pkgerrors.As(err); typed != nil &&
		typed.Code() != pkgerrors.CodeDependency && typed.Code() != pkgerrors.CodeInternal {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "concurrent update, retry the request")
}

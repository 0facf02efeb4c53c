package mysql

import (
	"errors"

	"github.com/go-sql-driver/mysql"

	apperrors "tradeflow/internal/errors"
)

// Server error numbers the services react to.
const (
	ErrDupEntry            = 1062
	ErrLockWaitTimeout     = 1205
	ErrLockDeadlock        = 1213
	ErrBadNull             = 1048
	ErrNoDefaultForField   = 1364
	ErrRowIsReferenced     = 1451
	ErrNoReferencedRow     = 1452
	ErrCheckConstraintFail = 3819
)

func errorNumber(err error) (uint16, bool) {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number, true
	}
	return 0, false
}

func IsDuplicateKey(err error) bool {
	n, ok := errorNumber(err)
	return ok && n == ErrDupEntry
}

func IsDeadlock(err error) bool {
	n, ok := errorNumber(err)
	return ok && (n == ErrLockDeadlock || n == ErrLockWaitTimeout)
}

func IsConstraintViolation(err error) bool {
	n, ok := errorNumber(err)
	if !ok {
		return false
	}
	switch n {
	case ErrBadNull, ErrNoDefaultForField, ErrRowIsReferenced, ErrNoReferencedRow, ErrCheckConstraintFail:
		return true
	}
	return false
}

// Translate maps driver failures onto the application taxonomy. A duplicate
// key becomes a ConflictError carrying conflictMessage. Errors that are
// already typed, or unknown, are returned unchanged.
func Translate(err error, conflictMessage string) error {
	switch {
	case err == nil:
		return nil
	case IsDuplicateKey(err):
		return apperrors.NewConflictError(conflictMessage)
	case IsDeadlock(err):
		return apperrors.NewDeadlockError("transaction aborted by concurrent update", err)
	case IsConstraintViolation(err):
		return apperrors.NewIntegrityError("storage constraint violated", err)
	}
	return err
}

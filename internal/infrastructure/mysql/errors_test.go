package mysql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	apperrors "tradeflow/internal/errors"
)

func TestClassifiers(t *testing.T) {
	dup := fmt.Errorf("inserting milestone: %w", &mysql.MySQLError{Number: ErrDupEntry, Message: "Duplicate entry '42-OrderConfirmed'"})
	deadlock := &mysql.MySQLError{Number: ErrLockDeadlock}
	lockWait := &mysql.MySQLError{Number: ErrLockWaitTimeout}
	fk := &mysql.MySQLError{Number: ErrNoReferencedRow}
	plain := errors.New("connection reset")

	assert.True(t, IsDuplicateKey(dup))
	assert.False(t, IsDuplicateKey(deadlock))

	assert.True(t, IsDeadlock(deadlock))
	assert.True(t, IsDeadlock(lockWait))
	assert.False(t, IsDeadlock(plain))

	assert.True(t, IsConstraintViolation(fk))
	assert.False(t, IsConstraintViolation(dup))
}

func TestTranslate(t *testing.T) {
	t.Run("duplicate key becomes conflict", func(t *testing.T) {
		err := Translate(&mysql.MySQLError{Number: ErrDupEntry}, "milestone GoodsShipped is already recorded")

		ce, ok := apperrors.IsConflictError(err)
		assert.True(t, ok)
		assert.Equal(t, "milestone GoodsShipped is already recorded", ce.Message)
	})

	t.Run("deadlock becomes deadlock error", func(t *testing.T) {
		cause := &mysql.MySQLError{Number: ErrLockDeadlock}
		err := Translate(cause, "")

		de, ok := apperrors.IsDeadlockError(err)
		assert.True(t, ok)
		assert.Equal(t, cause, de.Cause)
	})

	t.Run("foreign key becomes integrity error", func(t *testing.T) {
		_, ok := apperrors.IsIntegrityError(Translate(&mysql.MySQLError{Number: ErrRowIsReferenced}, ""))
		assert.True(t, ok)
	})

	t.Run("typed and unknown errors pass through", func(t *testing.T) {
		nf := apperrors.NewNotFoundError("order with id 1 not found")
		assert.Equal(t, error(nf), Translate(nf, ""))

		plain := errors.New("boom")
		assert.Equal(t, plain, Translate(plain, ""))
		assert.Nil(t, Translate(nil, ""))
	})
}

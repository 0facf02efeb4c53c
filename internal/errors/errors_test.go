package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "order not found"
	err := NewNotFoundError(message)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
}

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	err := NewNotFoundError("test not found")

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, notFoundErr)
	assert.Equal(t, "test not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading order: %w", NewNotFoundError("order with id 42 not found"))

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, "order with id 42 not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestPreconditionError_CarriesMissingPredecessor(t *testing.T) {
	err := NewPreconditionError("GoodsShipped must be completed before GoodsArrived", "GoodsShipped")

	pe, ok := IsPreconditionError(err)
	assert.True(t, ok)
	assert.Equal(t, "GoodsShipped", pe.Missing)
	assert.Contains(t, err.Error(), "GoodsShipped")

	_, isConflict := IsConflictError(err)
	assert.False(t, isConflict)
}

func TestConflictError_IsConflictError(t *testing.T) {
	var err error = NewConflictError("OrderConfirmed already completed")

	ce, ok := IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, "OrderConfirmed already completed", ce.Message)

	_, ok = IsConflictError(errors.New("plain"))
	assert.False(t, ok)
}

func TestValidationError_Creation(t *testing.T) {
	message := "validation failed"
	details := []ValidationDetail{
		{Field: "orderid", Message: "orderid is required"},
		{Field: "userid", Message: "userid is required"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)
}

func TestIntegrityError_Unwrap(t *testing.T) {
	cause := errors.New("foreign key constraint fails")
	err := NewIntegrityError("writing milestone", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "writing milestone")

	ie, ok := IsIntegrityError(fmt.Errorf("cascade: %w", err))
	assert.True(t, ok)
	assert.Equal(t, cause, ie.Cause)
}

func TestDeadlockError_Unwrap(t *testing.T) {
	cause := errors.New("Deadlock found when trying to get lock")
	err := NewDeadlockError("serialization failure", cause)

	de, ok := IsDeadlockError(err)
	assert.True(t, ok)
	assert.Equal(t, cause, de.Unwrap())
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("database error")
	err := NewInternalError("failed to query database", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "failed to query database", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to query database")
	assert.Contains(t, err.Error(), "database error")
}

func TestInternalError_NilCause(t *testing.T) {
	err := NewInternalError("no cause", nil)

	assert.Equal(t, "no cause", err.Error())
	assert.Nil(t, err.Unwrap())
}

package errors

import (
	stderrors "errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// PreconditionError reports a milestone whose predecessor is not completed yet.
type PreconditionError struct {
	Message string
	Missing string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

func NewPreconditionError(message, missing string) *PreconditionError {
	return &PreconditionError{
		Message: message,
		Missing: missing,
	}
}

func IsPreconditionError(err error) (*PreconditionError, bool) {
	var pe *PreconditionError
	if stderrors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if stderrors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

// IntegrityError wraps a storage constraint violation that is not a known
// business conflict.
type IntegrityError struct {
	Message string
	Cause   error
}

func (e *IntegrityError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *IntegrityError) Unwrap() error {
	return e.Cause
}

func NewIntegrityError(message string, cause error) *IntegrityError {
	return &IntegrityError{
		Message: message,
		Cause:   cause,
	}
}

func IsIntegrityError(err error) (*IntegrityError, bool) {
	var ie *IntegrityError
	if stderrors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

type DeadlockError struct {
	Message string
	Cause   error
}

func (e *DeadlockError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DeadlockError) Unwrap() error {
	return e.Cause
}

func NewDeadlockError(message string, cause error) *DeadlockError {
	return &DeadlockError{
		Message: message,
		Cause:   cause,
	}
}

func IsDeadlockError(err error) (*DeadlockError, bool) {
	var de *DeadlockError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

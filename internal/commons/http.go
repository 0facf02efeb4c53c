package commons

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tradeflow/internal/dto"
	apperrors "tradeflow/internal/errors"
)

// TraceID returns a fresh identifier and a logger bound to it.
func TraceID(logger *zap.Logger) (string, *zap.Logger) {
	traceID := uuid.New().String()
	return traceID, logger.With(zap.String("traceId", traceID))
}

// StatusFor maps an application error to its HTTP status and code.
func StatusFor(err error) (int, string) {
	if _, ok := apperrors.IsValidationError(err); ok {
		return http.StatusBadRequest, "VALIDATION_ERROR"
	}
	if _, ok := apperrors.IsPreconditionError(err); ok {
		return http.StatusBadRequest, "PRECONDITION_FAILED"
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		return http.StatusBadRequest, "CONFLICT"
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return http.StatusNotFound, "NOT_FOUND"
	}
	if _, ok := apperrors.IsIntegrityError(err); ok {
		return http.StatusInternalServerError, "INTEGRITY_ERROR"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// WriteError renders err. Messages of 5xx errors are replaced with a
// generic one and the cause is logged instead.
func WriteError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	status, code := StatusFor(err)

	resp := dto.ErrorResponse{
		Error:   err.Error(),
		Code:    code,
		TraceID: traceID,
	}

	if ve, ok := apperrors.IsValidationError(err); ok {
		resp.Details = ve.Details
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("code", code), zap.Error(err))
		resp.Error = "an unexpected error occurred"
	} else {
		logger.Info("request rejected", zap.String("code", code), zap.String("reason", err.Error()))
	}

	WriteJSON(w, status, resp, logger)
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

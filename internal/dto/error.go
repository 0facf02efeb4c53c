package dto

import apperrors "tradeflow/internal/errors"

type ErrorResponse struct {
	Error   string                       `json:"error"`
	Code    string                       `json:"code"`
	TraceID string                       `json:"traceId,omitempty"`
	Details []apperrors.ValidationDetail `json:"details,omitempty"`
}

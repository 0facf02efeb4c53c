package booking

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tradeflow/internal/commons"
	apperrors "tradeflow/internal/errors"
)

type Controller struct {
	useCase UseCase
	logger  *zap.Logger
}

func NewController(useCase UseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *Controller) Routes(r chi.Router) {
	r.Post("/bookings", c.HandleCreate)
	r.Get("/bookings/{bookingId}", c.HandleGet)
	r.Patch("/bookings/{bookingId}/status", c.HandleUpdateStatus)
}

func (c *Controller) HandleGet(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceID(c.logger)

	id, err := bookingID(r)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	resp, err := c.useCase.GetBooking(r.Context(), id)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, logger)
}

func (c *Controller) HandleCreate(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceID(c.logger)

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		commons.WriteError(w, traceID, apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		}), logger)
		return
	}

	resp, err := c.useCase.CreateBooking(r.Context(), req)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusCreated, resp, logger)
}

func (c *Controller) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceID(c.logger)

	id, err := bookingID(r)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		commons.WriteError(w, traceID, apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		}), logger)
		return
	}

	resp, err := c.useCase.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, resp, logger)
}

func bookingID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "bookingId"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidationError("invalid bookingId", apperrors.ValidationDetail{
			Field:   "bookingId",
			Message: "bookingId must be a positive integer",
		})
	}
	return uint(id), nil
}

package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tradeflow/internal/commons"
	"tradeflow/internal/domain"
	"tradeflow/internal/dto"
	apperrors "tradeflow/internal/errors"
)

type MilestoneUseCase interface {
	RecordMilestone(ctx context.Context, orderID uint, typ domain.MilestoneType, userID uint) (*dto.MilestoneResult, error)
	ListMilestones(ctx context.Context, orderID uint) ([]domain.Milestone, error)
	ListCommunications(ctx context.Context, orderID uint) ([]domain.Communication, error)
	CreateMilestone(ctx context.Context, in dto.CreateMilestoneInput) (*domain.Milestone, error)
	UpdateMilestone(ctx context.Context, id uint, in dto.UpdateMilestoneInput) (*domain.Milestone, error)
}

type MilestoneController struct {
	useCase MilestoneUseCase
	logger  *zap.Logger
}

func NewMilestoneController(useCase MilestoneUseCase, logger *zap.Logger) *MilestoneController {
	return &MilestoneController{
		useCase: useCase,
		logger:  logger,
	}
}

// Routes mounts one POST per milestone action plus the order-scoped reads
// and the manual entry endpoints.
func (c *MilestoneController) Routes(r chi.Router) {
	for _, typ := range domain.MilestoneChain {
		r.Post("/milestones/"+typ.Action(), c.RecordMilestone(typ))
	}
	r.Patch("/milestones/{milestoneId}", c.UpdateMilestone)
	r.Get("/orders/{orderId}/milestones", c.ListMilestones)
	r.Post("/orders/{orderId}/milestones", c.CreateMilestone)
	r.Get("/orders/{orderId}/communications", c.ListCommunications)
}

func (c *MilestoneController) RecordMilestone(typ domain.MilestoneType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		traceID, logger := commons.TraceID(c.logger)
		logger = logger.With(zap.String("type", typ.String()))

		var req dto.MilestoneActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid JSON body", zap.Error(err))
			commons.WriteError(w, traceID, invalidBody(err), logger)
			return
		}

		var details []apperrors.ValidationDetail
		if req.OrderID == 0 {
			details = append(details, apperrors.ValidationDetail{Field: "orderid", Message: "orderid is required"})
		}
		if req.UserID == 0 {
			details = append(details, apperrors.ValidationDetail{Field: "userid", Message: "userid is required"})
		}
		if len(details) > 0 {
			commons.WriteError(w, traceID, apperrors.NewValidationError("orderid and userid are required", details...), logger)
			return
		}

		result, err := c.useCase.RecordMilestone(r.Context(), uint(req.OrderID), typ, uint(req.UserID))
		if err != nil {
			commons.WriteError(w, traceID, err, logger)
			return
		}

		commons.WriteJSON(w, http.StatusOK, dto.MilestoneActionResponse{
			Success:     true,
			Message:     fmt.Sprintf("%s recorded", typ.Title()),
			MilestoneID: result.MilestoneID,
			OrderID:     result.OrderID,
			Type:        result.Type.String(),
			OrderStatus: result.OrderStatus,
		}, logger)
	}
}

func (c *MilestoneController) ListMilestones(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceID(c.logger)

	orderID, err := pathID(r, "orderId")
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	milestones, err := c.useCase.ListMilestones(r.Context(), orderID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	out := make([]dto.MilestoneDTO, len(milestones))
	for i, m := range milestones {
		out[i] = dto.NewMilestoneDTO(m)
	}
	commons.WriteJSON(w, http.StatusOK, out, logger)
}

func (c *MilestoneController) ListCommunications(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceID(c.logger)

	orderID, err := pathID(r, "orderId")
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	comms, err := c.useCase.ListCommunications(r.Context(), orderID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	out := make([]dto.CommunicationDTO, len(comms))
	for i, cm := range comms {
		out[i] = dto.NewCommunicationDTO(cm)
	}
	commons.WriteJSON(w, http.StatusOK, out, logger)
}

func (c *MilestoneController) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceID(c.logger)

	orderID, err := pathID(r, "orderId")
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	var req dto.CreateMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		commons.WriteError(w, traceID, invalidBody(err), logger)
		return
	}

	var details []apperrors.ValidationDetail
	typ, err := domain.ParseMilestoneType(req.Type)
	if err != nil {
		ve, _ := apperrors.IsValidationError(err)
		details = append(details, ve.Details...)
	}
	if req.Priority != "" && !validPriority(req.Priority) {
		details = append(details, apperrors.ValidationDetail{Field: "priority", Message: "priority must be low, medium or high"})
	}
	if len(details) > 0 {
		commons.WriteError(w, traceID, apperrors.NewValidationError("validation failed", details...), logger)
		return
	}

	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}

	created, err := c.useCase.CreateMilestone(r.Context(), dto.CreateMilestoneInput{
		OrderID:     orderID,
		Type:        typ,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Visible:     visible,
	})
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusCreated, dto.NewMilestoneDTO(*created), logger)
}

func (c *MilestoneController) UpdateMilestone(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.TraceID(c.logger)

	id, err := pathID(r, "milestoneId")
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	var req dto.UpdateMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		commons.WriteError(w, traceID, invalidBody(err), logger)
		return
	}

	var details []apperrors.ValidationDetail
	if req.Status != nil && *req.Status == domain.MilestoneStatusCompleted && req.UserID == 0 {
		details = append(details, apperrors.ValidationDetail{Field: "userid", Message: "userid is required to complete a milestone"})
	}
	if req.Priority != nil && !validPriority(*req.Priority) {
		details = append(details, apperrors.ValidationDetail{Field: "priority", Message: "priority must be low, medium or high"})
	}
	if len(details) > 0 {
		commons.WriteError(w, traceID, apperrors.NewValidationError("validation failed", details...), logger)
		return
	}

	updated, err := c.useCase.UpdateMilestone(r.Context(), id, dto.UpdateMilestoneInput{
		UserID:      uint(req.UserID),
		Status:      req.Status,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Visible:     req.Visible,
	})
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.NewMilestoneDTO(*updated), logger)
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidationError("invalid "+name, apperrors.ValidationDetail{
			Field:   name,
			Message: name + " must be a positive integer",
		})
	}
	return uint(id), nil
}

func invalidBody(err error) error {
	return apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
		Field:   "body",
		Message: err.Error(),
	})
}

func validPriority(p string) bool {
	switch p {
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh:
		return true
	}
	return false
}

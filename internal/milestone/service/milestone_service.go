package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tradeflow/internal/domain"
	"tradeflow/internal/dto"
	apperrors "tradeflow/internal/errors"
	"tradeflow/internal/infrastructure/mysql"
)

type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}

type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status string) error
}

type InvoiceRepository interface {
	UpdateExpectedStockStatus(ctx context.Context, tx *sql.Tx, orderID uint, status string) (int64, error)
}

type MilestoneRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Milestone, error)
	FindByOrderForUpdate(ctx context.Context, tx *sql.Tx, orderID uint) ([]domain.Milestone, error)
	ListVisibleByOrder(ctx context.Context, orderID uint) ([]domain.Milestone, error)
	Insert(ctx context.Context, tx *sql.Tx, m domain.Milestone) (uint, error)
	MarkCompleted(ctx context.Context, tx *sql.Tx, id uint, userID uint, at time.Time) error
	UpdateDetails(ctx context.Context, tx *sql.Tx, m domain.Milestone) error
}

type CommunicationRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, c domain.Communication) (uint, error)
	ListByOrder(ctx context.Context, orderID uint) ([]domain.Communication, error)
}

type MilestoneService struct {
	uow            UnitOfWork
	orders         OrderRepository
	invoices       InvoiceRepository
	milestones     MilestoneRepository
	communications CommunicationRepository
	logger         *zap.Logger
	now            func() time.Time
}

func NewMilestoneService(
	uow UnitOfWork,
	orders OrderRepository,
	invoices InvoiceRepository,
	milestones MilestoneRepository,
	communications CommunicationRepository,
	logger *zap.Logger,
) *MilestoneService {
	return &MilestoneService{
		uow:            uow,
		orders:         orders,
		invoices:       invoices,
		milestones:     milestones,
		communications: communications,
		logger:         logger,
		now:            time.Now,
	}
}

// RecordMilestone completes typ for the order and cascades the transition to
// the order's invoices, the order status and the communication log, all in
// one transaction.
func (s *MilestoneService) RecordMilestone(ctx context.Context, orderID uint, typ domain.MilestoneType, userID uint) (*dto.MilestoneResult, error) {
	var result *dto.MilestoneResult

	err := s.uow.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		r, err := s.recordInTx(ctx, tx, orderID, typ, userID)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		err = mysql.Translate(err, fmt.Sprintf("milestone %s is already completed for this order", typ))
		s.logger.Warn("milestone transition rejected",
			zap.Uint("orderId", orderID),
			zap.String("type", typ.String()),
			zap.Uint("userId", userID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("milestone transition committed",
		zap.Uint("orderId", orderID),
		zap.String("type", typ.String()),
		zap.Uint("milestoneId", result.MilestoneID),
		zap.String("orderStatus", result.OrderStatus),
		zap.Int64("invoicesUpdated", result.InvoicesUpdated),
	)

	return result, nil
}

func (s *MilestoneService) recordInTx(ctx context.Context, tx *sql.Tx, orderID uint, typ domain.MilestoneType, userID uint) (*dto.MilestoneResult, error) {
	// 1. Lock the order
	order, err := s.orders.FindByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	// 2. Check the transition against stored milestones
	existing, err := s.milestones.FindByOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	completed := domain.CompletedTypes(existing)
	if !domain.IsContiguousPrefix(completed) {
		return nil, apperrors.NewIntegrityError(fmt.Sprintf("order %d has milestones completed out of order", orderID), nil)
	}
	if err := domain.CheckTransition(completed, typ); err != nil {
		return nil, err
	}

	// 3. Write the milestone
	now := s.now().UTC()
	milestoneID, err := s.completeMilestone(ctx, tx, existing, orderID, typ, userID, now)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("milestone written", zap.Uint("orderId", orderID), zap.Uint("milestoneId", milestoneID))

	result := &dto.MilestoneResult{
		MilestoneID: milestoneID,
		OrderID:     orderID,
		Type:        typ,
		UserID:      userID,
		OrderStatus: order.Status,
		CompletedAt: now,
	}

	// 4. Cascade to invoices
	if status, ok := typ.InvoiceStatus(); ok {
		n, err := s.invoices.UpdateExpectedStockStatus(ctx, tx, orderID, status)
		if err != nil {
			return nil, err
		}
		result.InvoicesUpdated = n
		s.logger.Debug("invoices updated", zap.Uint("orderId", orderID), zap.String("expectedStockStatus", status), zap.Int64("count", n))
	}

	// 5. Cascade to the order
	if status, ok := typ.OrderStatus(); ok {
		if err := s.orders.UpdateStatus(ctx, tx, orderID, status); err != nil {
			return nil, err
		}
		result.OrderStatus = status
	}

	// 6. Audit trail
	_, err = s.communications.Insert(ctx, tx, domain.Communication{
		OrderID:   orderID,
		UserID:    userID,
		Type:      domain.CommunicationTypeMilestone,
		Subject:   fmt.Sprintf("Milestone completed: %s", typ.Title()),
		Body:      fmt.Sprintf("Milestone %s was completed for order %d by user %d at %s.", typ, orderID, userID, now.Format(time.RFC3339)),
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// completeMilestone promotes a manually created pending row of typ, or
// inserts a new completed row when none exists.
func (s *MilestoneService) completeMilestone(ctx context.Context, tx *sql.Tx, existing []domain.Milestone, orderID uint, typ domain.MilestoneType, userID uint, now time.Time) (uint, error) {
	for _, m := range existing {
		if m.Type == typ {
			if err := s.milestones.MarkCompleted(ctx, tx, m.ID, userID, now); err != nil {
				return 0, err
			}
			return m.ID, nil
		}
	}

	return s.milestones.Insert(ctx, tx, domain.Milestone{
		OrderID:       orderID,
		Type:          typ,
		Status:        domain.MilestoneStatusCompleted,
		Title:         typ.Title(),
		Description:   fmt.Sprintf("%s recorded by user %d", typ.Title(), userID),
		CompletedDate: &now,
		CompletedBy:   &userID,
		Priority:      domain.PriorityMedium,
		Visible:       true,
		CreatedAt:     now,
	})
}

// ListMilestones returns the visible milestones of an existing order in the
// order they were created.
func (s *MilestoneService) ListMilestones(ctx context.Context, orderID uint) ([]domain.Milestone, error) {
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return nil, err
	}

	milestones, err := s.milestones.ListVisibleByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if milestones == nil {
		milestones = []domain.Milestone{}
	}
	return milestones, nil
}

func (s *MilestoneService) ListCommunications(ctx context.Context, orderID uint) ([]domain.Communication, error) {
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return nil, err
	}

	communications, err := s.communications.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if communications == nil {
		communications = []domain.Communication{}
	}
	return communications, nil
}

// CreateMilestone stores a pending milestone entered by hand. It is
// completed later through RecordMilestone like any other.
func (s *MilestoneService) CreateMilestone(ctx context.Context, in dto.CreateMilestoneInput) (*domain.Milestone, error) {
	m := domain.Milestone{
		OrderID:     in.OrderID,
		Type:        in.Type,
		Status:      domain.MilestoneStatusPending,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Visible:     in.Visible,
		CreatedAt:   s.now().UTC(),
	}
	if m.Title == "" {
		m.Title = in.Type.Title()
	}
	if m.Priority == "" {
		m.Priority = domain.PriorityMedium
	}

	err := s.uow.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.orders.FindByIDForUpdate(ctx, tx, in.OrderID); err != nil {
			return err
		}

		id, err := s.milestones.Insert(ctx, tx, m)
		if err != nil {
			return err
		}
		m.ID = id
		return nil
	})
	if err != nil {
		return nil, mysql.Translate(err, fmt.Sprintf("milestone %s already exists for order %d", in.Type, in.OrderID))
	}

	s.logger.Info("manual milestone created", zap.Uint("orderId", in.OrderID), zap.Uint("milestoneId", m.ID), zap.String("type", in.Type.String()))
	return &m, nil
}

// UpdateMilestone edits a milestone's details. Asking for status
// "completed" on a pending milestone runs the guarded transition; a
// completed milestone can never go back to pending. The transition and the
// detail edits commit together. The transition result is nil when no
// transition happened.
func (s *MilestoneService) UpdateMilestone(ctx context.Context, id uint, in dto.UpdateMilestoneInput) (*domain.Milestone, *dto.MilestoneResult, error) {
	if in.Status != nil && *in.Status != domain.MilestoneStatusCompleted && *in.Status != domain.MilestoneStatusPending {
		return nil, nil, apperrors.NewValidationError("invalid status", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be pending or completed",
		})
	}

	m, err := s.milestones.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var transition *dto.MilestoneResult
	err = s.uow.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		transition = nil

		if _, err := s.orders.FindByIDForUpdate(ctx, tx, m.OrderID); err != nil {
			return err
		}
		current, err := s.lockedMilestone(ctx, tx, m.OrderID, id)
		if err != nil {
			return err
		}

		if in.Status != nil {
			switch *in.Status {
			case domain.MilestoneStatusCompleted:
				if !current.IsCompleted() {
					transition, err = s.recordInTx(ctx, tx, current.OrderID, current.Type, in.UserID)
					if err != nil {
						return err
					}
				}
			case domain.MilestoneStatusPending:
				if current.IsCompleted() {
					return apperrors.NewConflictError(fmt.Sprintf("milestone %s is completed and cannot be reopened", current.Type))
				}
			}
		}

		if !hasDetails(in) {
			return nil
		}
		applyDetails(current, in)
		return s.milestones.UpdateDetails(ctx, tx, *current)
	})
	if err != nil {
		return nil, nil, mysql.Translate(err, fmt.Sprintf("milestone %s is already completed for this order", m.Type))
	}

	if transition != nil {
		s.logger.Info("milestone transition committed",
			zap.Uint("orderId", transition.OrderID),
			zap.String("type", transition.Type.String()),
			zap.Uint("milestoneId", transition.MilestoneID),
			zap.String("orderStatus", transition.OrderStatus),
			zap.Int64("invoicesUpdated", transition.InvoicesUpdated),
		)
	}

	updated, err := s.milestones.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return updated, transition, nil
}

func (s *MilestoneService) lockedMilestone(ctx context.Context, tx *sql.Tx, orderID, id uint) (*domain.Milestone, error) {
	rows, err := s.milestones.FindByOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID == id {
			return &rows[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("milestone with id %d not found", id))
}

func applyDetails(m *domain.Milestone, in dto.UpdateMilestoneInput) {
	if in.Title != nil {
		m.Title = *in.Title
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.DueDate != nil {
		m.DueDate = in.DueDate
	}
	if in.Priority != nil {
		m.Priority = *in.Priority
	}
	if in.Visible != nil {
		m.Visible = *in.Visible
	}
}

func hasDetails(in dto.UpdateMilestoneInput) bool {
	return in.Title != nil || in.Description != nil || in.DueDate != nil || in.Priority != nil || in.Visible != nil
}

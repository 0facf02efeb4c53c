package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tradeflow/internal/domain"
	"tradeflow/internal/dto"
	apperrors "tradeflow/internal/errors"
)

type MilestoneService interface {
	RecordMilestone(ctx context.Context, orderID uint, typ domain.MilestoneType, userID uint) (*dto.MilestoneResult, error)
	ListMilestones(ctx context.Context, orderID uint) ([]domain.Milestone, error)
	ListCommunications(ctx context.Context, orderID uint) ([]domain.Communication, error)
	CreateMilestone(ctx context.Context, in dto.CreateMilestoneInput) (*domain.Milestone, error)
	UpdateMilestone(ctx context.Context, id uint, in dto.UpdateMilestoneInput) (*domain.Milestone, *dto.MilestoneResult, error)
}

type Publisher interface {
	Publish(ctx context.Context, channel string, message any) error
}

type MilestoneUseCase struct {
	service          MilestoneService
	publisher        Publisher
	channel          string
	publishTimeout   time.Duration
	logger           *zap.Logger
	maxRetryAttempts int
	retryBackoff     time.Duration

	inflight sync.WaitGroup
}

func NewMilestoneUseCase(
	service MilestoneService,
	publisher Publisher,
	channel string,
	publishTimeout time.Duration,
	logger *zap.Logger,
	maxRetryAttempts int,
	retryBackoff time.Duration,
) *MilestoneUseCase {
	if maxRetryAttempts < 1 {
		maxRetryAttempts = 1
	}
	return &MilestoneUseCase{
		service:          service,
		publisher:        publisher,
		channel:          channel,
		publishTimeout:   publishTimeout,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
		retryBackoff:     retryBackoff,
	}
}

// Drain waits for notifications still being published, or until ctx ends.
func (uc *MilestoneUseCase) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (uc *MilestoneUseCase) RecordMilestone(ctx context.Context, orderID uint, typ domain.MilestoneType, userID uint) (*dto.MilestoneResult, error) {
	uc.logger.Info("milestone requested", zap.Uint("orderId", orderID), zap.String("type", typ.String()), zap.Uint("userId", userID))

	if !typ.Valid() {
		return nil, apperrors.NewValidationError("unknown milestone type", apperrors.ValidationDetail{
			Field:   "type",
			Message: "unknown milestone type " + typ.String(),
		})
	}

	var result *dto.MilestoneResult
	err := uc.withRetry(ctx, orderID, func() error {
		r, err := uc.service.RecordMilestone(ctx, orderID, typ, userID)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, result)
	return result, nil
}

func (uc *MilestoneUseCase) ListMilestones(ctx context.Context, orderID uint) ([]domain.Milestone, error) {
	return uc.service.ListMilestones(ctx, orderID)
}

func (uc *MilestoneUseCase) ListCommunications(ctx context.Context, orderID uint) ([]domain.Communication, error) {
	return uc.service.ListCommunications(ctx, orderID)
}

func (uc *MilestoneUseCase) CreateMilestone(ctx context.Context, in dto.CreateMilestoneInput) (*domain.Milestone, error) {
	var created *domain.Milestone
	err := uc.withRetry(ctx, in.OrderID, func() error {
		m, err := uc.service.CreateMilestone(ctx, in)
		created = m
		return err
	})
	return created, err
}

func (uc *MilestoneUseCase) UpdateMilestone(ctx context.Context, id uint, in dto.UpdateMilestoneInput) (*domain.Milestone, error) {
	var (
		updated    *domain.Milestone
		transition *dto.MilestoneResult
	)
	err := uc.withRetry(ctx, 0, func() error {
		m, tr, err := uc.service.UpdateMilestone(ctx, id, in)
		updated, transition = m, tr
		return err
	})
	if err != nil {
		return nil, err
	}

	if transition != nil {
		uc.notify(ctx, transition)
	}
	return updated, nil
}

// withRetry reruns fn while it fails with a DeadlockError, sleeping
// attempt*retryBackoff between tries. Every other outcome is returned as is.
func (uc *MilestoneUseCase) withRetry(ctx context.Context, orderID uint, fn func() error) error {
	var err error
	for attempt := 1; attempt <= uc.maxRetryAttempts; attempt++ {
		err = fn()
		if _, ok := apperrors.IsDeadlockError(err); !ok {
			return err
		}

		if attempt == uc.maxRetryAttempts {
			break
		}

		uc.logger.Warn("deadlock detected, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", uc.maxRetryAttempts),
			zap.Uint("orderId", orderID),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * uc.retryBackoff):
		}
	}

	uc.logger.Error("deadlock retries exhausted", zap.Uint("orderId", orderID), zap.Error(err))
	return apperrors.NewInternalError(fmt.Sprintf("transaction still deadlocked after %d attempts", uc.maxRetryAttempts), err)
}

// notify publishes the committed transition on its own goroutine, bounded by
// publishTimeout. Failures are logged only; the transition is already durable.
func (uc *MilestoneUseCase) notify(ctx context.Context, r *dto.MilestoneResult) {
	event := dto.MilestoneEvent{
		Event:       dto.EventMilestoneCompleted,
		OrderID:     r.OrderID,
		MilestoneID: r.MilestoneID,
		Type:        r.Type,
		UserID:      r.UserID,
		OrderStatus: r.OrderStatus,
		OccurredAt:  r.CompletedAt,
	}

	uc.inflight.Add(1)
	go func() {
		defer uc.inflight.Done()

		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.publishTimeout)
		defer cancel()

		if err := uc.publisher.Publish(pubCtx, uc.channel, event); err != nil {
			uc.logger.Warn("milestone notification failed",
				zap.Uint("orderId", r.OrderID),
				zap.Uint("milestoneId", r.MilestoneID),
				zap.Error(err),
			)
		}
	}()
}

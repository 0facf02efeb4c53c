package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tradeflow/internal/domain"
)

type bookingService struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &bookingService{repo: repo, logger: logger, now: time.Now}
}

func (s *bookingService) Get(ctx context.Context, id uint) (*domain.Booking, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *bookingService) Create(ctx context.Context, b domain.Booking) (*domain.Booking, error) {
	now := s.now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	id, err := s.repo.Insert(ctx, b)
	if err != nil {
		return nil, err
	}
	b.ID = id

	s.logger.Info("booking created", zap.Uint("bookingId", id), zap.String("reference", b.Reference), zap.Int("status", b.StatusCode))
	return &b, nil
}

func (s *bookingService) ChangeStatus(ctx context.Context, id uint, status Status) (*domain.Booking, error) {
	if err := s.repo.UpdateStatus(ctx, id, status.Code); err != nil {
		return nil, err
	}

	s.logger.Info("booking status changed", zap.Uint("bookingId", id), zap.String("status", status.Label))
	return s.repo.FindByID(ctx, id)
}

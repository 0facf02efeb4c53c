package booking

import (
	"context"

	"tradeflow/internal/domain"
)

type UseCase interface {
	GetBooking(ctx context.Context, id uint) (*BookingDTO, error)
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error)
	UpdateStatus(ctx context.Context, id uint, label string) (*BookingDTO, error)
}

type Service interface {
	Get(ctx context.Context, id uint) (*domain.Booking, error)
	Create(ctx context.Context, b domain.Booking) (*domain.Booking, error)
	ChangeStatus(ctx context.Context, id uint, status Status) (*domain.Booking, error)
}

type Repository interface {
	FindByID(ctx context.Context, id uint) (*domain.Booking, error)
	Insert(ctx context.Context, b domain.Booking) (uint, error)
	UpdateStatus(ctx context.Context, id uint, code int) error
}

package booking

import (
	"context"
	"strings"

	"tradeflow/internal/domain"
	apperrors "tradeflow/internal/errors"
)

type bookingUseCase struct {
	service Service
}

func NewUseCase(service Service) UseCase {
	return &bookingUseCase{service: service}
}

func (uc *bookingUseCase) GetBooking(ctx context.Context, id uint) (*BookingDTO, error) {
	b, err := uc.service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return newBookingDTO(*b), nil
}

// CreateBooking rejects unknown status labels instead of storing them as
// Pending. An omitted status starts the booking as Pending.
func (uc *bookingUseCase) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	var details []apperrors.ValidationDetail
	if strings.TrimSpace(req.Reference) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "reference", Message: "reference is required"})
	}

	status := Status{Code: StatusPending, Label: ToLabel(StatusPending)}
	if req.Status != "" {
		parsed, err := ParseLabel(req.Status)
		if err != nil {
			ve, _ := apperrors.IsValidationError(err)
			details = append(details, ve.Details...)
		}
		status = parsed
	}

	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	b := domain.Booking{
		Reference:  strings.TrimSpace(req.Reference),
		Carrier:    req.Carrier,
		StatusCode: status.Code,
	}
	if req.OrderID != 0 {
		orderID := uint(req.OrderID)
		b.OrderID = &orderID
	}

	created, err := uc.service.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	return newBookingDTO(*created), nil
}

func (uc *bookingUseCase) UpdateStatus(ctx context.Context, id uint, label string) (*BookingDTO, error) {
	status, err := ParseLabel(label)
	if err != nil {
		return nil, err
	}

	b, err := uc.service.ChangeStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	return newBookingDTO(*b), nil
}

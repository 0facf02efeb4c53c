package booking

import (
	"time"

	"tradeflow/internal/domain"
	"tradeflow/internal/dto"
)

type CreateBookingRequest struct {
	OrderID   dto.ID `json:"orderId"`
	Reference string `json:"reference"`
	Carrier   string `json:"carrier"`
	Status    string `json:"status"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type BookingDTO struct {
	ID         uint      `json:"id"`
	OrderID    *uint     `json:"orderId"`
	Reference  string    `json:"reference"`
	Carrier    string    `json:"carrier"`
	Status     string    `json:"status"`
	StatusCode int       `json:"statusCode"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func newBookingDTO(b domain.Booking) *BookingDTO {
	return &BookingDTO{
		ID:         b.ID,
		OrderID:    b.OrderID,
		Reference:  b.Reference,
		Carrier:    b.Carrier,
		Status:     ToLabel(b.StatusCode),
		StatusCode: b.StatusCode,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

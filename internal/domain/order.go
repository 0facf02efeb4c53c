package domain

import "time"

type Order struct {
	ID        uint
	Reference string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	OrderStatusPending   = "Pending"
	OrderStatusConfirmed = "Confirmed"
	OrderStatusShipped   = "Shipped"
	OrderStatusCompleted = "Completed"
)

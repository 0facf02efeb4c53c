package domain

import "time"

// Communication is an append-only audit entry attached to an order.
type Communication struct {
	ID        uint
	OrderID   uint
	UserID    uint
	Type      string
	Subject   string
	Body      string
	CreatedAt time.Time
}

const CommunicationTypeMilestone = "milestone"

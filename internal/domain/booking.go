package domain

import "time"

// Booking stores its status as a compact code; see booking.StatusCodec.
type Booking struct {
	ID         uint
	OrderID    *uint
	Reference  string
	Carrier    string
	StatusCode int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

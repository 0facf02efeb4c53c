package domain

import "time"

// Invoice mirrors the shipment progress of its order in ExpectedStockStatus.
type Invoice struct {
	ID                  uint
	OrderID             uint
	InvoiceNumber       string
	ExpectedStockStatus string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

const (
	InvoiceStatusPlanning  = "planning"
	InvoiceStatusConfirmed = "confirmed"
	InvoiceStatusShipped   = "shipped"
	InvoiceStatusArrived   = "arrived"
	InvoiceStatusCompleted = "completed"
)

package dto

import (
	"time"

	"tradeflow/internal/domain"
)

const (
	EventMilestoneCompleted = "milestone.completed"
	EventMilestoneOverdue   = "milestone.overdue"
)

type MilestoneEvent struct {
	Event       string               `json:"event"`
	OrderID     uint                 `json:"orderId"`
	MilestoneID uint                 `json:"milestoneId"`
	Type        domain.MilestoneType `json:"type"`
	UserID      uint                 `json:"userId,omitempty"`
	OrderStatus string               `json:"orderStatus,omitempty"`
	DueDate     *time.Time           `json:"dueDate,omitempty"`
	OccurredAt  time.Time            `json:"occurredAt"`
}

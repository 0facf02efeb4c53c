package dto

import (
	"time"

	"tradeflow/internal/domain"
)

type MilestoneActionRequest struct {
	OrderID ID `json:"orderid"`
	UserID  ID `json:"userid"`
}

type MilestoneActionResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	MilestoneID uint   `json:"milestoneId"`
	OrderID     uint   `json:"orderId"`
	Type        string `json:"type"`
	OrderStatus string `json:"orderStatus"`
}

// MilestoneResult describes one committed milestone transition.
type MilestoneResult struct {
	MilestoneID     uint
	OrderID         uint
	Type            domain.MilestoneType
	UserID          uint
	OrderStatus     string
	InvoicesUpdated int64
	CompletedAt     time.Time
}

type MilestoneDTO struct {
	ID            uint       `json:"id"`
	OrderID       uint       `json:"orderId"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	DueDate       *time.Time `json:"dueDate"`
	CompletedDate *time.Time `json:"completedDate"`
	CompletedBy   *uint      `json:"completedBy"`
	Priority      string     `json:"priority"`
	Visible       bool       `json:"visible"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func NewMilestoneDTO(m domain.Milestone) MilestoneDTO {
	return MilestoneDTO{
		ID:            m.ID,
		OrderID:       m.OrderID,
		Type:          string(m.Type),
		Status:        m.Status,
		Title:         m.Title,
		Description:   m.Description,
		DueDate:       m.DueDate,
		CompletedDate: m.CompletedDate,
		CompletedBy:   m.CompletedBy,
		Priority:      m.Priority,
		Visible:       m.Visible,
		CreatedAt:     m.CreatedAt,
	}
}

type CreateMilestoneRequest struct {
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    string     `json:"priority"`
	Visible     *bool      `json:"visible"`
}

// UpdateMilestoneRequest is a partial update; nil fields are left alone.
type UpdateMilestoneRequest struct {
	UserID      ID         `json:"userid"`
	Status      *string    `json:"status"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    *string    `json:"priority"`
	Visible     *bool      `json:"visible"`
}

type CreateMilestoneInput struct {
	OrderID     uint
	Type        domain.MilestoneType
	Title       string
	Description string
	DueDate     *time.Time
	Priority    string
	Visible     bool
}

type UpdateMilestoneInput struct {
	UserID      uint
	Status      *string
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *string
	Visible     *bool
}

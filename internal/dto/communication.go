package dto

import (
	"time"

	"tradeflow/internal/domain"
)

type CommunicationDTO struct {
	ID        uint      `json:"id"`
	OrderID   uint      `json:"orderId"`
	UserID    uint      `json:"userId"`
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewCommunicationDTO(c domain.Communication) CommunicationDTO {
	return CommunicationDTO{
		ID:        c.ID,
		OrderID:   c.OrderID,
		UserID:    c.UserID,
		Type:      c.Type,
		Subject:   c.Subject,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}

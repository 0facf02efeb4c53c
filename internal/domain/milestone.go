package domain

import (
	"fmt"
	"time"

	apperrors "tradeflow/internal/errors"
)

type MilestoneType string

const (
	MilestoneOrderConfirmed MilestoneType = "OrderConfirmed"
	MilestoneReadyToShip    MilestoneType = "ReadyToShip"
	MilestoneGoodsShipped   MilestoneType = "GoodsShipped"
	MilestoneGoodsArrived   MilestoneType = "GoodsArrived"
	MilestoneGoodsReceived  MilestoneType = "GoodsReceived"
)

const (
	MilestoneStatusPending   = "pending"
	MilestoneStatusCompleted = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Milestone struct {
	ID            uint
	OrderID       uint
	Type          MilestoneType
	Status        string
	Title         string
	Description   string
	DueDate       *time.Time
	CompletedDate *time.Time
	CompletedBy   *uint
	Priority      string
	Visible       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (m Milestone) IsCompleted() bool {
	return m.Status == MilestoneStatusCompleted
}

// transition describes one step of the shipment chain and the cascade it
// triggers. Empty invoiceStatus or orderStatus means the field is untouched.
type transition struct {
	predecessor   MilestoneType
	action        string
	title         string
	invoiceStatus string
	orderStatus   string
}

// MilestoneChain is the canonical completion order.
var MilestoneChain = []MilestoneType{
	MilestoneOrderConfirmed,
	MilestoneReadyToShip,
	MilestoneGoodsShipped,
	MilestoneGoodsArrived,
	MilestoneGoodsReceived,
}

var transitions = map[MilestoneType]transition{
	MilestoneOrderConfirmed: {
		action:      "confirm-order",
		title:       "Order Confirmed",
		orderStatus: OrderStatusConfirmed,
	},
	MilestoneReadyToShip: {
		predecessor:   MilestoneOrderConfirmed,
		action:        "ready-to-ship",
		title:         "Ready to Ship",
		invoiceStatus: InvoiceStatusConfirmed,
	},
	MilestoneGoodsShipped: {
		predecessor:   MilestoneReadyToShip,
		action:        "goods-shipped",
		title:         "Goods Shipped",
		invoiceStatus: InvoiceStatusShipped,
		orderStatus:   OrderStatusShipped,
	},
	MilestoneGoodsArrived: {
		predecessor:   MilestoneGoodsShipped,
		action:        "goods-arrived",
		title:         "Goods Arrived",
		invoiceStatus: InvoiceStatusArrived,
	},
	MilestoneGoodsReceived: {
		predecessor:   MilestoneGoodsArrived,
		action:        "goods-received",
		title:         "Goods Received",
		invoiceStatus: InvoiceStatusCompleted,
		orderStatus:   OrderStatusCompleted,
	},
}

func (t MilestoneType) Valid() bool {
	_, ok := transitions[t]
	return ok
}

func (t MilestoneType) String() string {
	return string(t)
}

// Predecessor returns the milestone type that must be completed before t.
// ok is false for the head of the chain and for unknown types.
func (t MilestoneType) Predecessor() (MilestoneType, bool) {
	tr, found := transitions[t]
	if !found || tr.predecessor == "" {
		return "", false
	}
	return tr.predecessor, true
}

func (t MilestoneType) Action() string {
	return transitions[t].action
}

func (t MilestoneType) Title() string {
	return transitions[t].title
}

// InvoiceStatus is the expectedstockstatus every invoice of the order takes
// when t completes.
func (t MilestoneType) InvoiceStatus() (string, bool) {
	s := transitions[t].invoiceStatus
	return s, s != ""
}

func (t MilestoneType) OrderStatus() (string, bool) {
	s := transitions[t].orderStatus
	return s, s != ""
}

func ParseMilestoneType(s string) (MilestoneType, error) {
	t := MilestoneType(s)
	if !t.Valid() {
		return "", apperrors.NewValidationError(
			fmt.Sprintf("unknown milestone type %q", s),
			apperrors.ValidationDetail{Field: "type", Message: "type must be one of OrderConfirmed, ReadyToShip, GoodsShipped, GoodsArrived, GoodsReceived"},
		)
	}
	return t, nil
}

// CheckTransition decides whether t may be completed given the set of
// already completed types.
func CheckTransition(completed map[MilestoneType]bool, t MilestoneType) error {
	if !t.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("unknown milestone type %q", t))
	}
	if completed[t] {
		return apperrors.NewConflictError(fmt.Sprintf("milestone %s is already completed for this order", t))
	}
	if pred, ok := t.Predecessor(); ok && !completed[pred] {
		return apperrors.NewPreconditionError(
			fmt.Sprintf("milestone %s must be completed before %s", pred, t),
			pred.String(),
		)
	}
	return nil
}

// CompletedTypes collects the completed milestone types from rows.
func CompletedTypes(milestones []Milestone) map[MilestoneType]bool {
	completed := make(map[MilestoneType]bool, len(milestones))
	for _, m := range milestones {
		if m.IsCompleted() {
			completed[m.Type] = true
		}
	}
	return completed
}

// IsContiguousPrefix reports whether completed forms an unbroken prefix of
// MilestoneChain.
func IsContiguousPrefix(completed map[MilestoneType]bool) bool {
	gap := false
	for _, t := range MilestoneChain {
		if !completed[t] {
			gap = true
			continue
		}
		if gap {
			return false
		}
	}
	return true
}

package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"tradeflow/internal/domain"
	apperrors "tradeflow/internal/errors"
)

// memStore is an in-memory stand-in for the four tables touched by a
// milestone transition. memUnitOfWork snapshots it on begin and restores the
// snapshot when the unit fails, so tests observe real rollback semantics.
type memStore struct {
	orders         map[uint]domain.Order
	invoices       map[uint]domain.Invoice
	milestones     map[uint]domain.Milestone
	communications map[uint]domain.Communication
	nextID         uint

	// failures injects an error into the named repository call.
	failures map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		orders:         map[uint]domain.Order{},
		invoices:       map[uint]domain.Invoice{},
		milestones:     map[uint]domain.Milestone{},
		communications: map[uint]domain.Communication{},
		nextID:         100,
		failures:       map[string]error{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) addOrder(id uint) {
	s.orders[id] = domain.Order{ID: id, Reference: "PO", Status: domain.OrderStatusPending}
}

func (s *memStore) addInvoice(orderID uint) uint {
	id := s.id()
	s.invoices[id] = domain.Invoice{ID: id, OrderID: orderID, ExpectedStockStatus: domain.InvoiceStatusPlanning}
	return id
}

func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	c.nextID = s.nextID
	c.failures = s.failures
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	for k, v := range s.milestones {
		c.milestones[k] = v
	}
	for k, v := range s.communications {
		c.communications[k] = v
	}
	return c
}

func (s *memStore) restore(from *memStore) {
	s.orders = from.orders
	s.invoices = from.invoices
	s.milestones = from.milestones
	s.communications = from.communications
	s.nextID = from.nextID
}

func (s *memStore) count(orderID uint) (milestones, communications int) {
	for _, m := range s.milestones {
		if m.OrderID == orderID {
			milestones++
		}
	}
	for _, c := range s.communications {
		if c.OrderID == orderID {
			communications++
		}
	}
	return
}

func (s *memStore) completedTypes(orderID uint) map[domain.MilestoneType]bool {
	var rows []domain.Milestone
	for _, m := range s.milestones {
		if m.OrderID == orderID {
			rows = append(rows, m)
		}
	}
	return domain.CompletedTypes(rows)
}

type memUnitOfWork struct {
	store     *memStore
	commits   int
	rollbacks int
}

func (u *memUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	before := u.store.snapshot()
	if err := fn(ctx, nil); err != nil {
		u.store.restore(before)
		u.rollbacks++
		return err
	}
	u.commits++
	return nil
}

type memOrders struct{ s *memStore }

func (r memOrders) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("order not found")
	}
	return &o, nil
}

func (r memOrders) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error) {
	return r.FindByID(ctx, id)
}

func (r memOrders) UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status string) error {
	if err := r.s.failures["orders.UpdateStatus"]; err != nil {
		return err
	}
	o := r.s.orders[id]
	o.Status = status
	r.s.orders[id] = o
	return nil
}

type memInvoices struct{ s *memStore }

func (r memInvoices) UpdateExpectedStockStatus(ctx context.Context, tx *sql.Tx, orderID uint, status string) (int64, error) {
	if err := r.s.failures["invoices.UpdateExpectedStockStatus"]; err != nil {
		return 0, err
	}
	var n int64
	for id, inv := range r.s.invoices {
		if inv.OrderID == orderID {
			inv.ExpectedStockStatus = status
			r.s.invoices[id] = inv
			n++
		}
	}
	return n, nil
}

type memMilestones struct{ s *memStore }

func (r memMilestones) FindByID(ctx context.Context, id uint) (*domain.Milestone, error) {
	m, ok := r.s.milestones[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("milestone not found")
	}
	return &m, nil
}

func (r memMilestones) byOrder(orderID uint, visibleOnly bool) []domain.Milestone {
	var out []domain.Milestone
	for _, m := range r.s.milestones {
		if m.OrderID == orderID && (!visibleOnly || m.Visible) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r memMilestones) FindByOrderForUpdate(ctx context.Context, tx *sql.Tx, orderID uint) ([]domain.Milestone, error) {
	return r.byOrder(orderID, false), nil
}

func (r memMilestones) ListVisibleByOrder(ctx context.Context, orderID uint) ([]domain.Milestone, error) {
	return r.byOrder(orderID, true), nil
}

func (r memMilestones) Insert(ctx context.Context, tx *sql.Tx, m domain.Milestone) (uint, error) {
	if err := r.s.failures["milestones.Insert"]; err != nil {
		return 0, err
	}
	for _, existing := range r.s.milestones {
		if existing.OrderID == m.OrderID && existing.Type == m.Type {
			return 0, apperrors.NewConflictError("duplicate (orderId, type)")
		}
	}
	m.ID = r.s.id()
	r.s.milestones[m.ID] = m
	return m.ID, nil
}

func (r memMilestones) MarkCompleted(ctx context.Context, tx *sql.Tx, id uint, userID uint, at time.Time) error {
	m, ok := r.s.milestones[id]
	if !ok || m.Status != domain.MilestoneStatusPending {
		return apperrors.NewConflictError("not pending")
	}
	m.Status = domain.MilestoneStatusCompleted
	m.CompletedDate = &at
	m.CompletedBy = &userID
	r.s.milestones[id] = m
	return nil
}

func (r memMilestones) UpdateDetails(ctx context.Context, tx *sql.Tx, m domain.Milestone) error {
	if err := r.s.failures["milestones.UpdateDetails"]; err != nil {
		return err
	}
	stored, ok := r.s.milestones[m.ID]
	if !ok {
		return apperrors.NewNotFoundError("milestone not found")
	}
	stored.Title = m.Title
	stored.Description = m.Description
	stored.DueDate = m.DueDate
	stored.Priority = m.Priority
	stored.Visible = m.Visible
	r.s.milestones[m.ID] = stored
	return nil
}

type memCommunications struct{ s *memStore }

func (r memCommunications) Insert(ctx context.Context, tx *sql.Tx, c domain.Communication) (uint, error) {
	if err := r.s.failures["communications.Insert"]; err != nil {
		return 0, err
	}
	c.ID = r.s.id()
	r.s.communications[c.ID] = c
	return c.ID, nil
}

func (r memCommunications) ListByOrder(ctx context.Context, orderID uint) ([]domain.Communication, error) {
	var out []domain.Communication
	for _, c := range r.s.communications {
		if c.OrderID == orderID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

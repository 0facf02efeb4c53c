package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tradeflow/internal/domain"
	apperrors "tradeflow/internal/errors"
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

const selectOrder = `
	SELECT id, reference, status, createdAt, updatedAt
	FROM Orders
	WHERE id = ?`

func scanOrder(row *sql.Row, id uint) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(&order.ID, &order.Reference, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}
	return &order, nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	return scanOrder(r.db.QueryRowContext(ctx, selectOrder, id), id)
}

// FindByIDForUpdate locks the order row until tx ends, serializing
// milestone transitions of the same order.
func (r *MySQLOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error) {
	return scanOrder(tx.QueryRowContext(ctx, selectOrder+" FOR UPDATE", id), id)
}

func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status string) error {
	query := `UPDATE Orders SET status = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}

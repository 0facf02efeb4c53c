package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type MySQLInvoiceRepository struct {
	db *sql.DB
}

func NewMySQLInvoiceRepository(db *sql.DB) *MySQLInvoiceRepository {
	return &MySQLInvoiceRepository{db: db}
}

// UpdateExpectedStockStatus sets the status on every invoice of the order
// and returns how many invoices were touched. Orders without invoices are
// not an error.
func (r *MySQLInvoiceRepository) UpdateExpectedStockStatus(ctx context.Context, tx *sql.Tx, orderID uint, status string) (int64, error) {
	query := `UPDATE Invoices SET expectedstockstatus = ? WHERE orderId = ?`

	result, err := tx.ExecContext(ctx, query, status, orderID)
	if err != nil {
		return 0, fmt.Errorf("updating invoice stock status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected, nil
}

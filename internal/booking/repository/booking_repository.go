package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tradeflow/internal/domain"
	apperrors "tradeflow/internal/errors"
	"tradeflow/internal/infrastructure/mysql"
)

type MySQLBookingRepository struct {
	db *sql.DB
}

func NewMySQLBookingRepository(db *sql.DB) *MySQLBookingRepository {
	return &MySQLBookingRepository{db: db}
}

func (r *MySQLBookingRepository) FindByID(ctx context.Context, id uint) (*domain.Booking, error) {
	query := `
		SELECT id, orderId, reference, carrier, status, createdAt, updatedAt
		FROM Bookings
		WHERE id = ?`

	var (
		b       domain.Booking
		orderID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &orderID, &b.Reference, &b.Carrier, &b.StatusCode, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying booking by id: %w", err)
	}

	if orderID.Valid {
		oid := uint(orderID.Int64)
		b.OrderID = &oid
	}
	return &b, nil
}

func (r *MySQLBookingRepository) Insert(ctx context.Context, b domain.Booking) (uint, error) {
	query := `
		INSERT INTO Bookings (orderId, reference, carrier, status, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?)`

	var orderID any
	if b.OrderID != nil {
		orderID = *b.OrderID
	}

	result, err := r.db.ExecContext(ctx, query, orderID, b.Reference, b.Carrier, b.StatusCode, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return 0, mysql.Translate(fmt.Errorf("inserting booking: %w", err), fmt.Sprintf("booking %s already exists", b.Reference))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting booking id: %w", err)
	}
	return uint(id), nil
}

func (r *MySQLBookingRepository) UpdateStatus(ctx context.Context, id uint, code int) error {
	query := `UPDATE Bookings SET status = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, code, id)
	if err != nil {
		return mysql.Translate(fmt.Errorf("updating booking status: %w", err), "")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("booking with id %d not found", id))
	}

	return nil
}

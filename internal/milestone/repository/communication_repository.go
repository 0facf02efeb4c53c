package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tradeflow/internal/domain"
)

type MySQLCommunicationRepository struct {
	db *sql.DB
}

func NewMySQLCommunicationRepository(db *sql.DB) *MySQLCommunicationRepository {
	return &MySQLCommunicationRepository{db: db}
}

func (r *MySQLCommunicationRepository) Insert(ctx context.Context, tx *sql.Tx, c domain.Communication) (uint, error) {
	query := `
		INSERT INTO Communications (orderId, userId, type, subject, body, createdAt)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query, c.OrderID, c.UserID, c.Type, c.Subject, c.Body, c.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("inserting communication: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(id), nil
}

func (r *MySQLCommunicationRepository) ListByOrder(ctx context.Context, orderID uint) ([]domain.Communication, error) {
	query := `
		SELECT id, orderId, userId, type, subject, body, createdAt
		FROM Communications
		WHERE orderId = ?
		ORDER BY createdAt ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying communications: %w", err)
	}
	defer rows.Close()

	var communications []domain.Communication
	for rows.Next() {
		var c domain.Communication
		if err := rows.Scan(&c.ID, &c.OrderID, &c.UserID, &c.Type, &c.Subject, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning communication row: %w", err)
		}
		communications = append(communications, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating communication rows: %w", err)
	}

	return communications, nil
}

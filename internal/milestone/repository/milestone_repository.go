package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tradeflow/internal/domain"
	apperrors "tradeflow/internal/errors"
)

type MySQLMilestoneRepository struct {
	db *sql.DB
}

func NewMySQLMilestoneRepository(db *sql.DB) *MySQLMilestoneRepository {
	return &MySQLMilestoneRepository{db: db}
}

const milestoneColumns = `
	id, orderId, type, status, title, description, dueDate, completedDate,
	completedBy, priority, visible, createdAt, updatedAt`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMilestone(s rowScanner) (domain.Milestone, error) {
	var (
		m           domain.Milestone
		typ         string
		dueDate     sql.NullTime
		completedAt sql.NullTime
		completedBy sql.NullInt64
	)

	err := s.Scan(
		&m.ID, &m.OrderID, &typ, &m.Status, &m.Title, &m.Description,
		&dueDate, &completedAt, &completedBy,
		&m.Priority, &m.Visible, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return m, err
	}

	m.Type = domain.MilestoneType(typ)
	if dueDate.Valid {
		m.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		m.CompletedDate = &completedAt.Time
	}
	if completedBy.Valid {
		uid := uint(completedBy.Int64)
		m.CompletedBy = &uid
	}
	return m, nil
}

func collectMilestones(rows *sql.Rows) ([]domain.Milestone, error) {
	defer rows.Close()

	var milestones []domain.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning milestone row: %w", err)
		}
		milestones = append(milestones, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating milestone rows: %w", err)
	}

	return milestones, nil
}

func (r *MySQLMilestoneRepository) FindByID(ctx context.Context, id uint) (*domain.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM Milestones WHERE id = ?`

	m, err := scanMilestone(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("milestone with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying milestone by id: %w", err)
	}

	return &m, nil
}

// FindByOrderForUpdate returns every milestone of the order, visible or
// not, holding locks on the rows until tx ends.
func (r *MySQLMilestoneRepository) FindByOrderForUpdate(ctx context.Context, tx *sql.Tx, orderID uint) ([]domain.Milestone, error) {
	query := `SELECT ` + milestoneColumns + `
		FROM Milestones
		WHERE orderId = ?
		ORDER BY id ASC
		FOR UPDATE`

	rows, err := tx.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying milestones for update: %w", err)
	}

	return collectMilestones(rows)
}

// ListVisibleByOrder returns visible milestones in creation order.
func (r *MySQLMilestoneRepository) ListVisibleByOrder(ctx context.Context, orderID uint) ([]domain.Milestone, error) {
	query := `SELECT ` + milestoneColumns + `
		FROM Milestones
		WHERE orderId = ? AND visible = 1
		ORDER BY createdAt ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying milestones: %w", err)
	}

	return collectMilestones(rows)
}

// ListOverdue returns visible pending milestones whose due date is before now.
func (r *MySQLMilestoneRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Milestone, error) {
	query := `SELECT ` + milestoneColumns + `
		FROM Milestones
		WHERE status = ? AND visible = 1 AND dueDate IS NOT NULL AND dueDate < ?
		ORDER BY dueDate ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, domain.MilestoneStatusPending, now)
	if err != nil {
		return nil, fmt.Errorf("querying overdue milestones: %w", err)
	}

	return collectMilestones(rows)
}

func (r *MySQLMilestoneRepository) Insert(ctx context.Context, tx *sql.Tx, m domain.Milestone) (uint, error) {
	query := `
		INSERT INTO Milestones (orderId, type, status, title, description, dueDate,
		                        completedDate, completedBy, priority, visible, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		m.OrderID, string(m.Type), m.Status, m.Title, m.Description, m.DueDate,
		m.CompletedDate, m.CompletedBy, m.Priority, m.Visible, m.CreatedAt, m.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting milestone: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(id), nil
}

// MarkCompleted promotes a pending milestone. A row that is no longer
// pending yields a ConflictError.
func (r *MySQLMilestoneRepository) MarkCompleted(ctx context.Context, tx *sql.Tx, id uint, userID uint, at time.Time) error {
	query := `
		UPDATE Milestones
		SET status = ?, completedDate = ?, completedBy = ?
		WHERE id = ? AND status = ?
	`

	result, err := tx.ExecContext(ctx, query,
		domain.MilestoneStatusCompleted, at, userID, id, domain.MilestoneStatusPending,
	)
	if err != nil {
		return fmt.Errorf("completing milestone: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewConflictError(fmt.Sprintf("milestone with id %d is not pending", id))
	}

	return nil
}

// UpdateDetails writes the editable fields of m. Status and completion
// columns are never touched here.
func (r *MySQLMilestoneRepository) UpdateDetails(ctx context.Context, tx *sql.Tx, m domain.Milestone) error {
	query := `
		UPDATE Milestones
		SET title = ?, description = ?, dueDate = ?, priority = ?, visible = ?
		WHERE id = ?
	`

	result, err := tx.ExecContext(ctx, query, m.Title, m.Description, m.DueDate, m.Priority, m.Visible, m.ID)
	if err != nil {
		return fmt.Errorf("updating milestone: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("milestone with id %d not found", m.ID))
	}

	return nil
}

package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// UnitOfWork runs a function inside one transaction at a fixed isolation
// level. The transaction commits only when the function returns nil; every
// other exit, including a panic, rolls it back.
type UnitOfWork struct {
	db      TxBeginner
	opts    sql.TxOptions
	timeout time.Duration
}

func NewUnitOfWork(db TxBeginner, isolation sql.IsolationLevel, timeout time.Duration) *UnitOfWork {
	return &UnitOfWork{
		db:      db,
		opts:    sql.TxOptions{Isolation: isolation},
		timeout: timeout,
	}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	tx, err := u.db.BeginTx(ctx, &u.opts)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	committed = true

	return nil
}

package mysql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeflow/internal/testutil"
)

type failingBeginner struct {
	err  error
	opts *sql.TxOptions
}

func (f *failingBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	f.opts = opts
	return nil, f.err
}

// Unit Tests

func TestUnitOfWork_BeginFailure(t *testing.T) {
	beginner := &failingBeginner{err: errors.New("too many connections")}
	uow := NewUnitOfWork(beginner, sql.LevelSerializable, time.Second)

	called := false
	err := uow.Do(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "beginning transaction")
	assert.False(t, called)
	assert.Equal(t, sql.LevelSerializable, beginner.opts.Isolation)
}

// Integration Tests

func TestUnitOfWork_CommitsOnSuccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	uow := NewUnitOfWork(db, sql.LevelSerializable, 5*time.Second)

	err := uow.Do(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO Orders (reference) VALUES ('PO-COMMIT')`)
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM Orders WHERE reference = 'PO-COMMIT'`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestUnitOfWork_RollsBackOnError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	uow := NewUnitOfWork(db, sql.LevelSerializable, 5*time.Second)
	boom := errors.New("cascade step failed")

	err := uow.Do(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO Orders (reference) VALUES ('PO-ROLLBACK')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM Orders WHERE reference = 'PO-ROLLBACK'`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestUnitOfWork_RollsBackOnPanic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	uow := NewUnitOfWork(db, sql.LevelSerializable, 5*time.Second)

	assert.Panics(t, func() {
		_ = uow.Do(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `INSERT INTO Orders (reference) VALUES ('PO-PANIC')`); err != nil {
				return err
			}
			panic("unexpected")
		})
	})

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM Orders WHERE reference = 'PO-PANIC'`).Scan(&count))
	assert.Equal(t, 0, count)
}

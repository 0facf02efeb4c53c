package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/tradeflow_test?parseTime=true&clientFoundRows=true"

// SetupTestDB opens the MySQL database named by TEST_MYSQL_DSN (or a local
// tradeflow_test database) and skips the test when it is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties every table and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	TruncateTables(t, db)
	db.Close()
}

// TruncateTables deletes all rows, children first.
func TruncateTables(t *testing.T, db *sql.DB) {
	tables := []string{"Communications", "Milestones", "Invoices", "Bookings", "Orders"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// Schema is the DDL the repositories run against.
var Schema = []struct {
	Name  string
	Query string
}{
	{"Orders", `
	CREATE TABLE IF NOT EXISTS Orders (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		reference VARCHAR(64) NOT NULL DEFAULT '',
		status VARCHAR(50) NOT NULL DEFAULT 'Pending',
		createdAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updatedAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6)
	)`},
	{"Invoices", `
	CREATE TABLE IF NOT EXISTS Invoices (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		invoiceNumber VARCHAR(64) NOT NULL,
		expectedstockstatus VARCHAR(20) NOT NULL DEFAULT 'planning',
		createdAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updatedAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		FOREIGN KEY (orderId) REFERENCES Orders(id),
		INDEX idx_invoice_order (orderId)
	)`},
	{"Milestones", `
	CREATE TABLE IF NOT EXISTS Milestones (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		type VARCHAR(32) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		dueDate DATETIME(6) NULL,
		completedDate DATETIME(6) NULL,
		completedBy INT UNSIGNED NULL,
		priority VARCHAR(16) NOT NULL DEFAULT 'medium',
		visible TINYINT(1) NOT NULL DEFAULT 1,
		createdAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updatedAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		FOREIGN KEY (orderId) REFERENCES Orders(id),
		UNIQUE KEY uq_milestone_order_type (orderId, type)
	)`},
	{"Communications", `
	CREATE TABLE IF NOT EXISTS Communications (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		userId INT UNSIGNED NOT NULL,
		type VARCHAR(32) NOT NULL,
		subject VARCHAR(255) NOT NULL,
		body TEXT NOT NULL,
		createdAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		FOREIGN KEY (orderId) REFERENCES Orders(id),
		INDEX idx_communication_order (orderId)
	)`},
	{"Bookings", `
	CREATE TABLE IF NOT EXISTS Bookings (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NULL,
		reference VARCHAR(64) NOT NULL,
		carrier VARCHAR(128) NOT NULL DEFAULT '',
		status TINYINT UNSIGNED NOT NULL DEFAULT 1,
		createdAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updatedAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_bookings_reference (reference)
	)`},
}

// SetupTestTables creates the tables the tests need.
func SetupTestTables(t *testing.T, db *sql.DB) {
	for _, tbl := range Schema {
		_, err := db.Exec(tbl.Query)
		if err != nil {
			t.Logf("failed to create table %s: %v", tbl.Name, err)
		}
	}
}

func InsertOrder(t *testing.T, db *sql.DB, reference string) uint {
	t.Helper()
	result, err := db.Exec(`INSERT INTO Orders (reference) VALUES (?)`, reference)
	require.NoError(t, err)

	id, err := result.LastInsertId()
	require.NoError(t, err)
	return uint(id)
}

func InsertInvoice(t *testing.T, db *sql.DB, orderID uint, number string) uint {
	t.Helper()
	result, err := db.Exec(`INSERT INTO Invoices (orderId, invoiceNumber) VALUES (?, ?)`, orderID, number)
	require.NoError(t, err)

	id, err := result.LastInsertId()
	require.NoError(t, err)
	return uint(id)
}

// CountByOrder returns how many rows of table belong to orderID.
func CountByOrder(t *testing.T, db *sql.DB, table string, orderID uint) int {
	t.Helper()
	var count int
	err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE orderId = ?", table), orderID).Scan(&count)
	require.NoError(t, err)
	return count
}

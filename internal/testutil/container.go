package testutil

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
)

// MySQLContainer is a throwaway MySQL server with the schema applied.
type MySQLContainer struct {
	container *tcmysql.MySQLContainer
	DB        *sql.DB
}

// StartMySQL runs mysql:8.0 in Docker and creates the tables.
func StartMySQL(ctx context.Context) (*MySQLContainer, error) {
	container, err := tcmysql.Run(ctx,
		"mysql:8.0.36",
		tcmysql.WithDatabase("tradeflow_test"),
		tcmysql.WithUsername("tradeflow"),
		tcmysql.WithPassword("tradeflow"),
	)
	if err != nil {
		return nil, fmt.Errorf("starting mysql container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "parseTime=true", "clientFoundRows=true")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("building connection string: %w", err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("opening container database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("pinging container database: %w", err)
	}

	for _, tbl := range Schema {
		if _, err := db.ExecContext(ctx, tbl.Query); err != nil {
			db.Close()
			_ = testcontainers.TerminateContainer(container)
			return nil, fmt.Errorf("creating table %s: %w", tbl.Name, err)
		}
	}

	return &MySQLContainer{container: container, DB: db}, nil
}

func (c *MySQLContainer) Terminate() error {
	if c.DB != nil {
		c.DB.Close()
	}
	return testcontainers.TerminateContainer(c.container)
}

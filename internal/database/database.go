// Package database manages SQL connections, pooling, and transaction
// propagation for the repositories.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Config holds connection and pool settings for one database.
type Config struct {
	Driver             string
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// supportedDrivers are the drivers this build links. Checked up front so a
// config typo fails with a clear message instead of sql.Open's generic one.
var supportedDrivers = map[string]bool{
	"postgres": true,
	"mysql":    true,
	"sqlite":   true,
}

// Connect opens a pooled connection and verifies it with a ping. sql.Open is
// lazy, so without the ping a bad connection string would only surface on the
// first query.
func Connect(cfg Config) (*sql.DB, error) {
	if !supportedDrivers[cfg.Driver] {
		return nil, fmt.Errorf("unsupported database driver %q: use postgres, mysql, or sqlite", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

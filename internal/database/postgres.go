// Package database holds the run-history connection and schema.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/xalts/authsuite/internal/config"
)

// DB is the shared run-history connection, set by Connect
var DB *sql.DB

const pingTimeout = 5 * time.Second

// Open opens and verifies a PostgreSQL connection
func Open(cfg *config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A run writes one row per scenario from a single goroutine
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Connect opens the shared connection
func Connect(cfg *config.PostgresConfig) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Close closes the shared connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

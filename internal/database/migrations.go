package database

import (
	"database/sql"
	"fmt"
	"log"
)

const schema = `
CREATE TABLE IF NOT EXISTS test_runs (
	id VARCHAR(64) PRIMARY KEY,
	specs TEXT[] NOT NULL,
	base_url TEXT NOT NULL,
	browser VARCHAR(32) NOT NULL,
	status VARCHAR(32) NOT NULL,
	total INTEGER NOT NULL DEFAULT 0,
	passed INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_test_runs_started_at ON test_runs(started_at DESC);

CREATE TABLE IF NOT EXISTS scenario_results (
	id UUID PRIMARY KEY,
	run_id VARCHAR(64) NOT NULL REFERENCES test_runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	spec VARCHAR(255) NOT NULL,
	scenario_id VARCHAR(32) NOT NULL,
	title TEXT NOT NULL,
	status VARCHAR(32) NOT NULL,
	error TEXT,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	screenshot TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_scenario_results_run ON scenario_results(run_id, position);
`

// Migrate creates the run-history tables on db
func Migrate(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database connection not initialized")
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create run history tables: %w", err)
	}
	return nil
}

// RunMigrations migrates the shared connection
func RunMigrations() error {
	if err := Migrate(DB); err != nil {
		return err
	}
	log.Println("Database migrations completed successfully")
	return nil
}

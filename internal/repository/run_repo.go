// Package repository persists run history in PostgreSQL.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/xalts/authsuite/internal/database"
	"github.com/xalts/authsuite/internal/models"
)

// ErrRunNotFound is returned when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

// RunRepository handles database operations for runs and their results
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a repository on the shared connection
func NewRunRepository() *RunRepository {
	return &RunRepository{
		db: database.DB,
	}
}

// NewRunRepositoryWithDB creates a repository with a specific database connection
func NewRunRepositoryWithDB(db *sql.DB) *RunRepository {
	return &RunRepository{
		db: db,
	}
}

// CreateRun inserts a new run
func (r *RunRepository) CreateRun(run *models.Run) error {
	query := `
		INSERT INTO test_runs (id, specs, base_url, browser, status, total, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(query,
		run.ID,
		pq.Array(run.Specs),
		run.BaseURL,
		run.Browser,
		run.Status,
		run.Total,
		run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// AddResult inserts one scenario result
func (r *RunRepository) AddResult(result *models.ScenarioResult) error {
	query := `
		INSERT INTO scenario_results
			(id, run_id, position, spec, scenario_id, title, status, error, duration_ms, screenshot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, NULLIF($10, ''), $11)
	`

	_, err := r.db.Exec(query,
		result.ID,
		result.RunID,
		result.Position,
		result.Spec,
		result.ScenarioID,
		result.Title,
		result.Status,
		result.Error,
		result.Duration.Milliseconds(),
		result.Screenshot,
		result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add result %s: %w", result.ScenarioID, err)
	}
	return nil
}

// UpdateRun stores the status, counts and finish time of a run
func (r *RunRepository) UpdateRun(run *models.Run) error {
	query := `
		UPDATE test_runs
		SET status = $1, passed = $2, failed = $3, skipped = $4, finished_at = $5
		WHERE id = $6
	`

	var finishedAt sql.NullTime
	if !run.FinishedAt.IsZero() {
		finishedAt = sql.NullTime{Time: run.FinishedAt, Valid: true}
	}

	result, err := r.db.Exec(query, run.Status, run.Passed, run.Failed, run.Skipped, finishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}
	return nil
}

const runColumns = `id, specs, base_url, browser, status, total, passed, failed, skipped, started_at, finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	run := &models.Run{}
	var finishedAt sql.NullTime
	err := row.Scan(
		&run.ID,
		pq.Array(&run.Specs),
		&run.BaseURL,
		&run.Browser,
		&run.Status,
		&run.Total,
		&run.Passed,
		&run.Failed,
		&run.Skipped,
		&run.StartedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return run, nil
}

// GetRun retrieves a run by id
func (r *RunRepository) GetRun(id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM test_runs WHERE id = $1`

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first
func (r *RunRepository) ListRuns(limit int) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM test_runs ORDER BY started_at DESC LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// ListResults returns the results of a run in execution order
func (r *RunRepository) ListResults(runID string) ([]*models.ScenarioResult, error) {
	query := `
		SELECT id, run_id, position, spec, scenario_id, title, status,
		       COALESCE(error, ''), duration_ms, COALESCE(screenshot, ''), created_at
		FROM scenario_results
		WHERE run_id = $1
		ORDER BY position
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []*models.ScenarioResult
	for rows.Next() {
		res := &models.ScenarioResult{}
		var durationMS int64
		if err := rows.Scan(
			&res.ID,
			&res.RunID,
			&res.Position,
			&res.Spec,
			&res.ScenarioID,
			&res.Title,
			&res.Status,
			&res.Error,
			&durationMS,
			&res.Screenshot,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		res.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}

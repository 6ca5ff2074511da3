// Package services records runs into history and reads them back.
package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/xalts/authsuite/internal/models"
	"github.com/xalts/authsuite/internal/suite"
)

// ErrNoActiveRun is returned when a result arrives outside a run
var ErrNoActiveRun = errors.New("no run in progress")

// RunRepository defines the interface for run persistence
type RunRepository interface {
	CreateRun(run *models.Run) error
	AddResult(result *models.ScenarioResult) error
	UpdateRun(run *models.Run) error
	GetRun(id string) (*models.Run, error)
	ListRuns(limit int) ([]*models.Run, error)
	ListResults(runID string) ([]*models.ScenarioResult, error)
}

// RunHistory is the read side used by the report server
type RunHistory interface {
	RecentRuns(limit int) ([]*models.Run, error)
	GetRun(id string) (*models.Run, []*models.ScenarioResult, error)
}

// RunService stores runs as they execute. It implements suite.Recorder.
type RunService struct {
	repo RunRepository

	mu      sync.Mutex
	current *models.Run
}

var _ suite.Recorder = (*RunService)(nil)

// NewRunService creates a new run service
func NewRunService(repo RunRepository) *RunService {
	return &RunService{repo: repo}
}

// RunStarted persists a new running run
func (s *RunService) RunStarted(report *suite.Report) error {
	run, err := models.NewRun(report.RunID, report.Specs, report.BaseURL, report.Browser, report.Total)
	if err != nil {
		return fmt.Errorf("invalid run: %w", err)
	}
	if !report.StartedAt.IsZero() {
		run.StartedAt = report.StartedAt
	}

	if err := s.repo.CreateRun(run); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	s.mu.Lock()
	s.current = run
	s.mu.Unlock()
	return nil
}

// ScenarioFinished persists one result and updates the run counts
func (s *RunService) ScenarioFinished(_ *suite.Report, result suite.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return fmt.Errorf("%w: dropping %s", ErrNoActiveRun, result.ID)
	}

	res, err := models.NewScenarioResult(s.current.ID, result.Spec, result.ID, result.Title, models.ResultStatus(result.Status))
	if err != nil {
		return fmt.Errorf("invalid result: %w", err)
	}
	res.Position = s.current.Recorded()
	res.Error = result.Err
	res.Duration = result.Duration
	res.Screenshot = result.Screenshot

	// Counted even when the write below fails
	if err := s.current.Record(res); err != nil {
		return err
	}
	if err := s.repo.AddResult(res); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

// RunFinished moves the run to its final status
func (s *RunService) RunFinished(report *suite.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.current
	if run == nil {
		return ErrNoActiveRun
	}
	s.current = nil

	if err := run.Finish(report.Aborted); err != nil {
		return err
	}
	if !report.FinishedAt.IsZero() {
		run.FinishedAt = report.FinishedAt
	}

	if err := s.repo.UpdateRun(run); err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first
func (s *RunService) RecentRuns(limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	runs, err := s.repo.ListRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a run with its results in execution order
func (s *RunService) GetRun(id string) (*models.Run, []*models.ScenarioResult, error) {
	run, err := s.repo.GetRun(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get run: %w", err)
	}
	results, err := s.repo.ListResults(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get results: %w", err)
	}
	return run, results, nil
}

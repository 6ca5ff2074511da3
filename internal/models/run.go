package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents valid run states
type RunStatus string

// Run statuses
const (
	RunStatusRunning RunStatus = "running"
	RunStatusPassed  RunStatus = "passed"
	RunStatusFailed  RunStatus = "failed"
	RunStatusAborted RunStatus = "aborted"
)

// ResultStatus is the outcome of one stored scenario
type ResultStatus string

// Result statuses
const (
	ResultStatusPassed  ResultStatus = "passed"
	ResultStatusFailed  ResultStatus = "failed"
	ResultStatusSkipped ResultStatus = "skipped"
)

// Run is one execution of the selected suites against a portal
type Run struct {
	ID         string
	Specs      []string
	BaseURL    string
	Browser    string
	Status     RunStatus
	Total      int
	Passed     int
	Failed     int
	Skipped    int
	StartedAt  time.Time
	FinishedAt time.Time
}

// ScenarioResult is one stored scenario outcome of a run
type ScenarioResult struct {
	ID         string
	RunID      string
	Position   int
	Spec       string
	ScenarioID string
	Title      string
	Status     ResultStatus
	Error      string
	Duration   time.Duration
	Screenshot string
	CreatedAt  time.Time
}

// Domain errors
var (
	ErrInvalidBaseURL          = errors.New("base URL cannot be empty")
	ErrNoSpecs                 = errors.New("run must select at least one spec")
	ErrInvalidTotal            = errors.New("scenario total cannot be negative")
	ErrInvalidStatusTransition = errors.New("invalid run status transition")
	ErrRunFinished             = errors.New("run is already finished")
	ErrRunMismatch             = errors.New("result belongs to another run")
	ErrInvalidScenario         = errors.New("scenario id cannot be empty")
	ErrInvalidResultStatus     = errors.New("unknown result status")
)

// NewRun creates a running run. An empty id gets a generated one.
func NewRun(id string, specs []string, baseURL, browser string, total int) (*Run, error) {
	if baseURL == "" {
		return nil, ErrInvalidBaseURL
	}
	if len(specs) == 0 {
		return nil, ErrNoSpecs
	}
	if total < 0 {
		return nil, ErrInvalidTotal
	}
	if id == "" {
		id = uuid.New().String()
	}

	return &Run{
		ID:        id,
		Specs:     append([]string(nil), specs...),
		BaseURL:   baseURL,
		Browser:   browser,
		Status:    RunStatusRunning,
		Total:     total,
		StartedAt: time.Now(),
	}, nil
}

// NewScenarioResult creates a result for runID with validation
func NewScenarioResult(runID, spec, scenarioID, title string, status ResultStatus) (*ScenarioResult, error) {
	if scenarioID == "" {
		return nil, ErrInvalidScenario
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResultStatus, status)
	}

	return &ScenarioResult{
		ID:         uuid.New().String(),
		RunID:      runID,
		Spec:       spec,
		ScenarioID: scenarioID,
		Title:      title,
		Status:     status,
		CreatedAt:  time.Now(),
	}, nil
}

// Valid reports whether s is a known result status
func (s ResultStatus) Valid() bool {
	switch s {
	case ResultStatusPassed, ResultStatusFailed, ResultStatusSkipped:
		return true
	}
	return false
}

// Record counts result towards the run
func (r *Run) Record(result *ScenarioResult) error {
	if r.IsFinished() {
		return fmt.Errorf("%w: cannot record %s", ErrRunFinished, result.ScenarioID)
	}
	if result.RunID != r.ID {
		return fmt.Errorf("%w: %s is not %s", ErrRunMismatch, result.RunID, r.ID)
	}

	switch result.Status {
	case ResultStatusPassed:
		r.Passed++
	case ResultStatusFailed:
		r.Failed++
	case ResultStatusSkipped:
		r.Skipped++
	default:
		return fmt.Errorf("%w: %q", ErrInvalidResultStatus, result.Status)
	}
	return nil
}

// Finish moves a running run to its final status
func (r *Run) Finish(aborted bool) error {
	if r.Status != RunStatusRunning {
		return fmt.Errorf("%w: cannot finish run with status %s", ErrInvalidStatusTransition, r.Status)
	}

	switch {
	case aborted:
		r.Status = RunStatusAborted
	case r.Failed > 0 || r.Skipped > 0:
		r.Status = RunStatusFailed
	default:
		r.Status = RunStatusPassed
	}
	r.FinishedAt = time.Now()
	return nil
}

// IsFinished returns true once the run left running
func (r *Run) IsFinished() bool {
	return r.Status != RunStatusRunning
}

// Recorded returns how many results were counted so far
func (r *Run) Recorded() int {
	return r.Passed + r.Failed + r.Skipped
}

// Duration returns the wall time of a finished run
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// GetFormattedDuration returns the duration rounded for display
func (r *Run) GetFormattedDuration() string {
	if !r.IsFinished() {
		return "in progress"
	}
	return r.Duration().Round(100 * time.Millisecond).String()
}

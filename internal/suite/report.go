package suite

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Status is the outcome of one scenario
type Status string

// Scenario outcomes
const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one scenario
type Result struct {
	Spec       string        `json:"spec"`
	Suite      string        `json:"suite"`
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Status     Status        `json:"status"`
	Err        string        `json:"error,omitempty"`
	Duration   time.Duration `json:"durationNs"`
	Screenshot string        `json:"screenshot,omitempty"`
}

// Name returns the scenario's display name
func (r Result) Name() string {
	return fmt.Sprintf("%s (%s)", r.Title, r.ID)
}

// Report is the outcome of a whole run
type Report struct {
	RunID      string    `json:"runId"`
	Specs      []string  `json:"specs"`
	BaseURL    string    `json:"baseUrl"`
	Browser    string    `json:"browser"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Total      int       `json:"total"`
	Aborted    bool      `json:"aborted"`
	Results    []Result  `json:"results"`
}

// Count returns how many results have status
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Passed returns the number of passed scenarios
func (r *Report) Passed() int { return r.Count(StatusPassed) }

// Failed returns the number of failed scenarios
func (r *Report) Failed() int { return r.Count(StatusFailed) }

// Skipped returns the number of skipped scenarios
func (r *Report) Skipped() int { return r.Count(StatusSkipped) }

// OK reports whether every scenario ran and passed
func (r *Report) OK() bool {
	return !r.Aborted && r.Failed() == 0 && r.Skipped() == 0
}

// Duration returns the wall time of the run
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// JSONRecorder writes the finished report to a file
type JSONRecorder struct {
	Path string
}

// RunStarted implements Recorder
func (j *JSONRecorder) RunStarted(*Report) error { return nil }

// ScenarioFinished implements Recorder
func (j *JSONRecorder) ScenarioFinished(*Report, Result) error { return nil }

// RunFinished writes the report as indented JSON
func (j *JSONRecorder) RunFinished(report *Report) error {
	if err := os.MkdirAll(filepath.Dir(j.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(j.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

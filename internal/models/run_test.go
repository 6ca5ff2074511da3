package models

import (
	"errors"
	"testing"
	"time"
)

func TestNewRun(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		specs   []string
		baseURL string
		total   int
		wantErr error
	}{
		{
			name:    "valid run",
			id:      "run-1",
			specs:   []string{"auth/signup"},
			baseURL: "https://portal.example.com",
			total:   5,
			wantErr: nil,
		},
		{
			name:    "generated id",
			id:      "",
			specs:   []string{"auth/signup", "auth/signin"},
			baseURL: "https://portal.example.com",
			total:   9,
			wantErr: nil,
		},
		{
			name:    "empty base URL",
			specs:   []string{"auth/signup"},
			baseURL: "",
			total:   5,
			wantErr: ErrInvalidBaseURL,
		},
		{
			name:    "no specs",
			specs:   nil,
			baseURL: "https://portal.example.com",
			total:   0,
			wantErr: ErrNoSpecs,
		},
		{
			name:    "negative total",
			specs:   []string{"auth/signup"},
			baseURL: "https://portal.example.com",
			total:   -1,
			wantErr: ErrInvalidTotal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, err := NewRun(tt.id, tt.specs, tt.baseURL, "chromium", tt.total)

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("NewRun() error = %v, wantErr %v", err, tt.wantErr)
				}
				if run != nil {
					t.Error("Expected run to be nil when error occurs")
				}
				return
			}

			if err != nil {
				t.Errorf("NewRun() unexpected error = %v", err)
				return
			}

			if run.ID == "" {
				t.Error("Run ID should not be empty")
			}
			if tt.id != "" && run.ID != tt.id {
				t.Errorf("Expected ID %s, got %s", tt.id, run.ID)
			}
			if run.Status != RunStatusRunning {
				t.Errorf("Expected status %s, got %s", RunStatusRunning, run.Status)
			}
			if run.Total != tt.total {
				t.Errorf("Expected total %d, got %d", tt.total, run.Total)
			}
			if run.StartedAt.IsZero() {
				t.Error("StartedAt should be set")
			}
		})
	}
}

func TestNewRun_CopiesSpecs(t *testing.T) {
	specs := []string{"auth/signup"}
	run, err := NewRun("run-1", specs, "https://portal.example.com", "chromium", 1)
	if err != nil {
		t.Fatalf("NewRun() unexpected error = %v", err)
	}

	specs[0] = "changed"
	if run.Specs[0] != "auth/signup" {
		t.Errorf("Run specs changed with caller slice: %v", run.Specs)
	}
}

func TestNewScenarioResult(t *testing.T) {
	tests := []struct {
		name       string
		scenarioID string
		status     ResultStatus
		wantErr    error
	}{
		{name: "passed", scenarioID: "SU-001", status: ResultStatusPassed},
		{name: "failed", scenarioID: "SI-002", status: ResultStatusFailed},
		{name: "skipped", scenarioID: "SO-001", status: ResultStatusSkipped},
		{name: "missing scenario id", scenarioID: "", status: ResultStatusPassed, wantErr: ErrInvalidScenario},
		{name: "unknown status", scenarioID: "SU-001", status: "flaky", wantErr: ErrInvalidResultStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewScenarioResult("run-1", "auth/signup", tt.scenarioID, "title", tt.status)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewScenarioResult() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewScenarioResult() unexpected error = %v", err)
			}
			if result.ID == "" {
				t.Error("Result ID should not be empty")
			}
			if result.RunID != "run-1" {
				t.Errorf("Expected run ID run-1, got %s", result.RunID)
			}
		})
	}
}

func TestRun_Record(t *testing.T) {
	run := &Run{ID: "run-1", Status: RunStatusRunning, Total: 3}

	for _, status := range []ResultStatus{ResultStatusPassed, ResultStatusFailed, ResultStatusSkipped} {
		if err := run.Record(&ScenarioResult{RunID: "run-1", ScenarioID: "X", Status: status}); err != nil {
			t.Fatalf("Record(%s) unexpected error = %v", status, err)
		}
	}

	if run.Passed != 1 || run.Failed != 1 || run.Skipped != 1 {
		t.Errorf("Unexpected counts: passed=%d failed=%d skipped=%d", run.Passed, run.Failed, run.Skipped)
	}
	if run.Recorded() != 3 {
		t.Errorf("Expected 3 recorded results, got %d", run.Recorded())
	}
}

func TestRun_RecordRejected(t *testing.T) {
	tests := []struct {
		name    string
		run     *Run
		result  *ScenarioResult
		wantErr error
	}{
		{
			name:    "finished run",
			run:     &Run{ID: "run-1", Status: RunStatusPassed},
			result:  &ScenarioResult{RunID: "run-1", ScenarioID: "SU-001", Status: ResultStatusPassed},
			wantErr: ErrRunFinished,
		},
		{
			name:    "other run",
			run:     &Run{ID: "run-1", Status: RunStatusRunning},
			result:  &ScenarioResult{RunID: "run-2", ScenarioID: "SU-001", Status: ResultStatusPassed},
			wantErr: ErrRunMismatch,
		},
		{
			name:    "unknown status",
			run:     &Run{ID: "run-1", Status: RunStatusRunning},
			result:  &ScenarioResult{RunID: "run-1", ScenarioID: "SU-001", Status: "flaky"},
			wantErr: ErrInvalidResultStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run.Record(tt.result)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Record() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.run.Recorded() != 0 {
				t.Errorf("Rejected result was counted: %d", tt.run.Recorded())
			}
		})
	}
}

func TestRun_Finish(t *testing.T) {
	tests := []struct {
		name         string
		initialState RunStatus
		failed       int
		skipped      int
		aborted      bool
		wantStatus   RunStatus
		wantErr      bool
	}{
		{
			name:         "all passed",
			initialState: RunStatusRunning,
			wantStatus:   RunStatusPassed,
		},
		{
			name:         "some failed",
			initialState: RunStatusRunning,
			failed:       2,
			wantStatus:   RunStatusFailed,
		},
		{
			name:         "aborted wins over failures",
			initialState: RunStatusRunning,
			failed:       1,
			skipped:      3,
			aborted:      true,
			wantStatus:   RunStatusAborted,
		},
		{
			name:         "cannot finish passed run",
			initialState: RunStatusPassed,
			wantErr:      true,
		},
		{
			name:         "cannot finish failed run",
			initialState: RunStatusFailed,
			wantErr:      true,
		},
		{
			name:         "cannot finish aborted run",
			initialState: RunStatusAborted,
			aborted:      true,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &Run{
				ID:        "run-1",
				Status:    tt.initialState,
				Failed:    tt.failed,
				Skipped:   tt.skipped,
				StartedAt: time.Now(),
			}

			err := run.Finish(tt.aborted)

			if (err != nil) != tt.wantErr {
				t.Errorf("Finish() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStatusTransition) {
					t.Errorf("Expected ErrInvalidStatusTransition, got %v", err)
				}
				if run.Status != tt.initialState {
					t.Errorf("Status changed on rejected transition: %s", run.Status)
				}
				return
			}

			if run.Status != tt.wantStatus {
				t.Errorf("Expected status %s, got %s", tt.wantStatus, run.Status)
			}
			if run.FinishedAt.IsZero() {
				t.Error("FinishedAt should be set")
			}
			if !run.IsFinished() {
				t.Error("Expected run to be finished")
			}
		})
	}
}

func TestRun_GetFormattedDuration(t *testing.T) {
	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		run      *Run
		expected string
	}{
		{
			name:     "running",
			run:      &Run{Status: RunStatusRunning, StartedAt: started},
			expected: "in progress",
		},
		{
			name:     "finished",
			run:      &Run{Status: RunStatusPassed, StartedAt: started, FinishedAt: started.Add(83*time.Second + 420*time.Millisecond)},
			expected: "1m23.4s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.run.GetFormattedDuration()
			if result != tt.expected {
				t.Errorf("GetFormattedDuration() = %s, want %s", result, tt.expected)
			}
		})
	}
}

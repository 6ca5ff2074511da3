package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xalts/authsuite/internal/config"
	"github.com/xalts/authsuite/internal/suite"
)

type stubSession struct{}

func (stubSession) Page() playwright.Page        { return nil }
func (stubSession) Reset() error                 { return nil }
func (stubSession) Screenshot(path string) error { return nil }
func (stubSession) Close() error                 { return nil }

type stubHistory struct {
	started, finished bool
	results           []string
}

func (h *stubHistory) RunStarted(*suite.Report) error { h.started = true; return nil }
func (h *stubHistory) ScenarioFinished(_ *suite.Report, r suite.Result) error {
	h.results = append(h.results, r.ID)
	return nil
}
func (h *stubHistory) RunFinished(*suite.Report) error { h.finished = true; return nil }

func stubLaunch(launched *int, closed *int) LaunchFunc {
	return func(*config.RunConfig) (suite.Launcher, func(), error) {
		*launched++
		return suite.LauncherFunc(func() (suite.Session, error) { return stubSession{}, nil }),
			func() { *closed++ },
			nil
	}
}

func testRunConfig(t *testing.T) *config.RunConfig {
	t.Helper()
	return &config.RunConfig{
		BaseURL:             "https://portal.example.com",
		ViewportWidth:       1280,
		ViewportHeight:      720,
		CommandTimeout:      time.Second,
		PageLoadTimeout:     time.Second,
		ScreenshotOnFailure: true,
		ArtifactsDir:        t.TempDir(),
		Browser:             config.BrowserChromium,
		Headless:            true,
		TestIDAttribute:     config.DefaultTestIDAttribute,
	}
}

func testSuites() []suite.Suite {
	pass := func(*suite.T) error { return nil }
	return []suite.Suite{
		{Spec: "auth/signup", Name: "Sign Up", Scenarios: []suite.Scenario{
			{ID: "SU-001", Title: "passes", Run: pass},
			{ID: "SU-002", Title: "fails", Run: func(*suite.T) error { return errors.New("expected error-message") }},
		}},
		{Spec: "auth/signin", Name: "Sign In", Scenarios: []suite.Scenario{
			{ID: "SI-001", Title: "passes", Run: pass},
		}},
	}
}

func TestRunSuites_RunsSelectionAndReports(t *testing.T) {
	// GIVEN
	cfg := testRunConfig(t)
	var out bytes.Buffer
	var launched, closed int
	history := &stubHistory{}

	// WHEN
	report, err := RunSuites(context.Background(), RunOptions{
		Config:  cfg,
		Suites:  testSuites(),
		Specs:   []string{"auth/signup"},
		Out:     &out,
		Launch:  stubLaunch(&launched, &closed),
		History: history,
	})

	// THEN
	require.NoError(t, err)
	assert.Equal(t, []string{"auth/signup"}, report.Specs)
	assert.Equal(t, 1, report.Passed())
	assert.Equal(t, 1, report.Failed())
	assert.False(t, report.OK())

	assert.Equal(t, 1, launched)
	assert.Equal(t, 1, closed, "browser runtime must be shut down")

	assert.True(t, history.started)
	assert.True(t, history.finished)
	assert.Equal(t, []string{"SU-001", "SU-002"}, history.results)

	_, statErr := os.Stat(cfg.ResultsPath())
	assert.NoError(t, statErr, "results.json should be written")
	assert.Contains(t, out.String(), "1 of 2 scenarios failed")
}

func TestRunSuites_AllPass(t *testing.T) {
	cfg := testRunConfig(t)
	var out bytes.Buffer
	var launched, closed int

	report, err := RunSuites(context.Background(), RunOptions{
		Config: cfg,
		Suites: testSuites(),
		Specs:  []string{"auth/signin"},
		Out:    &out,
		Launch: stubLaunch(&launched, &closed),
	})

	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Contains(t, out.String(), "All specs passed!")
}

func TestRunSuites_CannotStart(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		suites  []suite.Suite
		launch  LaunchFunc
		wantErr string
	}{
		{
			name:    "unmatched spec",
			specs:   []string{"billing/*"},
			suites:  testSuites(),
			wantErr: "matched no suites",
		},
		{
			name:    "nothing registered",
			suites:  nil,
			wantErr: "no suites to run",
		},
		{
			name:   "browser launch fails",
			suites: testSuites(),
			launch: func(*config.RunConfig) (suite.Launcher, func(), error) {
				return nil, nil, errors.New("failed to launch browser: driver missing")
			},
			wantErr: "driver missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			launch := tt.launch
			if launch == nil {
				var launched, closed int
				launch = stubLaunch(&launched, &closed)
			}

			report, err := RunSuites(context.Background(), RunOptions{
				Config: testRunConfig(t),
				Suites: tt.suites,
				Specs:  tt.specs,
				Out:    &bytes.Buffer{},
				Launch: launch,
			})

			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}

func TestInteractive(t *testing.T) {
	tests := []struct {
		name       string
		slowMo     time.Duration
		wantSlowMo time.Duration
	}{
		{name: "raises slow mo", slowMo: 0, wantSlowMo: InteractiveSlowMo},
		{name: "keeps slower setting", slowMo: time.Second, wantSlowMo: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testRunConfig(t)
			cfg.SlowMo = tt.slowMo
			cfg.TrashAssets = true

			got := Interactive(cfg)

			assert.False(t, got.Headless)
			assert.False(t, got.TrashAssets)
			assert.Equal(t, tt.wantSlowMo, got.SlowMo)
			assert.True(t, cfg.Headless, "original config must not change")
			assert.True(t, cfg.TrashAssets, "original config must not change")
		})
	}
}

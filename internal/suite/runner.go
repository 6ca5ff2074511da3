package suite

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xalts/authsuite/internal/commands"
	"github.com/xalts/authsuite/internal/config"
	"github.com/xalts/authsuite/internal/fixtures"
)

// Errors a scenario can fail with besides its own assertions
var (
	ErrSetup    = errors.New("suite setup failed")
	ErrSession  = errors.New("browser session unavailable")
	ErrPanicked = errors.New("scenario panicked")
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9 ._()-]+`)

// Recorder observes a run. Recorder errors are logged and never fail a scenario.
type Recorder interface {
	RunStarted(report *Report) error
	ScenarioFinished(report *Report, result Result) error
	RunFinished(report *Report) error
}

// Runner executes suites one scenario at a time
type Runner struct {
	launcher  Launcher
	config    *config.RunConfig
	fixtures  *fixtures.Store
	recorders []Recorder
	now       func() time.Time
}

// NewRunner creates a runner that opens sessions through launcher
func NewRunner(launcher Launcher, cfg *config.RunConfig, store *fixtures.Store, recorders ...Recorder) *Runner {
	return &Runner{
		launcher:  launcher,
		config:    cfg,
		fixtures:  store,
		recorders: recorders,
		now:       time.Now,
	}
}

// Run executes suites in order and returns the run report. An error is
// returned only when the run could not start at all; scenario failures are
// reported in the Report.
func (r *Runner) Run(ctx context.Context, suites []Suite) (*Report, error) {
	users, err := r.fixtures.Users()
	if err != nil {
		return nil, fmt.Errorf("failed to load fixtures: %w", err)
	}

	if r.config.TrashAssets {
		if err := TrashAssets(r.config); err != nil {
			return nil, err
		}
	}

	report := &Report{
		RunID:     uuid.NewString(),
		Specs:     Specs(suites),
		BaseURL:   r.config.BaseURL,
		Browser:   r.config.Browser,
		StartedAt: r.now(),
	}
	for _, s := range suites {
		report.Total += len(s.Scenarios)
	}

	r.notify("run start", func(rec Recorder) error { return rec.RunStarted(report) })

	for _, s := range suites {
		r.runSuite(ctx, s, users, report)
	}

	report.Aborted = ctx.Err() != nil
	report.FinishedAt = r.now()
	r.notify("run finish", func(rec Recorder) error { return rec.RunFinished(report) })

	return report, nil
}

func (r *Runner) runSuite(ctx context.Context, s Suite, users *fixtures.Users, report *Report) {
	if ctx.Err() != nil {
		r.skipAll(s, s.Scenarios, "run cancelled", report)
		return
	}

	log.Printf("Running %s (%d scenarios)", s.Spec, len(s.Scenarios))

	session, err := r.launcher.NewSession()
	if err != nil {
		r.failAll(s, s.Scenarios, fmt.Errorf("%w: %v", ErrSession, err), report)
		return
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("Warning: failed to close session for %s: %v", s.Spec, err)
		}
	}()

	cmd, err := commands.New(session.Page(), r.config)
	if err != nil {
		r.failAll(s, s.Scenarios, fmt.Errorf("%w: %v", ErrSession, err), report)
		return
	}

	t := &T{
		Ctx:      ctx,
		Session:  session,
		Cmd:      cmd,
		Fixtures: r.fixtures,
		Users:    users,
		spec:     s.Spec,
	}

	if s.Before != nil {
		if err := r.guard(func() error { return s.Before(t) }); err != nil {
			shot := r.captureFailure(session, s.Spec, "before all", "hook")
			setupErr := fmt.Errorf("%w: %v", ErrSetup, err)
			for i, sc := range s.Scenarios {
				res := r.result(s, sc, StatusFailed, setupErr, 0)
				if i == 0 {
					res.Screenshot = shot
				}
				r.record(report, res)
			}
			return
		}
	}

	for i, sc := range s.Scenarios {
		if ctx.Err() != nil {
			r.skipAll(s, s.Scenarios[i:], "run cancelled", report)
			return
		}
		t.id = sc.ID
		r.record(report, r.runScenario(t, s, sc))
	}
}

func (r *Runner) runScenario(t *T, s Suite, sc Scenario) Result {
	started := r.now()

	err := r.guard(func() error {
		if err := t.Session.Reset(); err != nil {
			return err
		}
		if s.BeforeEach != nil {
			if err := s.BeforeEach(t); err != nil {
				return fmt.Errorf("before each: %w", err)
			}
		}
		return sc.Run(t)
	})

	if err == nil {
		return r.result(s, sc, StatusPassed, nil, r.now().Sub(started))
	}

	res := r.result(s, sc, StatusFailed, err, r.now().Sub(started))
	res.Screenshot = r.captureFailure(t.Session, s.Spec, sc.ID, sc.Title)
	return res
}

// guard converts panics in hooks and bodies into failures
func (r *Runner) guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanicked, p)
		}
	}()
	return fn()
}

func (r *Runner) captureFailure(session Session, spec, id, title string) string {
	if !r.config.ScreenshotOnFailure {
		return ""
	}
	name := unsafeFileChars.ReplaceAllString(fmt.Sprintf("%s %s (failed)", id, title), "_")
	path := filepath.Join(r.config.ScreenshotsDir(), filepath.FromSlash(spec), name+".png")
	if err := session.Screenshot(path); err != nil {
		log.Printf("Warning: failed to capture screenshot for %s %s: %v", spec, id, err)
		return ""
	}
	return path
}

// TrashAssets removes the screenshots and videos of earlier runs.
// Runners sharing one artifacts directory trash once, then run with TrashAssets off.
func TrashAssets(cfg *config.RunConfig) error {
	for _, dir := range []string{cfg.ScreenshotsDir(), cfg.VideosDir()} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to trash %s: %w", dir, err)
		}
	}
	return nil
}

func (r *Runner) result(s Suite, sc Scenario, status Status, err error, d time.Duration) Result {
	res := Result{
		Spec:     s.Spec,
		Suite:    s.Name,
		ID:       sc.ID,
		Title:    sc.Title,
		Status:   status,
		Duration: d,
	}
	if err != nil {
		res.Err = err.Error()
	}
	return res
}

func (r *Runner) failAll(s Suite, scenarios []Scenario, err error, report *Report) {
	for _, sc := range scenarios {
		r.record(report, r.result(s, sc, StatusFailed, err, 0))
	}
}

func (r *Runner) skipAll(s Suite, scenarios []Scenario, reason string, report *Report) {
	for _, sc := range scenarios {
		res := r.result(s, sc, StatusSkipped, nil, 0)
		res.Err = reason
		r.record(report, res)
	}
}

func (r *Runner) record(report *Report, res Result) {
	report.Results = append(report.Results, res)
	if res.Status == StatusFailed {
		log.Printf("FAIL %s %s: %s", res.Spec, res.ID, strings.TrimSpace(res.Err))
	}
	r.notify("scenario result", func(rec Recorder) error { return rec.ScenarioFinished(report, res) })
}

func (r *Runner) notify(event string, fn func(Recorder) error) {
	for _, rec := range r.recorders {
		if err := fn(rec); err != nil {
			log.Printf("Warning: recorder failed on %s: %v", event, err)
		}
	}
}

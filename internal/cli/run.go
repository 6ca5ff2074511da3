package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/xalts/authsuite/internal/browser"
	"github.com/xalts/authsuite/internal/config"
	"github.com/xalts/authsuite/internal/fixtures"
	"github.com/xalts/authsuite/internal/suite"
)

// InteractiveSlowMo is the minimum action delay of an interactive run
const InteractiveSlowMo = 250 * time.Millisecond

// LaunchFunc starts the browser runtime and returns a launcher of per-suite
// sessions plus the function that shuts the runtime down
type LaunchFunc func(cfg *config.RunConfig) (suite.Launcher, func(), error)

// RunOptions configures one invocation of the suites
type RunOptions struct {
	Config *config.RunConfig
	Suites []suite.Suite
	// Specs are glob patterns selecting suites; empty runs all of them
	Specs  []string
	Out    io.Writer
	Launch LaunchFunc
	// History receives the run when run history is enabled
	History suite.Recorder
}

// RunSuites selects, runs and reports suites. The error is non-nil only when
// the run could not happen; failing scenarios are in the report.
func RunSuites(ctx context.Context, opts RunOptions) (*suite.Report, error) {
	selected, err := suite.Select(opts.Suites, opts.Specs)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no suites to run")
	}

	store, err := fixtures.Open(opts.Config.FixturesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures: %w", err)
	}

	launch := opts.Launch
	if launch == nil {
		launch = LaunchBrowser
	}
	launcher, shutdown, err := launch(opts.Config)
	if err != nil {
		return nil, err
	}
	defer shutdown()

	recorders := []suite.Recorder{
		suite.NewConsoleReporter(opts.Out),
		&suite.JSONRecorder{Path: opts.Config.ResultsPath()},
	}
	if opts.History != nil {
		recorders = append(recorders, opts.History)
	}

	return suite.NewRunner(launcher, opts.Config, store, recorders...).Run(ctx, selected)
}

// LaunchBrowser starts Playwright with the configured browser
func LaunchBrowser(cfg *config.RunConfig) (suite.Launcher, func(), error) {
	b, err := browser.Launch(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	launcher := suite.LauncherFunc(func() (suite.Session, error) {
		session, err := b.NewSession()
		if err != nil {
			return nil, err
		}
		return session, nil
	})

	shutdown := func() {
		if err := b.Close(); err != nil {
			log.Printf("Warning: failed to close browser: %v", err)
		}
	}
	return launcher, shutdown, nil
}

// Interactive returns a copy of cfg for watching a run: headed, slowed down
// and keeping earlier artifacts.
func Interactive(cfg *config.RunConfig) *config.RunConfig {
	c := *cfg
	c.Headless = false
	if c.SlowMo < InteractiveSlowMo {
		c.SlowMo = InteractiveSlowMo
	}
	c.TrashAssets = false
	return &c
}

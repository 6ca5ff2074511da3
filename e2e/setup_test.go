//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/joho/godotenv"

	"github.com/xalts/authsuite/internal/browser"
	"github.com/xalts/authsuite/internal/config"
	"github.com/xalts/authsuite/internal/fixtures"
	"github.com/xalts/authsuite/internal/suite"
)

var (
	runConfig *config.RunConfig
	runtime   *browser.Browser
	store     *fixtures.Store
)

// TestMain launches one browser for every feature against the configured portal
func TestMain(m *testing.M) {
	_ = godotenv.Load("../.env")

	var err error
	runConfig, err = config.LoadRunConfig(os.Getenv)
	if err != nil {
		panic(err)
	}

	// Artifacts are cleared once for the whole package; each feature appends to them
	if runConfig.TrashAssets {
		if err := suite.TrashAssets(runConfig); err != nil {
			panic(err)
		}
	}

	store, err = fixtures.Open(runConfig.FixturesDir)
	if err != nil {
		panic(err)
	}

	// Browsers are installed with: go run ./cmd/authsuite install
	runtime, err = browser.Launch(runConfig)
	if err != nil {
		panic(err)
	}

	code := m.Run()
	runtime.Close()
	os.Exit(code)
}

// runFeature runs s in its own browser session and reports each scenario as a subtest
func runFeature(t *testing.T, s suite.Suite) {
	t.Helper()

	launcher := suite.LauncherFunc(func() (suite.Session, error) {
		session, err := runtime.NewSession()
		if err != nil {
			return nil, err
		}
		return session, nil
	})

	cfg := *runConfig
	cfg.TrashAssets = false

	report, err := suite.NewRunner(launcher, &cfg, store).Run(context.Background(), []suite.Suite{s})
	if err != nil {
		t.Fatalf("Failed to run %s: %v", s.Spec, err)
	}

	for _, res := range report.Results {
		res := res
		t.Run(fmt.Sprintf("%s %s", res.ID, res.Title), func(t *testing.T) {
			switch res.Status {
			case suite.StatusFailed:
				if res.Screenshot != "" {
					t.Logf("screenshot: %s", res.Screenshot)
				}
				t.Fatal(res.Err)
			case suite.StatusSkipped:
				t.Skip(res.Err)
			}
		})
	}
}

package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/xalts/authsuite/internal/browser"
	internalcli "github.com/xalts/authsuite/internal/cli"
	"github.com/xalts/authsuite/internal/config"
	"github.com/xalts/authsuite/internal/database"
	"github.com/xalts/authsuite/internal/handlers"
	"github.com/xalts/authsuite/internal/repository"
	"github.com/xalts/authsuite/internal/services"
	"github.com/xalts/authsuite/internal/specs"
	"github.com/xalts/authsuite/internal/suite"
)

var version = "0.1.0"

var runFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "base-url",
		Usage:   "portal under test",
		EnvVars: []string{"AUTHSUITE_BASE_URL"},
	},
	&cli.StringFlag{
		Name:    "browser",
		Usage:   "chromium, firefox or webkit",
		EnvVars: []string{"AUTHSUITE_BROWSER"},
	},
	&cli.BoolFlag{
		Name:  "headed",
		Usage: "show the browser window",
	},
	&cli.BoolFlag{
		Name:    "video",
		Usage:   "record a video per suite",
		EnvVars: []string{"AUTHSUITE_VIDEO"},
	},
	&cli.StringFlag{
		Name:    "artifacts",
		Usage:   "directory for screenshots, videos and results.json",
		EnvVars: []string{"AUTHSUITE_ARTIFACTS_DIR"},
	},
}

var specFlag = &cli.StringSliceFlag{
	Name:    "spec",
	Aliases: []string{"s"},
	Usage:   "glob selecting suites, e.g. auth/*; repeatable",
	EnvVars: []string{"AUTHSUITE_SPEC"},
}

// loadRunConfig reads the environment and applies command-line overrides
func loadRunConfig(c *cli.Context) (*config.RunConfig, error) {
	cfg, err := config.LoadRunConfig(os.Getenv)
	if err != nil {
		return nil, err
	}

	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("browser") {
		cfg.Browser = c.String("browser")
	}
	if c.IsSet("headed") {
		cfg.Headless = !c.Bool("headed")
	}
	if c.IsSet("video") {
		cfg.Video = c.Bool("video")
	}
	if c.IsSet("artifacts") {
		cfg.ArtifactsDir = c.String("artifacts")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openHistory connects run history when postgres is configured
func openHistory() (suite.Recorder, func(), error) {
	if !config.PostgresConfigured(os.Getenv) {
		return nil, func() {}, nil
	}

	pgConfig, err := config.LoadPostgresConfig(os.Getenv)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid postgres configuration: %w", err)
	}
	if err := database.Connect(pgConfig); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	log.Println("Recording run history to postgres")

	service := services.NewRunService(repository.NewRunRepository())
	return service, func() { database.Close() }, nil
}

// runSelected runs the suites matching patterns and turns failures into a non-zero exit
func runSelected(c *cli.Context, cfg *config.RunConfig, patterns []string) error {
	history, closeHistory, err := openHistory()
	if err != nil {
		return err
	}
	defer closeHistory()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := internalcli.RunSuites(ctx, internalcli.RunOptions{
		Config:  cfg,
		Suites:  specs.All(),
		Specs:   patterns,
		Out:     c.App.Writer,
		History: history,
	})
	if err != nil {
		return err
	}

	if !report.OK() {
		return cli.Exit(fmt.Sprintf("run %s: %d failed, %d skipped", report.RunID, report.Failed(), report.Skipped()), 1)
	}
	return nil
}

// RunCommand returns the run command
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run every suite, or the ones selected with --spec",
		Flags: append([]cli.Flag{specFlag}, runFlags...),
		Action: func(c *cli.Context) error {
			cfg, err := loadRunConfig(c)
			if err != nil {
				return err
			}
			return runSelected(c, cfg, c.StringSlice("spec"))
		},
	}
}

// AuthCommand returns the auth command
func AuthCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Run the sign-up, sign-in and sign-out suites",
		Flags: runFlags,
		Action: func(c *cli.Context) error {
			cfg, err := loadRunConfig(c)
			if err != nil {
				return err
			}
			return runSelected(c, cfg, []string{"auth/*"})
		},
	}
}

// OpenCommand returns the open command
func OpenCommand() *cli.Command {
	return &cli.Command{
		Name:  "open",
		Usage: "Watch one suite run in a visible, slowed-down browser",
		Flags: append([]cli.Flag{specFlag}, runFlags...),
		Action: func(c *cli.Context) error {
			cfg, err := loadRunConfig(c)
			if err != nil {
				return err
			}

			patterns := c.StringSlice("spec")
			if len(patterns) == 0 {
				spec, err := internalcli.ChooseSpec(os.Stdin, c.App.Writer, specs.All())
				if err != nil {
					return err
				}
				patterns = []string{spec}
			}
			return runSelected(c, internalcli.Interactive(cfg), patterns)
		},
	}
}

// ListCommand returns the list command
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List registered suites and scenarios",
		Action: func(c *cli.Context) error {
			internalcli.ListSuites(c.App.Writer, specs.All())
			return nil
		},
	}
}

// InstallCommand returns the install command
func InstallCommand() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Install the Playwright driver and the configured browser",
		Flags: runFlags,
		Action: func(c *cli.Context) error {
			cfg, err := loadRunConfig(c)
			if err != nil {
				return err
			}
			return browser.Install(cfg)
		},
	}
}

// ReportCommand returns the report command
func ReportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Serve stored runs and failure screenshots over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "templates",
				Usage:   "directory holding runs.html and run.html",
				Value:   "templates",
				EnvVars: []string{"AUTHSUITE_TEMPLATES_DIR"},
			},
		},
		Action: func(c *cli.Context) error {
			pgConfig, err := config.LoadPostgresConfig(os.Getenv)
			if err != nil {
				return fmt.Errorf("report needs run history: %w", err)
			}
			if err := database.Connect(pgConfig); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()
			log.Println("Connected to database successfully")

			if err := database.RunMigrations(); err != nil {
				return fmt.Errorf("failed to run database migrations: %w", err)
			}

			runCfg, err := config.LoadRunConfig(os.Getenv)
			if err != nil {
				return err
			}

			deps, err := buildServerDependencies(c.String("templates"), runCfg.ArtifactsDir)
			if err != nil {
				return err
			}
			return internalcli.RunServe(deps)
		},
	}
}

// buildServerDependencies wires the report handlers to run history
func buildServerDependencies(templatesDir, artifactsDir string) (internalcli.ServerDependencies, error) {
	deps := internalcli.ServerDependencies{
		ServerConfig: config.LoadServerConfig(os.Getenv),
		ArtifactsDir: artifactsDir,
	}

	history := services.NewRunService(repository.NewRunRepository())

	runsHandler, err := handlers.NewRunsHandler(filepath.Join(templatesDir, "runs.html"), history)
	if err != nil {
		return deps, fmt.Errorf("failed to create runs handler: %w", err)
	}
	deps.RunsHandler = runsHandler

	runHandler, err := handlers.NewRunHandler(filepath.Join(templatesDir, "run.html"), artifactsDir, history)
	if err != nil {
		return deps, fmt.Errorf("failed to create run handler: %w", err)
	}
	deps.RunHandler = runHandler

	return deps, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	app := &cli.App{
		Name:    "authsuite",
		Usage:   "End-to-end authentication checks against the portal",
		Version: version,
		Commands: []*cli.Command{
			RunCommand(),
			AuthCommand(),
			OpenCommand(),
			ListCommand(),
			InstallCommand(),
			ReportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

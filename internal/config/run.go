package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Browser engines supported by the runtime
const (
	BrowserChromium = "chromium"
	BrowserFirefox  = "firefox"
	BrowserWebKit   = "webkit"
)

// Defaults mirror the portal's original run configuration.
const (
	DefaultBaseURL          = "https://xaltsocnportal.web.app"
	DefaultViewportWidth    = 1280
	DefaultViewportHeight   = 720
	DefaultCommandTimeout   = 10 * time.Second
	DefaultPageLoadTimeout  = 30 * time.Second
	DefaultArtifactsDir     = "artifacts"
	DefaultTestIDAttribute  = "data-cy"
	screenshotsSubdirectory = "screenshots"
	videosSubdirectory      = "videos"
	resultsFileName         = "results.json"
)

// RunConfig holds everything the browser runtime needs for a suite run.
// Test logic never branches on these values.
type RunConfig struct {
	BaseURL             string
	ViewportWidth       int
	ViewportHeight      int
	CommandTimeout      time.Duration
	PageLoadTimeout     time.Duration
	Video               bool
	ScreenshotOnFailure bool
	ArtifactsDir        string
	TrashAssets         bool
	Browser             string
	Headless            bool
	SlowMo              time.Duration
	FixturesDir         string
	TestIDAttribute     string
	SignOutProbe        time.Duration
}

// LoadRunConfig loads run configuration from environment variables
func LoadRunConfig(getenv func(string) string) (*RunConfig, error) {
	config := &RunConfig{
		BaseURL:             getenv("AUTHSUITE_BASE_URL"),
		ArtifactsDir:        getenv("AUTHSUITE_ARTIFACTS_DIR"),
		Browser:             strings.ToLower(strings.TrimSpace(getenv("AUTHSUITE_BROWSER"))),
		FixturesDir:         getenv("AUTHSUITE_FIXTURES_DIR"),
		TestIDAttribute:     getenv("AUTHSUITE_TEST_ID_ATTRIBUTE"),
		ViewportWidth:       DefaultViewportWidth,
		ViewportHeight:      DefaultViewportHeight,
		CommandTimeout:      DefaultCommandTimeout,
		PageLoadTimeout:     DefaultPageLoadTimeout,
		ScreenshotOnFailure: true,
		TrashAssets:         true,
		Headless:            true,
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.ArtifactsDir == "" {
		config.ArtifactsDir = DefaultArtifactsDir
	}
	if config.Browser == "" {
		config.Browser = BrowserChromium
	}
	if config.TestIDAttribute == "" {
		config.TestIDAttribute = DefaultTestIDAttribute
	}

	var err error
	if config.ViewportWidth, err = intVar(getenv, "AUTHSUITE_VIEWPORT_WIDTH", config.ViewportWidth); err != nil {
		return nil, err
	}
	if config.ViewportHeight, err = intVar(getenv, "AUTHSUITE_VIEWPORT_HEIGHT", config.ViewportHeight); err != nil {
		return nil, err
	}
	if config.CommandTimeout, err = durationVar(getenv, "AUTHSUITE_COMMAND_TIMEOUT", config.CommandTimeout); err != nil {
		return nil, err
	}
	if config.PageLoadTimeout, err = durationVar(getenv, "AUTHSUITE_PAGE_LOAD_TIMEOUT", config.PageLoadTimeout); err != nil {
		return nil, err
	}
	if config.SlowMo, err = durationVar(getenv, "AUTHSUITE_SLOW_MO", config.SlowMo); err != nil {
		return nil, err
	}
	// The sign-out probe waits as long as any other command unless tuned down
	if config.SignOutProbe, err = durationVar(getenv, "AUTHSUITE_SIGNOUT_PROBE", config.CommandTimeout); err != nil {
		return nil, err
	}
	if config.Video, err = boolVar(getenv, "AUTHSUITE_VIDEO", config.Video); err != nil {
		return nil, err
	}
	if config.ScreenshotOnFailure, err = boolVar(getenv, "AUTHSUITE_SCREENSHOT_ON_FAILURE", config.ScreenshotOnFailure); err != nil {
		return nil, err
	}
	if config.TrashAssets, err = boolVar(getenv, "AUTHSUITE_TRASH_ASSETS", config.TrashAssets); err != nil {
		return nil, err
	}
	if config.Headless, err = boolVar(getenv, "AUTHSUITE_HEADLESS", config.Headless); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that the configuration can drive a run
func (c *RunConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("AUTHSUITE_BASE_URL is invalid: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("AUTHSUITE_BASE_URL must be an absolute http(s) URL, got %q", c.BaseURL)
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.ViewportWidth, c.ViewportHeight)
	}
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("AUTHSUITE_COMMAND_TIMEOUT must be positive")
	}
	if c.PageLoadTimeout <= 0 {
		return fmt.Errorf("AUTHSUITE_PAGE_LOAD_TIMEOUT must be positive")
	}
	if c.SlowMo < 0 || c.SignOutProbe < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	switch c.Browser {
	case BrowserChromium, BrowserFirefox, BrowserWebKit:
	default:
		return fmt.Errorf("AUTHSUITE_BROWSER must be one of chromium, firefox, webkit, got %q", c.Browser)
	}
	if c.ArtifactsDir == "" {
		return fmt.Errorf("AUTHSUITE_ARTIFACTS_DIR is required")
	}
	if c.TestIDAttribute == "" {
		return fmt.Errorf("AUTHSUITE_TEST_ID_ATTRIBUTE is required")
	}
	return nil
}

// ScreenshotsDir returns the directory failure screenshots are written to
func (c *RunConfig) ScreenshotsDir() string {
	return c.ArtifactsDir + "/" + screenshotsSubdirectory
}

// VideosDir returns the directory suite recordings are written to
func (c *RunConfig) VideosDir() string {
	return c.ArtifactsDir + "/" + videosSubdirectory
}

// ResultsPath returns the path of the JSON run report
func (c *RunConfig) ResultsPath() string {
	return c.ArtifactsDir + "/" + resultsFileName
}

// CommandTimeoutMS returns the command timeout in the runtime's millisecond unit
func (c *RunConfig) CommandTimeoutMS() float64 {
	return float64(c.CommandTimeout.Milliseconds())
}

// PageLoadTimeoutMS returns the page load timeout in milliseconds
func (c *RunConfig) PageLoadTimeoutMS() float64 {
	return float64(c.PageLoadTimeout.Milliseconds())
}

func intVar(getenv func(string) string, key string, def int) (int, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid integer %q: %w", key, v, err)
	}
	return n, nil
}

func durationVar(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	return d, nil
}

func boolVar(getenv func(string) string, key string, def bool) (bool, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s has invalid boolean %q: %w", key, v, err)
	}
	return b, nil
}

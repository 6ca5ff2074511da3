// Package browser owns the Playwright runtime: launching the engine and
// handing out isolated sessions the suites drive.
package browser

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/playwright-community/playwright-go"

	"github.com/xalts/authsuite/internal/config"
)

// clearStorageScript wipes every client-side store the portal may persist a
// session in. Storage APIs throw on opaque origins such as about:blank.
const clearStorageScript = `async () => {
  try { window.localStorage.clear(); } catch (e) {}
  try { window.sessionStorage.clear(); } catch (e) {}
  try {
    if (window.indexedDB && typeof window.indexedDB.databases === "function") {
      const dbs = await window.indexedDB.databases();
      await Promise.all(dbs.map((db) => new Promise((resolve) => {
        const req = window.indexedDB.deleteDatabase(db.name);
        req.onsuccess = req.onerror = req.onblocked = () => resolve();
      })));
    }
  } catch (e) {}
}`

// Browser is a launched engine shared by all suites of a run
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	config  *config.RunConfig
}

// Install downloads the Playwright driver and the configured browser engine
func Install(cfg *config.RunConfig) error {
	if err := playwright.Install(&playwright.RunOptions{
		Browsers: []string{cfg.Browser},
	}); err != nil {
		return fmt.Errorf("failed to install %s: %w", cfg.Browser, err)
	}
	return nil
}

// Launch starts Playwright and the configured browser engine
func Launch(cfg *config.RunConfig) (*Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch cfg.Browser {
	case config.BrowserFirefox:
		browserType = pw.Firefox
	case config.BrowserWebKit:
		browserType = pw.WebKit
	default:
		browserType = pw.Chromium
	}

	options := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	}
	if cfg.SlowMo > 0 {
		options.SlowMo = playwright.Float(float64(cfg.SlowMo.Milliseconds()))
	}

	browser, err := browserType.Launch(options)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", cfg.Browser, err)
	}

	log.Printf("Launched %s (headless=%t)", cfg.Browser, cfg.Headless)
	return &Browser{
		pw:      pw,
		browser: browser,
		config:  cfg,
	}, nil
}

// NewSession opens an isolated browser context with a single page.
// Cookies and storage of one session are never visible to another.
func (b *Browser) NewSession() (*Session, error) {
	options := playwright.BrowserNewContextOptions{
		BaseURL: playwright.String(b.config.BaseURL),
		Viewport: &playwright.Size{
			Width:  b.config.ViewportWidth,
			Height: b.config.ViewportHeight,
		},
	}
	if b.config.Video {
		if err := os.MkdirAll(b.config.VideosDir(), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create videos directory: %w", err)
		}
		options.RecordVideo = &playwright.RecordVideo{
			Dir: b.config.VideosDir(),
		}
	}

	ctx, err := b.browser.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	ctx.SetDefaultTimeout(b.config.CommandTimeoutMS())
	ctx.SetDefaultNavigationTimeout(b.config.PageLoadTimeoutMS())

	page, err := ctx.NewPage()
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &Session{
		context: ctx,
		page:    page,
	}, nil
}

// Close shuts down the browser engine and the Playwright driver
func (b *Browser) Close() error {
	if err := b.browser.Close(); err != nil {
		_ = b.pw.Stop()
		return fmt.Errorf("failed to close browser: %w", err)
	}
	if err := b.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

// Session is one browser context plus the page scenarios act on
type Session struct {
	context playwright.BrowserContext
	page    playwright.Page
}

// Page returns the page scenarios drive
func (s *Session) Page() playwright.Page {
	return s.page
}

// Reset clears cookies and all persisted client storage so the next
// scenario starts unauthenticated.
func (s *Session) Reset() error {
	if err := s.context.ClearCookies(); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	if _, err := s.page.Evaluate(clearStorageScript); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	return nil
}

// Screenshot writes a full-page capture of the current page to path
func (s *Session) Screenshot(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	if _, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return nil
}

// Close closes the context, flushing any recorded video
func (s *Session) Close() error {
	if err := s.context.Close(); err != nil {
		return fmt.Errorf("failed to close browser context: %w", err)
	}
	return nil
}

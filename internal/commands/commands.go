// Package commands wraps the multi-step UI flows of the portal's auth pages
// behind single calls so scenarios stay declarative.
package commands

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/xalts/authsuite/internal/config"
	"github.com/xalts/authsuite/internal/selectors"
)

// Commands drives one page of the portal
type Commands struct {
	page    playwright.Page
	baseURL *url.URL
	by      selectors.Builder
	probe   time.Duration
	expect  *Expect
}

// New creates the command helpers for page
func New(page playwright.Page, cfg *config.RunConfig) (*Commands, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	by := selectors.NewBuilder(cfg.TestIDAttribute)

	return &Commands{
		page:    page,
		baseURL: base,
		by:      by,
		probe:   cfg.SignOutProbe,
		expect:  newExpect(page, by, cfg.CommandTimeoutMS()),
	}, nil
}

// Expect returns the assertion helpers bound to the same page
func (c *Commands) Expect() *Expect {
	return c.expect
}

// Page exposes the underlying page for one-off interactions
func (c *Commands) Page() playwright.Page {
	return c.page
}

// Get locates the first element carrying the stable identifier id
func (c *Commands) Get(id string) playwright.Locator {
	return c.page.Locator(c.by.ByID(id)).First()
}

// URL resolves path against the configured base URL
func (c *Commands) URL(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return strings.TrimRight(c.baseURL.String(), "/") + path
	}
	return c.baseURL.ResolveReference(ref).String()
}

// Visit loads path relative to the base URL
func (c *Commands) Visit(path string) error {
	if _, err := c.page.Goto(c.URL(path)); err != nil {
		return fmt.Errorf("failed to visit %s: %w", path, err)
	}
	return nil
}

// Click activates the element with the given identifier
func (c *Commands) Click(id string) error {
	if err := c.Get(id).Click(); err != nil {
		return fmt.Errorf("failed to click %s: %w", id, err)
	}
	return nil
}

// Type replaces the value of the input with the given identifier
func (c *Commands) Type(id, value string) error {
	if err := c.Get(id).Fill(value); err != nil {
		return fmt.Errorf("failed to type into %s: %w", id, err)
	}
	return nil
}

// FillCredentials fills the email and password inputs of the current form
func (c *Commands) FillCredentials(email, password string) error {
	if err := c.Type(selectors.EmailInput, email); err != nil {
		return err
	}
	return c.Type(selectors.PasswordInput, password)
}

// Submit fills the credentials and activates the given submit control
func (c *Commands) Submit(email, password, button string) error {
	if err := c.FillCredentials(email, password); err != nil {
		return err
	}
	return c.Click(button)
}

// NavigateToSignUp opens the root page and follows the sign-up link
func (c *Commands) NavigateToSignUp() error {
	return c.navigateVia(selectors.SignUpLink, selectors.RouteSignUp)
}

// NavigateToSignIn opens the root page and follows the sign-in link
func (c *Commands) NavigateToSignIn() error {
	return c.navigateVia(selectors.SignInLink, selectors.RouteSignIn)
}

func (c *Commands) navigateVia(link, route string) error {
	if err := c.Visit(selectors.RouteRoot); err != nil {
		return err
	}
	if err := c.Click(link); err != nil {
		return err
	}
	return c.expect.URLIncludes(route)
}

// SignUp submits the sign-up form. Outcome assertions are the caller's job.
func (c *Commands) SignUp(email, password string) error {
	if err := c.NavigateToSignUp(); err != nil {
		return err
	}
	return c.Submit(email, password, selectors.SignUpButton)
}

// SignIn submits the sign-in form. Outcome assertions are the caller's job.
func (c *Commands) SignIn(email, password string) error {
	if err := c.NavigateToSignIn(); err != nil {
		return err
	}
	return c.Submit(email, password, selectors.SignInButton)
}

// SignOut opens the user menu and signs out.
// The session must be authenticated; otherwise the user menu never appears
// and the call fails after the command timeout.
func (c *Commands) SignOut() error {
	if err := c.Click(selectors.UserMenu); err != nil {
		return err
	}
	return c.Click(selectors.SignOutButton)
}

// SignOutIfSignedIn signs out only when the user menu shows up within the
// probe window. It reports whether a sign-out happened.
func (c *Commands) SignOutIfSignedIn() (bool, error) {
	signedIn, err := c.isSignedIn()
	if err != nil || !signedIn {
		return false, err
	}
	if err := c.SignOut(); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Commands) isSignedIn() (bool, error) {
	menu := c.Get(selectors.UserMenu)

	// A zero timeout means "wait forever" to the runtime
	if c.probe <= 0 {
		visible, err := menu.IsVisible()
		if err != nil {
			return false, fmt.Errorf("failed to probe %s: %w", selectors.UserMenu, err)
		}
		return visible, nil
	}

	err := menu.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(c.probe.Milliseconds())),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to probe %s: %w", selectors.UserMenu, err)
	}
	return true, nil
}

package commands

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/playwright-community/playwright-go"

	"github.com/xalts/authsuite/internal/selectors"
)

// ErrAssertion marks a failed expectation about page state
var ErrAssertion = errors.New("assertion failed")

// Expect holds web-first assertions that retry until the command timeout
type Expect struct {
	page       playwright.Page
	by         selectors.Builder
	assertions playwright.PlaywrightAssertions
}

func newExpect(page playwright.Page, by selectors.Builder, timeoutMS float64) *Expect {
	return &Expect{
		page:       page,
		by:         by,
		assertions: playwright.NewPlaywrightAssertions(timeoutMS),
	}
}

// URLIncludes waits for the page URL to contain fragment
func (e *Expect) URLIncludes(fragment string) error {
	pattern := regexp.MustCompile(regexp.QuoteMeta(fragment))
	if err := e.assertions.Page(e.page).ToHaveURL(pattern); err != nil {
		return fmt.Errorf("%w: expected url %q to include %q: %v", ErrAssertion, e.page.URL(), fragment, err)
	}
	return nil
}

// Visible waits for the element with identifier id to be visible
func (e *Expect) Visible(id string) error {
	if err := e.assertions.Locator(e.locate(id)).ToBeVisible(); err != nil {
		return fmt.Errorf("%w: expected %s to be visible: %v", ErrAssertion, e.by.ByID(id), err)
	}
	return nil
}

// ContainsText waits for the element with identifier id to contain text
func (e *Expect) ContainsText(id, text string) error {
	if err := e.assertions.Locator(e.locate(id)).ToContainText(text); err != nil {
		return fmt.Errorf("%w: expected %s to contain %q: %v", ErrAssertion, e.by.ByID(id), text, err)
	}
	return nil
}

// VisibleWithText combines Visible and ContainsText
func (e *Expect) VisibleWithText(id, text string) error {
	if err := e.Visible(id); err != nil {
		return err
	}
	return e.ContainsText(id, text)
}

func (e *Expect) locate(id string) playwright.Locator {
	return e.page.Locator(e.by.ByID(id)).First()
}

// Package suite models scenarios grouped into suites and runs them
// sequentially against a live browser session.
package suite

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/xalts/authsuite/internal/commands"
	"github.com/xalts/authsuite/internal/fixtures"
)

// Session is the browser state a suite runs in
type Session interface {
	Page() playwright.Page
	Reset() error
	Screenshot(path string) error
	Close() error
}

// Launcher opens a fresh session for a suite
type Launcher interface {
	NewSession() (Session, error)
}

// LauncherFunc adapts a function to Launcher
type LauncherFunc func() (Session, error)

// NewSession calls f
func (f LauncherFunc) NewSession() (Session, error) {
	return f()
}

// T is handed to hooks and scenario bodies
type T struct {
	Ctx      context.Context
	Session  Session
	Cmd      *commands.Commands
	Fixtures *fixtures.Store
	Users    *fixtures.Users

	spec string
	id   string
}

// Logf logs a message prefixed with the running scenario
func (t *T) Logf(format string, args ...any) {
	prefix := t.spec
	if t.id != "" {
		prefix += " " + t.id
	}
	log.Printf("[%s] %s", prefix, fmt.Sprintf(format, args...))
}

// Expect is shorthand for t.Cmd.Expect()
func (t *T) Expect() *commands.Expect {
	return t.Cmd.Expect()
}

// Hook runs before a suite or before each of its scenarios
type Hook func(t *T) error

// Scenario is one independent test case
type Scenario struct {
	ID    string
	Title string
	Run   func(t *T) error
}

// Name returns the scenario's display name, e.g. "should ... (SU-001)"
func (s Scenario) Name() string {
	return fmt.Sprintf("%s (%s)", s.Title, s.ID)
}

// Suite groups scenarios sharing a feature area
type Suite struct {
	// Spec is the selectable name, e.g. "auth/signup"
	Spec string
	Name string
	// Before runs once, after the suite's session opens
	Before Hook
	// BeforeEach runs after the session reset of every scenario
	BeforeEach Hook
	Scenarios  []Scenario
}

// Select returns the suites whose spec matches any pattern, in registration
// order. No patterns selects everything.
func Select(suites []Suite, patterns []string) ([]Suite, error) {
	var cleaned []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid spec pattern %q: %w", p, err)
		}
		cleaned = append(cleaned, p)
	}
	if len(cleaned) == 0 {
		return suites, nil
	}

	matched := make(map[string]bool, len(cleaned))
	var selected []Suite
	for _, s := range suites {
		include := false
		for _, p := range cleaned {
			if ok, _ := path.Match(p, s.Spec); ok {
				matched[p] = true
				include = true
			}
		}
		if include {
			selected = append(selected, s)
		}
	}

	for _, p := range cleaned {
		if !matched[p] {
			return nil, fmt.Errorf("spec pattern %q matched no suites", p)
		}
	}
	return selected, nil
}

// Specs lists the spec names of suites
func Specs(suites []Suite) []string {
	specs := make([]string, len(suites))
	for i, s := range suites {
		specs[i] = s.Spec
	}
	return specs
}

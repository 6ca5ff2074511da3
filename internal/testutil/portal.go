// Package testutil provides a fake portal and browser setup shared by tests
// that drive real pages.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode"

	"github.com/xalts/authsuite/internal/browser"
	"github.com/xalts/authsuite/internal/config"
)

const sessionCookie = "portal_session"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Portal serves the auth pages the suites drive: root links, sign-up and
// sign-in forms with field validation, and a protected dashboard.
type Portal struct {
	*httptest.Server

	skipEmailValidation bool

	mu    sync.Mutex
	users map[string]string
}

// PortalOption changes how the fake portal behaves
type PortalOption func(*Portal)

// WithoutEmailValidation makes sign-up accept any email and redirect to the
// dashboard, like a portal that lost its client-side check.
func WithoutEmailValidation() PortalOption {
	return func(p *Portal) {
		p.skipEmailValidation = true
	}
}

// NewPortal starts a fake portal that is closed when t finishes
func NewPortal(t testing.TB, opts ...PortalOption) *Portal {
	t.Helper()

	p := &Portal{users: map[string]string{}}
	for _, opt := range opts {
		opt(p)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", p.root)
	mux.HandleFunc("/signup", p.signUp)
	mux.HandleFunc("/signin", p.signIn)
	mux.HandleFunc("/dashboard", p.dashboard)
	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Close)
	return p
}

// Registered reports whether email has an account
func (p *Portal) Registered(email string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.users[email]
	return ok
}

func (p *Portal) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprint(w, `<html><body>
<a data-cy="signup-link" href="/signup">Sign up</a>
<a data-cy="signin-link" href="/signin">Sign in</a>
</body></html>`)
}

// formErrors holds the messages rendered next to a submitted form
type formErrors struct {
	email    string
	password string
	message  string
}

func (e formErrors) any() bool {
	return e.email != "" || e.password != "" || e.message != ""
}

func renderForm(w http.ResponseWriter, action, button string, errs formErrors) {
	var b strings.Builder
	fmt.Fprintf(&b, `<html><body><form data-cy="%s-form" method="post" action="/%s">`, action, action)
	b.WriteString(`<input data-cy="email-input" name="email">`)
	if errs.email != "" {
		fmt.Fprintf(&b, `<p data-cy="email-error">%s</p>`, errs.email)
	}
	b.WriteString(`<input data-cy="password-input" name="password" type="password">`)
	if errs.password != "" {
		fmt.Fprintf(&b, `<p data-cy="password-error">%s</p>`, errs.password)
	}
	if errs.message != "" {
		fmt.Fprintf(&b, `<p data-cy="error-message">%s</p>`, errs.message)
	}
	fmt.Fprintf(&b, `<button data-cy="%s" type="submit">Go</button></form></body></html>`, button)
	fmt.Fprint(w, b.String())
}

func (p *Portal) signUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		renderForm(w, "signup", "signup-button", formErrors{})
		return
	}

	email, password := r.FormValue("email"), r.FormValue("password")
	var errs formErrors
	if !p.skipEmailValidation && !emailPattern.MatchString(email) {
		errs.email = "Please enter a valid email address"
	}
	if !strongPassword(password) {
		errs.password = "Password must be at least 8 characters with upper and lower case letters and a number"
	}
	if errs.any() {
		renderForm(w, "signup", "signup-button", errs)
		return
	}

	p.mu.Lock()
	_, exists := p.users[email]
	if !exists {
		p.users[email] = password
	}
	p.mu.Unlock()

	if exists {
		renderForm(w, "signup", "signup-button", formErrors{message: "Email already in use"})
		return
	}
	startSession(w, r, email)
}

func (p *Portal) signIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		renderForm(w, "signin", "signin-button", formErrors{})
		return
	}

	email, password := r.FormValue("email"), r.FormValue("password")
	var errs formErrors
	if email == "" {
		errs.email = "Email is required"
	}
	if password == "" {
		errs.password = "Password is required"
	}
	if errs.any() {
		renderForm(w, "signin", "signin-button", errs)
		return
	}

	p.mu.Lock()
	stored, ok := p.users[email]
	p.mu.Unlock()

	switch {
	case !ok:
		renderForm(w, "signin", "signin-button", formErrors{message: "user not found"})
	case stored != password:
		renderForm(w, "signin", "signin-button", formErrors{message: "password is incorrect"})
	default:
		startSession(w, r, email)
	}
}

func startSession(w http.ResponseWriter, r *http.Request, email string) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: email, Path: "/"})
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// The sign-out control drops the session in the page itself, so the cookie
// is gone by the time the click returns.
func (p *Portal) dashboard(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(sessionCookie); err != nil {
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
		return
	}
	fmt.Fprintf(w, `<html><body>
<p data-cy="success-message">Account created successfully</p>
<button data-cy="user-menu" onclick="document.getElementById('menu').style.display='block'">Me</button>
<div id="menu" style="display:none">
<button data-cy="signout-button" onclick="document.cookie='%s=; Max-Age=0; path=/'; window.location.href='/signin'">Sign out</button>
</div>
</body></html>`, sessionCookie)
}

func strongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		}
	}
	return upper && lower && digit
}

// RunConfig returns a run configuration for driving a local portal quickly
func RunConfig(t testing.TB, baseURL string) *config.RunConfig {
	t.Helper()
	return &config.RunConfig{
		BaseURL:             baseURL,
		ViewportWidth:       1280,
		ViewportHeight:      720,
		CommandTimeout:      3 * time.Second,
		PageLoadTimeout:     5 * time.Second,
		ScreenshotOnFailure: true,
		ArtifactsDir:        t.TempDir(),
		Browser:             config.BrowserChromium,
		Headless:            true,
		TestIDAttribute:     config.DefaultTestIDAttribute,
		SignOutProbe:        500 * time.Millisecond,
	}
}

// LaunchBrowser launches the configured browser, closed when t finishes.
// It skips in short mode and when Playwright is not installed.
func LaunchBrowser(t testing.TB, cfg *config.RunConfig) *browser.Browser {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	b, err := browser.Launch(cfg)
	if err != nil {
		t.Skip("Playwright not available:", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

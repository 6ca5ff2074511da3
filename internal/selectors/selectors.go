// Package selectors names the stable test identifiers exposed by the portal.
package selectors

import "fmt"

// Stable identifiers on the portal's auth pages
const (
	SignUpLink     = "signup-link"
	SignInLink     = "signin-link"
	EmailInput     = "email-input"
	PasswordInput  = "password-input"
	SignUpButton   = "signup-button"
	SignInButton   = "signin-button"
	UserMenu       = "user-menu"
	SignOutButton  = "signout-button"
	SuccessMessage = "success-message"
	ErrorMessage   = "error-message"
	EmailError     = "email-error"
	PasswordError  = "password-error"
	SignInForm     = "signin-form"
)

// Routes exposed by the portal
const (
	RouteRoot      = "/"
	RouteSignUp    = "/signup"
	RouteSignIn    = "/signin"
	RouteDashboard = "/dashboard"
)

// Builder turns stable identifiers into CSS attribute selectors
type Builder struct {
	attribute string
}

// NewBuilder creates a builder for the given identifier attribute, e.g. data-cy
func NewBuilder(attribute string) Builder {
	return Builder{attribute: attribute}
}

// ByID returns the selector matching elements whose identifier attribute equals id
func (b Builder) ByID(id string) string {
	return fmt.Sprintf("[%s=%q]", b.attribute, id)
}

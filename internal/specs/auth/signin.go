package auth

import (
	"github.com/xalts/authsuite/internal/selectors"
	"github.com/xalts/authsuite/internal/suite"
)

// Credentials the portal has never registered
const (
	wrongPassword       = "WrongPassword123!"
	nonexistentEmail    = "nonexistent@example.com"
	nonexistentPassword = "AnyPassword123!"
)

// SignIn covers authentication of an existing account
func SignIn() suite.Suite {
	return suite.Suite{
		Spec: "auth/signin",
		Name: "Sign In",
		Before: func(t *suite.T) error {
			user := t.Users.ValidUser
			if err := t.Cmd.SignUp(user.Email, user.Password); err != nil {
				return err
			}
			signedOut, err := t.Cmd.SignOutIfSignedIn()
			if err != nil {
				return err
			}
			t.Logf("ensured %s exists (signed out: %t)", user, signedOut)
			return nil
		},
		BeforeEach: func(t *suite.T) error {
			return t.Cmd.NavigateToSignIn()
		},
		Scenarios: []suite.Scenario{
			{
				ID:    "SI-001",
				Title: "should successfully sign in with valid credentials",
				Run: func(t *suite.T) error {
					user := t.Users.ValidUser
					return steps(
						func() error { return t.Cmd.Submit(user.Email, user.Password, selectors.SignInButton) },
						func() error { return t.Expect().URLIncludes(selectors.RouteDashboard) },
						func() error { return t.Expect().Visible(selectors.UserMenu) },
					)
				},
			},
			{
				ID:    "SI-002",
				Title: "should show an error for an incorrect password",
				Run: func(t *suite.T) error {
					return steps(
						func() error {
							return t.Cmd.Submit(t.Users.ValidUser.Email, wrongPassword, selectors.SignInButton)
						},
						func() error { return t.Expect().VisibleWithText(selectors.ErrorMessage, "incorrect") },
						func() error { return t.Expect().URLIncludes(selectors.RouteSignIn) },
					)
				},
			},
			{
				ID:    "SI-003",
				Title: "should show an error for a non-existent user",
				Run: func(t *suite.T) error {
					return steps(
						func() error {
							return t.Cmd.Submit(nonexistentEmail, nonexistentPassword, selectors.SignInButton)
						},
						func() error { return t.Expect().VisibleWithText(selectors.ErrorMessage, "user not found") },
						func() error { return t.Expect().URLIncludes(selectors.RouteSignIn) },
					)
				},
			},
			{
				ID:    "SI-004",
				Title: "should show validation errors when the form is empty",
				Run: func(t *suite.T) error {
					return steps(
						func() error { return t.Cmd.Click(selectors.SignInButton) },
						func() error { return t.Expect().Visible(selectors.EmailError) },
						func() error { return t.Expect().Visible(selectors.PasswordError) },
						func() error { return t.Expect().URLIncludes(selectors.RouteSignIn) },
					)
				},
			},
		},
	}
}

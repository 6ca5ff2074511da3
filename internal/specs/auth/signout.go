package auth

import (
	"github.com/xalts/authsuite/internal/selectors"
	"github.com/xalts/authsuite/internal/suite"
)

// SignOut covers ending an authenticated session
func SignOut() suite.Suite {
	return suite.Suite{
		Spec: "auth/signout",
		Name: "Sign Out",
		BeforeEach: func(t *suite.T) error {
			user := t.Users.ValidUser
			return steps(
				func() error { return t.Cmd.SignIn(user.Email, user.Password) },
				func() error { return t.Expect().URLIncludes(selectors.RouteDashboard) },
			)
		},
		Scenarios: []suite.Scenario{
			{
				ID:    "SO-001",
				Title: "should successfully sign out",
				Run: func(t *suite.T) error {
					return steps(
						t.Cmd.SignOut,
						func() error { return t.Expect().URLIncludes(selectors.RouteSignIn) },
						func() error { return t.Expect().Visible(selectors.SignInButton) },
					)
				},
			},
			{
				ID:    "SO-002",
				Title: "should not allow access to protected routes after sign out",
				Run: func(t *suite.T) error {
					return steps(
						t.Cmd.SignOut,
						func() error { return t.Cmd.Visit(selectors.RouteDashboard) },
						func() error { return t.Expect().URLIncludes(selectors.RouteSignIn) },
						func() error { return t.Expect().Visible(selectors.SignInForm) },
					)
				},
			},
		},
	}
}

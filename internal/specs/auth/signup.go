package auth

import (
	"fmt"
	"time"

	"github.com/xalts/authsuite/internal/selectors"
	"github.com/xalts/authsuite/internal/suite"
)

// SignUp covers account creation
func SignUp() suite.Suite {
	return suite.Suite{
		Spec: "auth/signup",
		Name: "Sign Up",
		BeforeEach: func(t *suite.T) error {
			return t.Cmd.NavigateToSignUp()
		},
		Scenarios: []suite.Scenario{
			{
				ID:    "SU-001",
				Title: "should successfully sign up with valid credentials",
				Run:   signUpWithValidCredentials,
			},
			{
				ID:    "SU-002",
				Title: "should show an error for an already registered email",
				Run:   signUpWithRegisteredEmail,
			},
			{
				ID:    "SU-003",
				Title: "should show validation errors for invalid email formats",
				Run:   signUpWithInvalidEmails,
			},
			{
				ID:    "SU-004",
				Title: "should show validation errors for invalid passwords",
				Run:   signUpWithInvalidPasswords,
			},
			{
				ID:    "SU-005",
				Title: "should show validation errors when the form is empty",
				Run:   signUpWithEmptyForm,
			},
		},
	}
}

func signUpWithValidCredentials(t *suite.T) error {
	email := UniqueEmail(time.Now())
	t.Logf("signing up as %s", email)

	return steps(
		func() error { return t.Cmd.Submit(email, t.Users.NewUser.Password, selectors.SignUpButton) },
		func() error { return t.Expect().URLIncludes(selectors.RouteDashboard) },
		func() error {
			return t.Expect().VisibleWithText(selectors.SuccessMessage, "Account created successfully")
		},
	)
}

func signUpWithRegisteredEmail(t *suite.T) error {
	user := t.Users.ValidUser

	// Make sure the account exists; the outcome of this first attempt is irrelevant
	if err := t.Cmd.SignUp(user.Email, user.Password); err != nil {
		return err
	}
	if _, err := t.Cmd.SignOutIfSignedIn(); err != nil {
		return err
	}

	err := steps(
		t.Cmd.NavigateToSignUp,
		func() error { return t.Cmd.Submit(user.Email, user.Password, selectors.SignUpButton) },
		func() error { return t.Expect().VisibleWithText(selectors.ErrorMessage, "Email already in use") },
	)
	if err != nil {
		return err
	}

	// The rejected attempt must leave the original account intact
	return steps(
		func() error { return t.Cmd.SignIn(user.Email, user.Password) },
		func() error { return t.Expect().URLIncludes(selectors.RouteDashboard) },
	)
}

func signUpWithInvalidEmails(t *suite.T) error {
	for i, email := range t.Users.InvalidEmails {
		if i > 0 {
			if err := t.Cmd.NavigateToSignUp(); err != nil {
				return err
			}
		}
		err := steps(
			func() error { return t.Cmd.Submit(email, t.Users.ValidUser.Password, selectors.SignUpButton) },
			func() error { return t.Expect().VisibleWithText(selectors.EmailError, "valid email") },
			func() error { return t.Expect().URLIncludes(selectors.RouteSignUp) },
		)
		if err != nil {
			return fmt.Errorf("email %q: %w", email, err)
		}
	}
	return nil
}

func signUpWithInvalidPasswords(t *suite.T) error {
	for i, password := range t.Users.InvalidPasswords {
		if i > 0 {
			if err := t.Cmd.NavigateToSignUp(); err != nil {
				return err
			}
		}
		err := steps(
			func() error { return t.Cmd.Submit(t.Users.NewUser.Email, password, selectors.SignUpButton) },
			func() error { return t.Expect().Visible(selectors.PasswordError) },
		)
		if err != nil {
			return fmt.Errorf("password case %d: %w", i+1, err)
		}
	}
	return nil
}

func signUpWithEmptyForm(t *suite.T) error {
	return steps(
		func() error { return t.Cmd.Click(selectors.SignUpButton) },
		func() error { return t.Expect().Visible(selectors.EmailError) },
		func() error { return t.Expect().Visible(selectors.PasswordError) },
		func() error { return t.Expect().URLIncludes(selectors.RouteSignUp) },
	)
}

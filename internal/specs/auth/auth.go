// Package auth holds the authentication scenarios run against the portal:
// sign-up, sign-in and sign-out.
package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xalts/authsuite/internal/suite"
)

// Suites returns the auth suites in run order
func Suites() []suite.Suite {
	return []suite.Suite{
		SignUp(),
		SignIn(),
		SignOut(),
	}
}

// UniqueEmail returns an address no earlier run has registered
func UniqueEmail(now time.Time) string {
	return fmt.Sprintf("test_%d_%s@example.com", now.UnixMilli(), uuid.NewString()[:8])
}

// steps runs fns in order and stops at the first error
func steps(fns ...func() error) error {
	for _, fn := range fns {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

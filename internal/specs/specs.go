// Package specs registers every suite the runner can select.
package specs

import (
	"github.com/xalts/authsuite/internal/specs/auth"
	"github.com/xalts/authsuite/internal/suite"
)

// All returns the registered suites in run order
func All() []suite.Suite {
	var all []suite.Suite
	all = append(all, auth.Suites()...)
	return all
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/xalts/authsuite/internal/suite"
)

// ErrNoChoice is returned when the chooser input ends without a selection
var ErrNoChoice = errors.New("no spec chosen")

// ChooseSpec lists suites on out and reads a choice from in, by number or by
// spec name. Invalid answers are re-prompted.
func ChooseSpec(in io.Reader, out io.Writer, suites []suite.Suite) (string, error) {
	if len(suites) == 0 {
		return "", fmt.Errorf("no suites registered")
	}

	color.New(color.Bold).Fprintln(out, "Choose a spec to open:")
	for i, s := range suites {
		fmt.Fprintf(out, "  %d) %s  %s\n", i+1, s.Spec, color.HiBlackString("%s, %d scenarios", s.Name, len(s.Scenarios)))
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("failed to read choice: %w", err)
			}
			return "", ErrNoChoice
		}

		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			continue
		}
		if n, err := strconv.Atoi(answer); err == nil {
			if n >= 1 && n <= len(suites) {
				return suites[n-1].Spec, nil
			}
		} else {
			for _, s := range suites {
				if s.Spec == answer {
					return s.Spec, nil
				}
			}
		}
		color.New(color.FgYellow).Fprintf(out, "%q is not one of the listed specs\n", answer)
	}
}

// ListSuites prints every suite with its scenarios
func ListSuites(out io.Writer, suites []suite.Suite) {
	total := 0
	for _, s := range suites {
		color.New(color.Bold).Fprintf(out, "%s (%s)\n", s.Spec, s.Name)
		for _, sc := range s.Scenarios {
			fmt.Fprintf(out, "  %s  %s\n", sc.ID, sc.Title)
		}
		total += len(s.Scenarios)
	}
	fmt.Fprintf(out, "\n%d specs, %d scenarios\n", len(suites), total)
}

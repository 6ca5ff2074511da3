package suite

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ConsoleReporter prints progress while a run executes and a summary at the end
type ConsoleReporter struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewConsoleReporter creates a reporter writing to out
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// RunStarted prints the run header and starts the progress bar
func (c *ConsoleReporter) RunStarted(report *Report) error {
	fmt.Fprintln(c.out)
	color.New(color.FgCyan).Fprintf(c.out, "Running %d scenarios from %d specs against %s (%s)\n\n",
		report.Total, len(report.Specs), report.BaseURL, report.Browser)

	c.bar = progressbar.NewOptions(report.Total,
		progressbar.OptionSetDescription(describe(report)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(c.out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return nil
}

// ScenarioFinished advances the progress bar
func (c *ConsoleReporter) ScenarioFinished(report *Report, result Result) error {
	if c.bar == nil {
		return nil
	}
	c.bar.Describe(describe(report))
	return c.bar.Add(1)
}

// RunFinished prints every scenario grouped by spec, then the totals
func (c *ConsoleReporter) RunFinished(report *Report) error {
	if c.bar != nil {
		_ = c.bar.Finish()
	}
	fmt.Fprintln(c.out)

	spec := ""
	for _, res := range report.Results {
		if res.Spec != spec {
			spec = res.Spec
			color.New(color.Bold).Fprintf(c.out, "%s (%s)\n", res.Suite, res.Spec)
		}
		switch res.Status {
		case StatusPassed:
			color.New(color.FgGreen).Fprintf(c.out, "  ✓ %s", res.Name())
			fmt.Fprintf(c.out, " %s\n", res.Duration.Round(time.Millisecond))
		case StatusFailed:
			color.New(color.FgRed).Fprintf(c.out, "  ✗ %s\n", res.Name())
			fmt.Fprintf(c.out, "      %s\n", res.Err)
			if res.Screenshot != "" {
				fmt.Fprintf(c.out, "      screenshot: %s\n", res.Screenshot)
			}
		default:
			color.New(color.FgYellow).Fprintf(c.out, "  - %s (%s)\n", res.Name(), res.Err)
		}
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "┌──────────────┬──────────┐")
	fmt.Fprintf(c.out, "│ %-12s │ %8d │\n", "Scenarios", len(report.Results))
	fmt.Fprintf(c.out, "│ %-12s │ ", "Passed")
	color.New(color.FgGreen).Fprintf(c.out, "%8d", report.Passed())
	fmt.Fprintln(c.out, " │")
	fmt.Fprintf(c.out, "│ %-12s │ ", "Failed")
	color.New(color.FgRed).Fprintf(c.out, "%8d", report.Failed())
	fmt.Fprintln(c.out, " │")
	fmt.Fprintf(c.out, "│ %-12s │ ", "Skipped")
	color.New(color.FgYellow).Fprintf(c.out, "%8d", report.Skipped())
	fmt.Fprintln(c.out, " │")
	fmt.Fprintf(c.out, "│ %-12s │ %8s │\n", "Duration", report.Duration().Round(time.Second))
	fmt.Fprintln(c.out, "└──────────────┴──────────┘")

	switch {
	case report.OK():
		color.New(color.FgGreen, color.Bold).Fprintln(c.out, "All specs passed!")
	case report.Failed() > 0:
		color.New(color.FgRed, color.Bold).Fprintf(c.out, "%d of %d scenarios failed\n", report.Failed(), len(report.Results))
	default:
		color.New(color.FgYellow, color.Bold).Fprintf(c.out, "Run aborted, %d scenarios skipped\n", report.Skipped())
	}
	return nil
}

func describe(report *Report) string {
	return color.CyanString("Scenarios: ") +
		color.GreenString("[passed: %d", report.Passed()) +
		" | " +
		color.RedString("failed: %d]", report.Failed())
}

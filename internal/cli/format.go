package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/danieljhkim/autonkit/internal/plan"
)

var (
	// stdout is where command output goes. The root command points it at
	// cmd.OutOrStdout() so tests can capture it.
	stdout io.Writer = os.Stdout

	// stderr receives error messages.
	stderr io.Writer = os.Stderr
)

var (
	// fatih/color disables these itself when output is not a TTY
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	valueColor   = color.New(color.FgHiBlack)
	dimColor     = color.New(color.FgHiBlack)
)

// PrintSection prints a section header
func PrintSection(title string) {
	fmt.Fprintln(stdout)
	_, _ = headerColor.Fprintf(stdout, "▸ %s\n", title)
	fmt.Fprintln(stdout)
}

// PrintSuccess prints a success message with a checkmark
func PrintSuccess(msg string) {
	_, _ = successColor.Fprintf(stdout, "✓ %s\n", msg)
}

// PrintWarning prints a warning message with a warning symbol
func PrintWarning(msg string) {
	_, _ = warningColor.Fprintf(stdout, "⚠ %s\n", msg)
}

// PrintError prints an error message to stderr
func PrintError(msg string) {
	_, _ = errorColor.Fprintf(stderr, "✗ %s\n", msg)
}

// PrintInfo prints an informational message
func PrintInfo(msg string) {
	fmt.Fprintln(stdout, msg)
}

// PrintLabelValue prints a label-value pair with proper formatting
func PrintLabelValue(label, value string) {
	_, _ = labelColor.Fprintf(stdout, "  %s: ", label)
	_, _ = valueColor.Fprintln(stdout, value)
}

// PrintLabelValueWithColor prints a label-value pair with a custom value color
func PrintLabelValueWithColor(label, value string, valueClr *color.Color) {
	_, _ = labelColor.Fprintf(stdout, "  %s: ", label)
	_, _ = valueClr.Fprintln(stdout, value)
}

// PrintTable prints a simple column table
func PrintTable(headers []string, rows [][]string) {
	if len(headers) == 0 || len(rows) == 0 {
		return
	}

	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	fmt.Fprint(stdout, "  ")
	for i, header := range headers {
		if i > 0 {
			fmt.Fprint(stdout, "  ")
		}
		_, _ = headerColor.Fprintf(stdout, "%-*s", colWidths[i], header)
	}
	fmt.Fprintln(stdout)

	fmt.Fprint(stdout, "  ")
	for i, width := range colWidths {
		if i > 0 {
			fmt.Fprint(stdout, "  ")
		}
		fmt.Fprint(stdout, strings.Repeat("-", width))
	}
	fmt.Fprintln(stdout)

	for _, row := range rows {
		fmt.Fprint(stdout, "  ")
		for i, cell := range row {
			if i >= len(colWidths) {
				break
			}
			if i > 0 {
				fmt.Fprint(stdout, "  ")
			}
			_, _ = valueColor.Fprintf(stdout, "%-*s", colWidths[i], cell)
		}
		fmt.Fprintln(stdout)
	}
}

// PrintEmptyState prints a message when there's no data to show
func PrintEmptyState(msg string) {
	_, _ = dimColor.Fprintf(stdout, "  %s\n", msg)
}

// PrintCount prints a count with proper formatting
func PrintCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// PrintPlan prints a plan as a numbered step table.
func PrintPlan(title string, p plan.Plan) {
	PrintSection(fmt.Sprintf("%s (%s)", title, PrintCount(p.Len(), "step", "steps")))
	if p.Len() == 0 {
		PrintEmptyState("No steps")
		return
	}
	rows := make([][]string, 0, p.Len())
	for i, s := range p.Steps {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			s.Type.String(),
			fmt.Sprint(s.V1),
			fmt.Sprint(s.V2),
			fmt.Sprint(s.V3),
			describeStep(s),
		})
	}
	PrintTable([]string{"#", "TYPE", "V1", "V2", "V3", "MEANING"}, rows)
}

// describeStep renders what a step does in words.
func describeStep(s plan.Step) string {
	switch s.Type {
	case plan.DriveForDuration:
		return fmt.Sprintf("drive %d%% for %dms", s.Speed(), s.DurationMs())
	case plan.TankForDuration:
		return fmt.Sprintf("left %d%% right %d%% for %dms", s.Left(), s.Right(), s.DurationMs())
	case plan.TurnToHeading:
		return fmt.Sprintf("turn to %d°", s.Heading())
	case plan.Wait:
		return fmt.Sprintf("wait %dms", s.DurationMs())
	case plan.None:
		return "no-op"
	default:
		return strings.ToLower(strings.ReplaceAll(s.Type.String(), "_", " "))
	}
}

package cli

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/autonkit/internal/plan"
	"github.com/danieljhkim/autonkit/internal/planstore"
)

// diffResult is the JSON form of diff.
type diffResult struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Identical bool   `json:"identical"`
	Diff      string `json:"diff,omitempty"`
}

var diffCmd = &cobra.Command{
	Use:   "diff <slot> [slot]",
	Short: "Show differences between the plans of two slots",
	Long: `Print a unified diff of two slots' plans as they are stored on the card.

With one slot, it is compared against the active slot. Slots that were never
saved compare as the compiled-in plans.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		from := planstore.NewSlotIndex(s.card, s.log).Load()
		to, err := parseSlot(args[0])
		if err != nil {
			return err
		}
		if len(args) == 2 {
			from = to
			if to, err = parseSlot(args[1]); err != nil {
				return err
			}
		}

		result, err := diffSlots(s, from, to)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}
		if result.Identical {
			PrintEmptyState(fmt.Sprintf("No differences between %s and %s", result.From, result.To))
			return nil
		}
		printUnifiedDiff(result.Diff)
		return nil
	},
}

// diffSlots diffs the normalized plan text of two slots.
func diffSlots(s *session, from, to int) (diffResult, error) {
	a, b := slotText(s, from), slotText(s, to)
	result := diffResult{
		From: planstore.SlotFile(from),
		To:   planstore.SlotFile(to),
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: result.From,
		ToFile:   result.To,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return diffResult{}, fmt.Errorf("diff %s %s: %w", result.From, result.To, err)
	}
	result.Diff = text
	result.Identical = strings.TrimSpace(text) == ""
	return result, nil
}

func slotText(s *session, slot int) string {
	primary, secondary, _ := s.loadSlot(slot)
	return string(plan.Marshal(primary, secondary))
}

func printUnifiedDiff(text string) {
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			_, _ = labelColor.Fprint(stdout, line)
		case strings.HasPrefix(line, "@@"):
			_, _ = infoColor.Fprint(stdout, line)
		case strings.HasPrefix(line, "+"):
			_, _ = successColor.Fprint(stdout, line)
		case strings.HasPrefix(line, "-"):
			_, _ = errorColor.Fprint(stdout, line)
		default:
			fmt.Fprint(stdout, line)
		}
	}
}

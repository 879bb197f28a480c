package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/autonkit/internal/hash"
)

var (
	historyLimit      int
	historyRecordings bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past plan executions and recordings",
	Long: `List the most recent plan executions from the run history, newest first.
Use --recordings to list recording sessions instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if historyRecordings {
			return listRecordings(s)
		}
		return listExecutions(s)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of entries (0 for all)")
	historyCmd.Flags().BoolVar(&historyRecordings, "recordings", false, "List recording sessions")
}

func listExecutions(s *session) error {
	runs, err := s.history.Executions(historyLimit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return outputJSON(runs)
	}
	if len(runs) == 0 {
		PrintEmptyState("No executions recorded yet")
		return nil
	}

	PrintSection(fmt.Sprintf("Executions (%d)", len(runs)))
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			humanize.Time(r.StartedAt),
			fmt.Sprint(r.Slot + 1),
			r.Mode,
			r.Trigger,
			fmt.Sprintf("%d/%d", r.Completed, r.Steps),
			r.Outcome,
			r.Duration().Round(time.Millisecond).String(),
			hash.Short(r.PlanHash),
		})
	}
	PrintTable([]string{"WHEN", "SLOT", "MODE", "TRIGGER", "STEPS", "OUTCOME", "TOOK", "PLAN"}, rows)
	return nil
}

func listRecordings(s *session) error {
	recs, err := s.history.Recordings(historyLimit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return outputJSON(recs)
	}
	if len(recs) == 0 {
		PrintEmptyState("No recordings yet")
		return nil
	}

	PrintSection(fmt.Sprintf("Recordings (%d)", len(recs)))
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		size := PrintCount(r.Steps, "step", "steps")
		if r.Kind == "frames" {
			size = PrintCount(r.Lines, "line", "lines")
		}
		rows = append(rows, []string{
			humanize.Time(r.StartedAt),
			r.Kind,
			r.Target,
			humanize.Comma(int64(r.Samples)),
			size,
			r.Reason,
		})
	}
	PrintTable([]string{"WHEN", "KIND", "TARGET", "SAMPLES", "RESULT", "REASON"}, rows)
	return nil
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/autonkit/internal/clock"
	"github.com/danieljhkim/autonkit/internal/engine"
	"github.com/danieljhkim/autonkit/internal/plan"
	"github.com/danieljhkim/autonkit/internal/recorder"
)

var (
	importSlot   int
	importMode   string
	importDryRun bool
)

// importResult is the JSON form of import-log.
type importResult struct {
	Source string               `json:"source"`
	Mode   string               `json:"mode"`
	Slot   int                  `json:"slot"`
	Saved  bool                 `json:"saved"`
	Stats  recorder.ImportStats `json:"stats"`
	Plan   plan.Plan            `json:"plan"`
}

var importLogCmd = &cobra.Command{
	Use:   "import-log <drive-log>",
	Short: "Build a plan from a raw drive log",
	Long: `Replay a raw drive log through the step recorder's quantizer and store the
result as a plan, exactly as a live step recording of the same driving would.

The path may be absolute, relative, or the name of a log on the storage card.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		f, source, err := openDriveLog(s, args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		opts := engine.OptionsFromConfig(s.cfg)
		p, stats, err := recorder.ImportFrames(f, s.cfg.PlanCapacity, opts.Recorder)
		if err != nil {
			return err
		}

		eng, _ := s.newEngine(&clock.RealClock{})
		mode, err := prepareEngine(eng, importSlot, importMode)
		if err != nil {
			return err
		}

		result := importResult{
			Source: source,
			Mode:   mode.String(),
			Slot:   eng.ActiveSlot() + 1,
			Stats:  stats,
			Plan:   p,
		}
		if !importDryRun {
			if !eng.ReplacePlan(mode, p) {
				return fmt.Errorf("%w: plan is being recorded", errEditRejected)
			}
			if err := eng.Save(); err != nil {
				return err
			}
			result.Saved = true
		}

		if jsonOutput {
			return outputJSON(result)
		}

		msg := fmt.Sprintf("Imported %s from %s into %s",
			PrintCount(stats.Frames, "frame", "frames"), filepath.Base(source), PrintCount(stats.Steps, "step", "steps"))
		PrintSuccess(msg)
		if stats.Full {
			PrintWarning("Plan filled up before the end of the log")
		}
		if importDryRun {
			PrintInfo("Dry run: nothing saved")
		} else {
			PrintLabelValue("Saved", fmt.Sprintf("slot %d, %s plan", result.Slot, result.Mode))
		}
		PrintPlan(fmt.Sprintf("%s plan", mode), p)
		return nil
	},
}

func init() {
	importLogCmd.Flags().IntVarP(&importSlot, "slot", "s", 0, "Slot to save into, 1-3 (default: active slot)")
	importLogCmd.Flags().StringVarP(&importMode, "mode", "m", "primary", "Plan to replace: primary or secondary")
	importLogCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show the plan without saving it")
}

// openDriveLog opens path as given, falling back to a file of that name on
// the storage card.
func openDriveLog(s *session, path string) (*os.File, string, error) {
	f, err := os.Open(path)
	if err == nil {
		return f, path, nil
	}
	if !os.IsNotExist(err) || filepath.IsAbs(path) {
		return nil, "", fmt.Errorf("failed to open drive log: %w", err)
	}
	onCard := filepath.Join(s.paths.SD, path)
	f, cardErr := os.Open(onCard)
	if cardErr != nil {
		return nil, "", fmt.Errorf("failed to open drive log: %w", err)
	}
	return f, onCard, nil
}

package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/autonkit/internal/clock"
	"github.com/danieljhkim/autonkit/internal/config"
	"github.com/danieljhkim/autonkit/internal/engine"
	"github.com/danieljhkim/autonkit/internal/recorder"
	"github.com/danieljhkim/autonkit/internal/sim"
)

var (
	recordFrom   string
	recordSlot   int
	recordMode   string
	recordHold   int
	recordFrames bool
	recordNoSave bool
)

// recordResult is the JSON form of record.
type recordResult struct {
	Source  string           `json:"source"`
	Slot    int              `json:"slot"`
	Ticks   int              `json:"ticks"`
	Summary recorder.Summary `json:"summary"`
	Saved   bool             `json:"saved"`
}

var recordCmd = &cobra.Command{
	Use:   "record --from <drive-log>",
	Short: "Record a plan by replaying driver input",
	Long: `Replay a drive log as controller input through the manual drive loop with a
recording active, the same way a driver records on the robot.

By default the sticks are recorded into the selected plan, which is then saved.
With --frames a new raw drive log is written to the storage card instead.
Each log frame is held for --hold control ticks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if recordFrom == "" {
			return errors.New("--from is required")
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		f, source, err := openDriveLog(s, recordFrom)
		if err != nil {
			return err
		}
		script, err := sim.ReadScript(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("failed to read drive log: %w", err)
		}
		script.Hold(recordHold)

		clk := clock.NewFakeClock(time.Now())
		eng, _ := s.newEngine(clk)
		mode, err := prepareEngine(eng, recordSlot, recordMode)
		if err != nil {
			return err
		}

		if recordFrames {
			if _, err := eng.StartFrameLog(); err != nil {
				return err
			}
		} else if !eng.StartRecording() {
			return fmt.Errorf("%w: could not start recording", engine.ErrRecording)
		}

		tick := config.Millis(s.cfg.Manual.TickMs)
		ticks := 0
		for script.Remaining() > 0 && eng.Recording() {
			eng.OnManualTick(script.Poll())
			clk.Advance(tick)
			ticks++
		}

		result := recordResult{Source: source, Slot: eng.ActiveSlot() + 1, Ticks: ticks}
		sum, err := eng.StopRecording("")
		switch {
		case errors.Is(err, engine.ErrNotRecording):
			// The recorder stopped itself when the plan filled up.
			sum = recorder.Summary{Reason: recorder.ReasonFull, Full: true, Steps: eng.Plan(mode).Len()}
			sum.Mode = recorder.Steps.String()
		case err != nil:
			return err
		}
		result.Summary = sum

		if !recordFrames && !recordNoSave {
			if err := eng.Save(); err != nil {
				return err
			}
			result.Saved = true
		}

		if jsonOutput {
			return outputJSON(result)
		}
		printRecord(result, mode.String())
		if !recordFrames {
			PrintPlan(fmt.Sprintf("%s plan", mode), eng.Plan(mode))
		}
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVar(&recordFrom, "from", "", "Drive log to replay as controller input")
	recordCmd.Flags().IntVarP(&recordSlot, "slot", "s", 0, "Slot to record into, 1-3 (default: active slot)")
	recordCmd.Flags().StringVarP(&recordMode, "mode", "m", "primary", "Plan to record: primary or secondary")
	recordCmd.Flags().IntVar(&recordHold, "hold", 5, "Control ticks per drive log frame")
	recordCmd.Flags().BoolVar(&recordFrames, "frames", false, "Write a raw drive log instead of plan steps")
	recordCmd.Flags().BoolVar(&recordNoSave, "no-save", false, "Do not save the recorded plan")
}

func printRecord(r recordResult, mode string) {
	sum := r.Summary
	if sum.Mode == recorder.Frames.String() {
		PrintSuccess(fmt.Sprintf("Wrote %s to %s", PrintCount(sum.Lines, "line", "lines"), sum.File))
	} else {
		PrintSuccess(fmt.Sprintf("Recorded %s into the %s plan", PrintCount(sum.Steps, "step", "steps"), mode))
	}
	if sum.Full {
		PrintWarning("Recording stopped: plan is full")
	}
	if sum.Overflow {
		PrintWarning("Storage fell behind: some frames were dropped from the drive log")
	}

	PrintSection("Recording")
	PrintLabelValue("Source", filepath.Base(r.Source))
	PrintLabelValue("Ticks", fmt.Sprint(r.Ticks))
	if sum.ID != "" {
		PrintLabelValue("ID", sum.ID)
		PrintLabelValue("Samples", fmt.Sprint(sum.Samples))
	}
	switch {
	case r.Saved:
		PrintLabelValue("Saved", fmt.Sprintf("slot %d", r.Slot))
	case sum.Mode != recorder.Frames.String():
		PrintInfo("Not saved (--no-save)")
	}
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/autonkit/internal/clock"
	"github.com/danieljhkim/autonkit/internal/engine"
	"github.com/danieljhkim/autonkit/internal/plan"
)

var (
	editSlot int
	editMode string
	editBack bool
)

// errEditRejected is returned when the engine refuses an edit.
var errEditRejected = errors.New("edit rejected")

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the steps of a plan",
	Long: `Edit a plan in the active slot (or --slot) and save it back.

Steps are numbered from 1 as in "autonkit show". The operations mirror the
robot's on-screen editor.`,
}

var editSetCmd = &cobra.Command{
	Use:   "set <n> <TYPE,v1,v2,v3>",
	Short: "Replace step n, or append when n is one past the end",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		step, ok := plan.ParseRecord(args[1])
		if !ok {
			return fmt.Errorf("invalid step record %q (want TYPE,v1[,v2[,v3]])", args[1])
		}
		return runEdit(fmt.Sprintf("step %d set to %s", index+1, step), func(eng *engine.Engine) bool {
			return eng.EditStep(index, step)
		})
	},
}

var editRmCmd = &cobra.Command{
	Use:   "rm <n>",
	Short: "Remove step n",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return runEdit(fmt.Sprintf("step %d removed", index+1), func(eng *engine.Engine) bool {
			return eng.RemoveStep(index)
		})
	},
}

var editClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every step",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit("plan cleared", func(eng *engine.Engine) bool {
			return eng.ClearPlan()
		})
	},
}

var editCycleCmd = &cobra.Command{
	Use:   "cycle <n>",
	Short: "Change step n to the next step type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return runEdit(fmt.Sprintf("step %d type changed", index+1), func(eng *engine.Engine) bool {
			return eng.CycleStepType(index, !editBack)
		})
	},
}

var editAdjustCmd = &cobra.Command{
	Use:   "adjust <n> <v1|v2|v3> <up|down>",
	Short: "Nudge a value of step n (v1 by 5, v2 and v3 by 50)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		var field engine.Field
		switch strings.ToLower(args[1]) {
		case "v1":
			field = engine.FieldV1
		case "v2":
			field = engine.FieldV2
		case "v3":
			field = engine.FieldV3
		default:
			return fmt.Errorf("unknown field %q (want v1, v2 or v3)", args[1])
		}
		var up bool
		switch strings.ToLower(args[2]) {
		case "up", "+":
			up = true
		case "down", "-":
		default:
			return fmt.Errorf("unknown direction %q (want up or down)", args[2])
		}
		return runEdit(fmt.Sprintf("step %d %s adjusted", index+1, args[1]), func(eng *engine.Engine) bool {
			return eng.AdjustStep(index, field, up)
		})
	},
}

func init() {
	editCmd.PersistentFlags().IntVarP(&editSlot, "slot", "s", 0, "Slot to edit, 1-3 (default: active slot)")
	editCmd.PersistentFlags().StringVarP(&editMode, "mode", "m", "primary", "Plan to edit: primary or secondary")
	editCycleCmd.Flags().BoolVar(&editBack, "back", false, "Cycle to the previous step type")

	editCmd.AddCommand(editSetCmd)
	editCmd.AddCommand(editRmCmd)
	editCmd.AddCommand(editClearCmd)
	editCmd.AddCommand(editCycleCmd)
	editCmd.AddCommand(editAdjustCmd)
}

// runEdit applies one edit to the selected plan and saves the slot.
func runEdit(what string, apply func(eng *engine.Engine) bool) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	eng, _ := s.newEngine(&clock.RealClock{})
	mode, err := prepareEngine(eng, editSlot, editMode)
	if err != nil {
		return err
	}
	if !apply(eng) {
		return fmt.Errorf("%w: %s", errEditRejected, what)
	}
	if err := eng.Save(); err != nil {
		return err
	}

	p := eng.Plan(mode)
	if jsonOutput {
		return outputJSON(p)
	}
	PrintSuccess(fmt.Sprintf("%s plan: %s (slot %d)", mode, what, eng.ActiveSlot()+1))
	PrintPlan(fmt.Sprintf("%s plan", mode), p)
	return nil
}

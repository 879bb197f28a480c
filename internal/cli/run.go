package cli

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/autonkit/internal/clock"
	"github.com/danieljhkim/autonkit/internal/engine"
	"github.com/danieljhkim/autonkit/internal/hash"
	"github.com/danieljhkim/autonkit/internal/robot"
	"github.com/danieljhkim/autonkit/internal/sim"
)

var (
	runSlot     int
	runMode     string
	runRealtime bool
)

// runOutput is the JSON form of run.
type runOutput struct {
	Run  engine.RunResult `json:"run"`
	Sim  sim.Stats        `json:"sim"`
	Pose robot.Pose       `json:"pose"`
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a plan on the simulated robot",
	Long: `Execute a plan on the simulated robot under the autonomous deadline.

By default simulated time runs as fast as possible. Use --realtime to run at
wall-clock speed with the watchdog active; Ctrl-C aborts the execution.
--slot selects and persists the slot before running, like the robot's menu.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		var clk clock.Clock = clock.NewFakeClock(time.Now())
		if runRealtime {
			clk = &clock.RealClock{}
		}
		eng, bot := s.newEngine(clk)

		mode, err := prepareEngine(eng, runSlot, runMode)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()
		if runRealtime {
			go func() { _ = eng.Start(ctx) }()
			go func() {
				<-ctx.Done()
				eng.Abort()
			}()
		}

		result, ok := eng.RunPlan(mode, engine.TriggerCLI)
		if !ok {
			return engine.ErrRunning
		}
		out := runOutput{Run: result, Sim: bot.Stats(), Pose: bot.Position()}

		if jsonOutput {
			return outputJSON(out)
		}
		printRun(out)
		return nil
	},
}

func init() {
	runCmd.Flags().IntVarP(&runSlot, "slot", "s", 0, "Slot to run, 1-3 (default: active slot)")
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "", "Plan to run: primary or secondary (default from config)")
	runCmd.Flags().BoolVar(&runRealtime, "realtime", false, "Run at wall-clock speed with the watchdog")
}

func printRun(out runOutput) {
	r := out.Run
	msg := fmt.Sprintf("%s plan %s: %d/%d steps in %s",
		r.Mode, r.StateName, r.Outcome.Completed, r.Outcome.Total, r.Duration().Round(time.Millisecond))
	if r.Outcome.Aborted {
		PrintWarning(msg)
	} else {
		PrintSuccess(msg)
	}

	PrintSection("Run")
	PrintLabelValue("ID", r.ID)
	PrintLabelValue("Slot", fmt.Sprint(r.Slot+1))
	PrintLabelValue("Plan", hash.Short(r.PlanHash))

	PrintSection("Simulated robot")
	PrintLabelValue("Distance", fmt.Sprintf("%.3f m", out.Sim.Distance))
	PrintLabelValue("Rotation", fmt.Sprintf("%.1f°", out.Sim.Rotation))
	PrintLabelValue("Final pose", fmt.Sprintf("x=%.3f y=%.3f heading=%.1f°", out.Pose.X, out.Pose.Y, out.Pose.Heading))
	for _, id := range []robot.MotorID{robot.ActuatorA, robot.ActuatorB} {
		if on := out.Sim.ActuatorOn[id.String()]; on > 0 {
			PrintLabelValue(id.String(), fmt.Sprintf("on for %s", on.Round(time.Millisecond)))
		}
	}
}

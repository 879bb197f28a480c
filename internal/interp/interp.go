// Package interp executes plans against the robot collaborators.
//
// Execution is fatal-free: no step returns an error and the only early exit
// is an abort observed through guard.Aborter. Abort is checked before and
// after every step and at least once per slice inside timed holds.
package interp

import (
	"log/slog"
	"time"

	"github.com/danieljhkim/autonkit/internal/clock"
	"github.com/danieljhkim/autonkit/internal/guard"
	"github.com/danieljhkim/autonkit/internal/heading"
	"github.com/danieljhkim/autonkit/internal/plan"
	"github.com/danieljhkim/autonkit/internal/robot"
)

// Config tunes the interpreter.
type Config struct {
	// Slice bounds every wait between abort checks.
	Slice time.Duration

	// TurnSpeed caps the rotation speed of TURN_TO_HEADING steps.
	TurnSpeed int

	// ActuatorA and ActuatorB are the motor groups behind the ACTUATOR_A_*
	// and ACTUATOR_B_* steps.
	ActuatorA robot.MotorID
	ActuatorB robot.MotorID
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Slice:     20 * time.Millisecond,
		TurnSpeed: 60,
		ActuatorA: robot.ActuatorA,
		ActuatorB: robot.ActuatorB,
	}
}

// Outcome summarizes one execution.
type Outcome struct {
	// Completed counts the steps that ran to completion, NONE steps included.
	Completed int  `json:"completed"`
	Total     int  `json:"total"`
	Aborted   bool `json:"aborted"`
}

// Interpreter walks plans step by step.
type Interpreter struct {
	motors  robot.Motors
	heading *heading.Controller
	clk     clock.Clock
	cfg     Config
	log     *slog.Logger
}

// New creates an Interpreter.
func New(motors robot.Motors, hc *heading.Controller, clk clock.Clock, cfg Config, log *slog.Logger) *Interpreter {
	if cfg.Slice <= 0 {
		cfg.Slice = DefaultConfig().Slice
	}
	if cfg.TurnSpeed <= 0 {
		cfg.TurnSpeed = DefaultConfig().TurnSpeed
	}
	return &Interpreter{motors: motors, heading: hc, clk: clk, cfg: cfg, log: log}
}

// Execute runs p in order until it finishes or a is aborted. Every motor is
// braked before Execute returns.
func (in *Interpreter) Execute(p plan.Plan, a guard.Aborter) Outcome {
	out := Outcome{Total: p.Len()}
	defer robot.StopAll(in.motors)

	for i, step := range p.Steps {
		if a.IsAborted() {
			return in.abort(out, i)
		}
		in.log.Debug("step", "index", i, "step", step.String())
		in.run(step, a)
		if a.IsAborted() {
			return in.abort(out, i)
		}
		out.Completed++
	}
	return out
}

func (in *Interpreter) abort(out Outcome, index int) Outcome {
	robot.StopAll(in.motors)
	out.Aborted = true
	in.log.Info("execution aborted", "step", index, "completed", out.Completed)
	return out
}

func (in *Interpreter) run(s plan.Step, a guard.Aborter) {
	switch s.Type {
	case plan.DriveForDuration:
		in.hold(s.Speed(), s.Speed(), s.DurationMs(), a)
	case plan.TankForDuration:
		in.hold(s.Left(), s.Right(), s.DurationMs(), a)
	case plan.TurnToHeading:
		in.heading.TurnTo(float64(s.Heading()), in.cfg.TurnSpeed, a)
	case plan.Wait:
		in.wait(s.DurationMs(), a)
	case plan.ActuatorAOn:
		in.motors.SetVelocity(in.cfg.ActuatorA, robot.FullPower)
	case plan.ActuatorAOff:
		in.motors.Brake(in.cfg.ActuatorA)
	case plan.ActuatorBOn:
		in.motors.SetVelocity(in.cfg.ActuatorB, robot.FullPower)
	case plan.ActuatorBOff:
		in.motors.Brake(in.cfg.ActuatorB)
	}
}

func (in *Interpreter) hold(left, right, ms int, a guard.Aborter) {
	robot.SetDrive(in.motors, robot.Clamp(left, robot.FullPower), robot.Clamp(right, robot.FullPower))
	in.wait(ms, a)
	robot.BrakeDrive(in.motors)
}

func (in *Interpreter) wait(ms int, a guard.Aborter) bool {
	if ms <= 0 {
		return !a.IsAborted()
	}
	return guard.Wait(in.clk, a, time.Duration(ms)*time.Millisecond, in.cfg.Slice)
}

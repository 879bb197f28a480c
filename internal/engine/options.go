package engine

import (
	"time"

	"github.com/danieljhkim/autonkit/internal/config"
	"github.com/danieljhkim/autonkit/internal/guard"
	"github.com/danieljhkim/autonkit/internal/heading"
	"github.com/danieljhkim/autonkit/internal/interp"
	"github.com/danieljhkim/autonkit/internal/plan"
	"github.com/danieljhkim/autonkit/internal/recorder"
	"github.com/danieljhkim/autonkit/internal/robot"
)

// ManualOptions tunes the driver-control loop.
type ManualOptions struct {
	LeftAxis        int
	RightAxis       int
	DPadSpeed       int
	AssistKp        float64
	AssistTurnLimit int
	HeadingAssist   bool
}

// Options tunes an Engine.
type Options struct {
	// PlanCapacity bounds every plan; 0 means unbounded.
	PlanCapacity int

	AutonMax     time.Duration
	WatchdogTick time.Duration
	DefaultMode  plan.Mode

	Interp   interp.Config
	Heading  heading.Config
	Recorder recorder.Config
	Manual   ManualOptions
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		AutonMax:     15 * time.Second,
		WatchdogTick: guard.DefaultTick,
		DefaultMode:  plan.Primary,
		Interp:       interp.DefaultConfig(),
		Heading:      heading.DefaultConfig(),
		Recorder:     recorder.DefaultConfig(),
		Manual: ManualOptions{
			LeftAxis:        3,
			RightAxis:       2,
			DPadSpeed:       80,
			AssistKp:        1.2,
			AssistTurnLimit: 60,
			HeadingAssist:   true,
		},
	}
}

// OptionsFromConfig maps a validated tuning file onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.PlanCapacity = cfg.PlanCapacity
	opts.AutonMax = cfg.AutonMax()
	opts.WatchdogTick = config.Millis(cfg.Auton.WatchdogTickMs)
	if mode, err := plan.ParseMode(cfg.Auton.DefaultMode); err == nil {
		opts.DefaultMode = mode
	}

	opts.Interp.Slice = config.Millis(cfg.Auton.WaitSliceMs)
	opts.Interp.TurnSpeed = cfg.Auton.TurnSpeed
	if id, ok := robot.ParseMotorID(cfg.Auton.ActuatorA); ok {
		opts.Interp.ActuatorA = id
	}
	if id, ok := robot.ParseMotorID(cfg.Auton.ActuatorB); ok {
		opts.Interp.ActuatorB = id
	}

	opts.Heading = heading.Config{
		Kp:        cfg.Heading.Kp,
		Tolerance: cfg.Heading.ToleranceDeg,
		Tick:      config.Millis(cfg.Heading.TickMs),
	}

	opts.Recorder.SampleInterval = config.Millis(cfg.Recorder.SampleMs)
	opts.Recorder.Quantizer = recorder.Quantizer{
		Deadband: cfg.Recorder.Deadband,
		Snap:     cfg.Recorder.Snap,
		Limit:    cfg.Recorder.Limit,
	}
	opts.Recorder.LeftAxis = cfg.Recorder.LeftAxis
	opts.Recorder.RightAxis = cfg.Recorder.RightAxis
	opts.Recorder.FlushLines = cfg.Recorder.FlushLines
	opts.Recorder.Source = cfg.Recorder.Source

	opts.Manual = ManualOptions{
		LeftAxis:        cfg.Manual.LeftAxis,
		RightAxis:       cfg.Manual.RightAxis,
		DPadSpeed:       cfg.Manual.DPadSpeed,
		AssistKp:        cfg.Manual.AssistKp,
		AssistTurnLimit: cfg.Manual.AssistTurnLimit,
		HeadingAssist:   cfg.Manual.HeadingAssist,
	}
	return opts
}

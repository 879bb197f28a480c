// Package heading implements the proportional turn-in-place controller used
// by TURN_TO_HEADING steps and by the D-pad heading assist.
package heading

import (
	"math"
	"time"

	"github.com/danieljhkim/autonkit/internal/clock"
	"github.com/danieljhkim/autonkit/internal/guard"
	"github.com/danieljhkim/autonkit/internal/robot"
)

// Config tunes the controller.
type Config struct {
	Kp        float64
	Tolerance float64
	Tick      time.Duration
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Kp:        1.5,
		Tolerance: 2.0,
		Tick:      20 * time.Millisecond,
	}
}

// Normalize folds an angular error into (-180, 180] with a single ±360
// adjustment. Inputs are differences of two headings in [0, 360).
func Normalize(err float64) float64 {
	if err > 180 {
		err -= 360
	} else if err <= -180 {
		err += 360
	}
	return err
}

// Error returns the normalized error from current to target.
func Error(target, current float64) float64 {
	return Normalize(target - current)
}

// Command returns the proportional rotation speed for err, truncated toward
// zero and clamped to ±maxSpeed.
func Command(err, kp float64, maxSpeed int) int {
	return robot.Clamp(int(err*kp), maxSpeed)
}

// Controller rotates the robot in place toward a target heading.
type Controller struct {
	motors robot.Motors
	sensor robot.HeadingSensor
	clk    clock.Clock
	cfg    Config
}

// New creates a Controller. Zero fields in cfg take their defaults.
func New(motors robot.Motors, sensor robot.HeadingSensor, clk clock.Clock, cfg Config) *Controller {
	def := DefaultConfig()
	if cfg.Kp <= 0 {
		cfg.Kp = def.Kp
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.Tick <= 0 {
		cfg.Tick = def.Tick
	}
	return &Controller{motors: motors, sensor: sensor, clk: clk, cfg: cfg}
}

// Config returns the active tuning.
func (c *Controller) Config() Config {
	return c.cfg
}

// TurnTo rotates until the heading is within tolerance of target or a is
// aborted, then brakes the drive. It reports whether the heading converged.
// There is no timeout; the caller's deadline bounds the loop.
func (c *Controller) TurnTo(target float64, maxSpeed int, a guard.Aborter) bool {
	defer robot.BrakeDrive(c.motors)

	target = math.Mod(target, 360)
	if target < 0 {
		target += 360
	}

	for {
		if a.IsAborted() {
			return false
		}
		err := Error(target, c.sensor.HeadingDegrees())
		if math.Abs(err) < c.cfg.Tolerance {
			return true
		}
		speed := Command(err, c.cfg.Kp, maxSpeed)
		robot.SetDrive(c.motors, speed, -speed)
		if !guard.Wait(c.clk, a, c.cfg.Tick, c.cfg.Tick) {
			return false
		}
	}
}

// Assist returns the left/right commands that drive forward at speed while
// steering toward target. The turn term is clamped to ±turnLimit.
func Assist(target, current float64, speed int, kp float64, turnLimit int) (left, right int) {
	turn := Command(Error(target, current), kp, turnLimit)
	return speed + turn, speed - turn
}

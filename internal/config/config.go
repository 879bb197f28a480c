package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level tuning file.
type Config struct {
	PlanCapacity int            `yaml:"plan_capacity"`
	Auton        AutonConfig    `yaml:"auton"`
	Heading      HeadingConfig  `yaml:"heading"`
	Recorder     RecorderConfig `yaml:"recorder"`
	Manual       ManualConfig   `yaml:"manual"`
	Sim          SimConfig      `yaml:"sim"`
	LogLevel     string         `yaml:"log_level"`
	LogFile      bool           `yaml:"log_file"`
	Journal      bool           `yaml:"journal"`
}

// AutonConfig bounds plan execution.
type AutonConfig struct {
	MaxMs          int    `yaml:"max_ms"`
	WatchdogTickMs int    `yaml:"watchdog_tick_ms"`
	WaitSliceMs    int    `yaml:"wait_slice_ms"`
	TurnSpeed      int    `yaml:"turn_speed"`
	ActuatorA      string `yaml:"actuator_a"`
	ActuatorB      string `yaml:"actuator_b"`
	DefaultMode    string `yaml:"default_mode"`
}

// HeadingConfig tunes the turn controller.
type HeadingConfig struct {
	Kp           float64 `yaml:"kp"`
	ToleranceDeg float64 `yaml:"tolerance_deg"`
	TickMs       int     `yaml:"tick_ms"`
}

// RecorderConfig tunes input recording.
type RecorderConfig struct {
	SampleMs   int    `yaml:"sample_ms"`
	Deadband   int    `yaml:"deadband"`
	Snap       int    `yaml:"snap"`
	Limit      int    `yaml:"limit"`
	LeftAxis   int    `yaml:"left_axis"`
	RightAxis  int    `yaml:"right_axis"`
	FlushLines int    `yaml:"flush_lines"`
	Source     string `yaml:"source"`
}

// ManualConfig tunes the driver-control loop.
type ManualConfig struct {
	TickMs          int     `yaml:"tick_ms"`
	LeftAxis        int     `yaml:"left_axis"`
	RightAxis       int     `yaml:"right_axis"`
	DPadSpeed       int     `yaml:"dpad_speed"`
	AssistKp        float64 `yaml:"assist_kp"`
	AssistTurnLimit int     `yaml:"assist_turn_limit"`
	HeadingAssist   bool    `yaml:"heading_assist"`
}

// SimConfig describes the simulated chassis.
type SimConfig struct {
	MaxSpeed     float64 `yaml:"max_speed"`
	TrackWidth   float64 `yaml:"track_width"`
	StartHeading float64 `yaml:"start_heading"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		PlanCapacity: 0,
		Auton: AutonConfig{
			MaxMs:          15000,
			WatchdogTickMs: 20,
			WaitSliceMs:    20,
			TurnSpeed:      60,
			ActuatorA:      "actuator_a",
			ActuatorB:      "actuator_b",
			DefaultMode:    "primary",
		},
		Heading: HeadingConfig{
			Kp:           1.5,
			ToleranceDeg: 2.0,
			TickMs:       20,
		},
		Recorder: RecorderConfig{
			SampleMs:   100,
			Deadband:   5,
			Snap:       5,
			Limit:      100,
			LeftAxis:   3,
			RightAxis:  2,
			FlushLines: 25,
			Source:     "AUTONKIT",
		},
		Manual: ManualConfig{
			TickMs:          20,
			LeftAxis:        3,
			RightAxis:       2,
			DPadSpeed:       80,
			AssistKp:        1.2,
			AssistTurnLimit: 60,
			HeadingAssist:   true,
		},
		Sim: SimConfig{
			MaxSpeed:   1.2,
			TrackWidth: 0.3,
		},
		LogLevel: "warn",
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// WriteDefault writes the stock configuration to path. It refuses to
// overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks ranges and names.
func (c *Config) Validate() error {
	var problems []string
	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	check(c.PlanCapacity >= 0, "plan_capacity must be >= 0")
	check(c.Auton.MaxMs > 0, "auton.max_ms must be > 0")
	check(c.Auton.WatchdogTickMs > 0, "auton.watchdog_tick_ms must be > 0")
	check(c.Auton.WaitSliceMs > 0 && c.Auton.WaitSliceMs <= 20, "auton.wait_slice_ms must be in 1..20")
	check(c.Auton.TurnSpeed > 0 && c.Auton.TurnSpeed <= 100, "auton.turn_speed must be in 1..100")
	check(knownMotor(c.Auton.ActuatorA), "auton.actuator_a must name a motor group")
	check(knownMotor(c.Auton.ActuatorB), "auton.actuator_b must name a motor group")
	check(c.Auton.DefaultMode == "primary" || c.Auton.DefaultMode == "secondary",
		"auton.default_mode must be primary or secondary")
	check(c.Heading.Kp > 0, "heading.kp must be > 0")
	check(c.Heading.ToleranceDeg > 0, "heading.tolerance_deg must be > 0")
	check(c.Heading.TickMs > 0, "heading.tick_ms must be > 0")
	check(c.Recorder.SampleMs > 0, "recorder.sample_ms must be > 0")
	check(c.Recorder.Deadband >= 0, "recorder.deadband must be >= 0")
	check(c.Recorder.Snap >= 1, "recorder.snap must be >= 1")
	check(c.Recorder.Limit > 0 && c.Recorder.Limit <= 100, "recorder.limit must be in 1..100")
	check(validAxis(c.Recorder.LeftAxis) && validAxis(c.Recorder.RightAxis) &&
		c.Recorder.LeftAxis != c.Recorder.RightAxis, "recorder axes must be distinct values in 1..4")
	check(c.Recorder.FlushLines > 0, "recorder.flush_lines must be > 0")
	check(c.Manual.TickMs > 0, "manual.tick_ms must be > 0")
	check(validAxis(c.Manual.LeftAxis) && validAxis(c.Manual.RightAxis) &&
		c.Manual.LeftAxis != c.Manual.RightAxis, "manual axes must be distinct values in 1..4")
	check(c.Manual.DPadSpeed >= 0 && c.Manual.DPadSpeed <= 100, "manual.dpad_speed must be in 0..100")
	check(c.Sim.MaxSpeed > 0, "sim.max_speed must be > 0")
	check(c.Sim.TrackWidth > 0, "sim.track_width must be > 0")
	check(knownLevel(c.LogLevel), "log_level must be debug, info, warn or error")

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// AutonMax returns the execution deadline.
func (c *Config) AutonMax() time.Duration {
	return Millis(c.Auton.MaxMs)
}

// Millis converts a millisecond count from the file into a duration.
func Millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func validAxis(n int) bool {
	return n >= 1 && n <= 4
}

func knownMotor(name string) bool {
	switch name {
	case "left_drive", "right_drive", "actuator_a", "actuator_b":
		return true
	}
	return false
}

func knownLevel(s string) bool {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

package engine

import (
	"time"

	"github.com/danieljhkim/autonkit/internal/guard"
	"github.com/danieljhkim/autonkit/internal/interp"
	"github.com/danieljhkim/autonkit/internal/recorder"
	"github.com/danieljhkim/autonkit/internal/robot"
)

// Trigger names what started an execution.
type Trigger string

const (
	// TriggerCompetition is the dispatcher's autonomous phase.
	TriggerCompetition Trigger = "COMPETITION"

	// TriggerManual is a request made from the driver-control loop.
	TriggerManual Trigger = "MANUAL"

	// TriggerCLI is a run started from the command line.
	TriggerCLI Trigger = "CLI"
)

// RunResult represents the result of one plan execution.
type RunResult struct {
	// ID identifies the execution in the run history
	ID string `json:"id"`

	// Slot is the zero-based slot the plan was loaded from
	Slot int `json:"slot"`

	// Mode is the plan that ran
	Mode string `json:"mode"`

	// Trigger is what started the execution
	Trigger Trigger `json:"trigger"`

	// PlanHash fingerprints the plan that ran
	PlanHash string `json:"plan_hash"`

	// Outcome counts completed steps and reports an abort
	Outcome interp.Outcome `json:"outcome"`

	// State is the guard's terminal state
	State guard.State `json:"-"`

	// StateName is State rendered for JSON output
	StateName string `json:"state"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration returns the wall time the execution took.
func (r RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// StatusResult represents the current engine status.
type StatusResult struct {
	// Slot is the active zero-based slot
	Slot int `json:"slot"`

	// Mode is the selected plan
	Mode string `json:"mode"`

	// State is the execution guard state
	State string `json:"state"`

	// PrimarySteps and SecondarySteps are the plan lengths
	PrimarySteps   int `json:"primary_steps"`
	SecondarySteps int `json:"secondary_steps"`

	// HeadingAssist reports whether D-pad driving holds heading
	HeadingAssist bool `json:"heading_assist"`

	// Heading is the current sensor reading in degrees
	Heading float64 `json:"heading"`

	// Pose is the position estimate, when a position sensor is wired
	Pose *robot.Pose `json:"pose,omitempty"`

	// Recording is the active recording session, if any
	Recording *recorder.Session `json:"recording,omitempty"`

	// RecordingFull reports that the last step recording hit capacity
	RecordingFull bool `json:"recording_full"`

	// LastRun is the most recent execution, if any
	LastRun *RunResult `json:"last_run,omitempty"`
}

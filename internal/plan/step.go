// Package plan defines the autonomous plan model and its text encoding.
//
// A plan is an ordered list of steps. Each step carries a type tag and up to
// three positional integer parameters whose meaning depends on the type. The
// text encoding is one record per line, TYPE,v1,v2,v3, grouped under
// [PRIMARY] and [SECONDARY] section markers.
//
// Key concepts:
//   - Step: one timed or instantaneous action
//   - Plan: ordered steps with an optional capacity
//   - Set: the primary/secondary pair shared between the control loops
//   - Decode/Encode: tolerant reader and canonical writer for plan files
package plan

import (
	"fmt"
	"time"
)

// StepType identifies what a step does.
type StepType int

const (
	// None is a no-op. Unknown type tokens decode to None.
	None StepType = iota
	// DriveForDuration drives both sides at V1 percent for V2 milliseconds.
	DriveForDuration
	// TankForDuration drives left at V1 and right at V2 for V3 milliseconds.
	TankForDuration
	// TurnToHeading rotates in place until the heading is V1 degrees.
	TurnToHeading
	// Wait holds for V1 milliseconds.
	Wait
	ActuatorAOn
	ActuatorAOff
	ActuatorBOn
	ActuatorBOff
)

var stepTypeNames = [...]string{
	None:             "NONE",
	DriveForDuration: "DRIVE_FOR_DURATION",
	TankForDuration:  "TANK_FOR_DURATION",
	TurnToHeading:    "TURN_TO_HEADING",
	Wait:             "WAIT",
	ActuatorAOn:      "ACTUATOR_A_ON",
	ActuatorAOff:     "ACTUATOR_A_OFF",
	ActuatorBOn:      "ACTUATOR_B_ON",
	ActuatorBOff:     "ACTUATOR_B_OFF",
}

// legacyStepTypes maps the type names written by older firmware.
var legacyStepTypes = map[string]StepType{
	"EMPTY":        None,
	"DRIVE_MS":     DriveForDuration,
	"TANK_MS":      TankForDuration,
	"TURN_HEADING": TurnToHeading,
	"WAIT_MS":      Wait,
	"INTAKE_ON":    ActuatorAOn,
	"INTAKE_OFF":   ActuatorAOff,
	"OUTTAKE_ON":   ActuatorBOn,
	"OUTTAKE_OFF":  ActuatorBOff,
}

// StepTypes returns every step type in menu order.
func StepTypes() []StepType {
	types := make([]StepType, len(stepTypeNames))
	for i := range stepTypeNames {
		types[i] = StepType(i)
	}
	return types
}

// String returns the canonical wire name of the type.
func (t StepType) String() string {
	if t < 0 || int(t) >= len(stepTypeNames) {
		return stepTypeNames[None]
	}
	return stepTypeNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t StepType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *StepType) UnmarshalText(b []byte) error {
	*t = ParseStepType(string(b))
	return nil
}

// ParseStepType matches token case-sensitively against the canonical and
// legacy type names. Anything else is None.
func ParseStepType(token string) StepType {
	for i, name := range stepTypeNames {
		if token == name {
			return StepType(i)
		}
	}
	if t, ok := legacyStepTypes[token]; ok {
		return t
	}
	return None
}

// Next returns the following type in menu order, wrapping around.
func (t StepType) Next() StepType {
	return StepType((int(t) + 1) % len(stepTypeNames))
}

// Prev returns the preceding type in menu order, wrapping around.
func (t StepType) Prev() StepType {
	n := len(stepTypeNames)
	return StepType((int(t) - 1 + n) % n)
}

// Step is one action in a plan.
type Step struct {
	Type StepType `json:"type"`
	V1   int      `json:"v1"`
	V2   int      `json:"v2"`
	V3   int      `json:"v3"`
}

// Drive builds a DRIVE_FOR_DURATION step.
func Drive(speed, ms int) Step {
	return Step{Type: DriveForDuration, V1: speed, V2: ms}
}

// Tank builds a TANK_FOR_DURATION step.
func Tank(left, right, ms int) Step {
	return Step{Type: TankForDuration, V1: left, V2: right, V3: ms}
}

// Turn builds a TURN_TO_HEADING step.
func Turn(heading int) Step {
	return Step{Type: TurnToHeading, V1: heading}
}

// Pause builds a WAIT step.
func Pause(ms int) Step {
	return Step{Type: Wait, V1: ms}
}

// Speed is the common speed of a DRIVE_FOR_DURATION step.
func (s Step) Speed() int { return s.V1 }

// Left is the left speed of a TANK_FOR_DURATION step.
func (s Step) Left() int { return s.V1 }

// Right is the right speed of a TANK_FOR_DURATION step.
func (s Step) Right() int { return s.V2 }

// Heading is the target of a TURN_TO_HEADING step, in degrees.
func (s Step) Heading() int { return s.V1 }

// DurationMs returns how long the step holds, or 0 for untimed steps.
func (s Step) DurationMs() int {
	switch s.Type {
	case DriveForDuration:
		return s.V2
	case TankForDuration:
		return s.V3
	case Wait:
		return s.V1
	default:
		return 0
	}
}

// Duration is DurationMs as a time.Duration.
func (s Step) Duration() time.Duration {
	return time.Duration(s.DurationMs()) * time.Millisecond
}

// String renders the step the way it is stored on disk.
func (s Step) String() string {
	return fmt.Sprintf("%s,%d,%d,%d", s.Type, s.V1, s.V2, s.V3)
}

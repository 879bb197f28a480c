// Package robot declares the hardware collaborators the engine drives:
// motors, the heading sensor, the position estimate and the hand controller.
//
// Implementations live outside the core. The simulator in internal/sim is
// one; firmware bindings are another.
package robot

// MotorID names a motor group.
type MotorID int

const (
	LeftDrive MotorID = iota
	RightDrive
	ActuatorA
	ActuatorB
)

// AllMotors lists every motor group.
var AllMotors = []MotorID{LeftDrive, RightDrive, ActuatorA, ActuatorB}

// String returns the motor group name.
func (m MotorID) String() string {
	switch m {
	case LeftDrive:
		return "left_drive"
	case RightDrive:
		return "right_drive"
	case ActuatorA:
		return "actuator_a"
	case ActuatorB:
		return "actuator_b"
	default:
		return "unknown"
	}
}

// ParseMotorID is the inverse of String.
func ParseMotorID(s string) (MotorID, bool) {
	for _, id := range AllMotors {
		if id.String() == s {
			return id, true
		}
	}
	return 0, false
}

// FullPower is the largest velocity command, in signed percent.
const FullPower = 100

// Motors commands motor groups. Unreachable hardware is the
// implementation's problem; calls never fail.
type Motors interface {
	// SetVelocity spins the motor at a signed percentage of full power.
	SetVelocity(id MotorID, percent int)

	// Brake actively holds the motor still.
	Brake(id MotorID)
}

// HeadingSensor reports the robot's heading.
type HeadingSensor interface {
	// HeadingDegrees returns the heading in [0, 360).
	HeadingDegrees() float64
}

// Pose is a position estimate on the field.
type Pose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// PositionSensor reports the robot's position estimate.
type PositionSensor interface {
	Position() Pose
}

// Controller polls the driver's hand controller.
type Controller interface {
	Poll() InputFrame
}

// Clamp limits v to [-limit, limit].
func Clamp(v, limit int) int {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

// SetDrive commands both drive sides.
func SetDrive(m Motors, left, right int) {
	m.SetVelocity(LeftDrive, left)
	m.SetVelocity(RightDrive, right)
}

// BrakeDrive brakes both drive sides.
func BrakeDrive(m Motors) {
	m.Brake(LeftDrive)
	m.Brake(RightDrive)
}

// StopAll brakes every motor group. Auxiliary actuators are never left coasting.
func StopAll(m Motors) {
	for _, id := range AllMotors {
		m.Brake(id)
	}
}

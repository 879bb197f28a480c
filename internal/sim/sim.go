// Package sim provides a kinematic differential-drive robot that satisfies
// the robot collaborator interfaces, so plans can be run and recorded
// without hardware.
//
// Motion is integrated lazily from the clock whenever the robot is queried
// or commanded. Heading follows the compass convention: 0 is +Y, angles
// grow clockwise.
package sim

import (
	"math"
	"sync"
	"time"

	"github.com/danieljhkim/autonkit/internal/clock"
	"github.com/danieljhkim/autonkit/internal/robot"
)

// Config describes the simulated chassis.
type Config struct {
	// MaxSpeed is the wheel speed at full power, in metres per second.
	MaxSpeed float64
	// TrackWidth is the distance between the drive sides, in metres.
	TrackWidth float64
	// StartHeading is the initial heading in degrees.
	StartHeading float64
}

// DefaultConfig returns a small competition-size chassis.
func DefaultConfig() Config {
	return Config{MaxSpeed: 1.2, TrackWidth: 0.3}
}

// Stats accumulates what the simulated robot did.
type Stats struct {
	Distance   float64                  `json:"distance"`
	Rotation   float64                  `json:"rotation"`
	ActuatorOn map[string]time.Duration `json:"actuator_on"`
	Commands   int                      `json:"commands"`
	Brakes     int                      `json:"brakes"`
	LastSpeeds map[string]int           `json:"last_speeds"`
}

// Robot is a simulated robot. It is safe for concurrent use.
type Robot struct {
	clk clock.Clock
	cfg Config

	mu       sync.Mutex
	last     time.Time
	pose     robot.Pose
	speeds   [4]int
	distance float64
	rotation float64
	onTime   [4]time.Duration
	commands int
	brakes   int
}

// New creates a robot at the origin.
func New(clk clock.Clock, cfg Config) *Robot {
	def := DefaultConfig()
	if cfg.MaxSpeed <= 0 {
		cfg.MaxSpeed = def.MaxSpeed
	}
	if cfg.TrackWidth <= 0 {
		cfg.TrackWidth = def.TrackWidth
	}
	return &Robot{
		clk:  clk,
		cfg:  cfg,
		last: clk.Now(),
		pose: robot.Pose{Heading: wrap(cfg.StartHeading)},
	}
}

// SetVelocity implements robot.Motors.
func (r *Robot) SetVelocity(id robot.MotorID, percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance()
	r.commands++
	if int(id) < len(r.speeds) {
		r.speeds[id] = robot.Clamp(percent, robot.FullPower)
	}
}

// Brake implements robot.Motors.
func (r *Robot) Brake(id robot.MotorID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance()
	r.brakes++
	if int(id) < len(r.speeds) {
		r.speeds[id] = 0
	}
}

// HeadingDegrees implements robot.HeadingSensor.
func (r *Robot) HeadingDegrees() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance()
	return r.pose.Heading
}

// Position implements robot.PositionSensor.
func (r *Robot) Position() robot.Pose {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance()
	return r.pose
}

// Speed returns the last command for a motor group.
func (r *Robot) Speed(id robot.MotorID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.speeds[id]
}

// Stats returns a snapshot of the accumulated statistics.
func (r *Robot) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance()

	s := Stats{
		Distance:   r.distance,
		Rotation:   r.rotation,
		ActuatorOn: map[string]time.Duration{},
		Commands:   r.commands,
		Brakes:     r.brakes,
		LastSpeeds: map[string]int{},
	}
	for _, id := range robot.AllMotors {
		s.LastSpeeds[id.String()] = r.speeds[id]
	}
	for _, id := range []robot.MotorID{robot.ActuatorA, robot.ActuatorB} {
		s.ActuatorOn[id.String()] = r.onTime[id]
	}
	return s
}

// advance integrates motion from the last update to now. Callers hold mu.
func (r *Robot) advance() {
	now := r.clk.Now()
	dt := now.Sub(r.last)
	r.last = now
	if dt <= 0 {
		return
	}
	for _, id := range []robot.MotorID{robot.ActuatorA, robot.ActuatorB} {
		if r.speeds[id] != 0 {
			r.onTime[id] += dt
		}
	}

	sec := dt.Seconds()
	vl := float64(r.speeds[robot.LeftDrive]) / robot.FullPower * r.cfg.MaxSpeed
	vr := float64(r.speeds[robot.RightDrive]) / robot.FullPower * r.cfg.MaxSpeed
	v := (vl + vr) / 2
	omega := (vl - vr) / r.cfg.TrackWidth

	// Midpoint heading keeps arcs close to the exact solution at 20ms steps.
	dTheta := omega * sec * 180 / math.Pi
	mid := (r.pose.Heading + dTheta/2) * math.Pi / 180
	r.pose.X += v * sec * math.Sin(mid)
	r.pose.Y += v * sec * math.Cos(mid)
	r.pose.Heading = wrap(r.pose.Heading + dTheta)

	r.distance += math.Abs(v * sec)
	r.rotation += math.Abs(dTheta)
}

func wrap(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

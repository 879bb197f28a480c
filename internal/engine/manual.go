package engine

import (
	"github.com/danieljhkim/autonkit/internal/heading"
	"github.com/danieljhkim/autonkit/internal/robot"
)

// D-pad directions hold these compass headings when heading assist is on.
var dpadHeadings = []struct {
	button  robot.Button
	heading float64
}{
	{robot.ButtonUp, 0},
	{robot.ButtonRight, 90},
	{robot.ButtonDown, 180},
	{robot.ButtonLeft, 270},
}

// OnManualTick runs one pass of the driver-control loop. The dispatcher
// calls it every 20ms while the robot is driven by hand. Ticks arriving
// while an execution runs are ignored.
func (e *Engine) OnManualTick(f robot.InputFrame) {
	if e.guard.Running() {
		return
	}

	e.mu.Lock()
	for _, b := range f.Buttons.RisingEdges(e.prevButtons) {
		switch b {
		case robot.ButtonA:
			e.assist = true
		case robot.ButtonB:
			e.assist = false
		}
	}
	e.prevButtons = f.Buttons
	assist := e.assist
	requested := e.autonRequested
	e.autonRequested = false
	e.mu.Unlock()

	if requested {
		e.RunPlan(e.Mode(), TriggerManual)
		return
	}

	left, right := e.driveCommand(f, assist)
	if left == 0 && right == 0 {
		robot.BrakeDrive(e.motors)
	} else {
		robot.SetDrive(e.motors, left, right)
	}
	e.driveActuators(f)

	e.recorder.Sample(f)
	if sum, ok := e.recorder.TakeSummary(); ok {
		e.recordRecording(sum)
	}
}

// driveCommand maps one frame to drive speeds. A held D-pad button
// overrides the sticks.
func (e *Engine) driveCommand(f robot.InputFrame, assist bool) (left, right int) {
	m := e.opts.Manual
	speed := m.DPadSpeed

	if f.DPadHeld() {
		if assist {
			for _, d := range dpadHeadings {
				if f.Buttons.Has(d.button) {
					l, r := heading.Assist(d.heading, e.sensor.HeadingDegrees(), speed, m.AssistKp, m.AssistTurnLimit)
					return robot.Clamp(l, robot.FullPower), robot.Clamp(r, robot.FullPower)
				}
			}
		}
		switch {
		case f.Buttons.Has(robot.ButtonUp):
			return speed, speed
		case f.Buttons.Has(robot.ButtonDown):
			return -speed, -speed
		case f.Buttons.Has(robot.ButtonLeft):
			return -speed, speed
		default:
			return speed, -speed
		}
	}

	return robot.Clamp(f.Axis(m.LeftAxis), robot.FullPower), robot.Clamp(f.Axis(m.RightAxis), robot.FullPower)
}

// driveActuators runs each auxiliary actuator forward or in reverse while
// its shoulder button is held and brakes it otherwise.
func (e *Engine) driveActuators(f robot.InputFrame) {
	e.actuator(e.opts.Interp.ActuatorA, f.Buttons.Has(robot.ButtonL1), f.Buttons.Has(robot.ButtonL2))
	e.actuator(e.opts.Interp.ActuatorB, f.Buttons.Has(robot.ButtonR1), f.Buttons.Has(robot.ButtonR2))
}

func (e *Engine) actuator(id robot.MotorID, forward, reverse bool) {
	switch {
	case forward:
		e.motors.SetVelocity(id, robot.FullPower)
	case reverse:
		e.motors.SetVelocity(id, -robot.FullPower)
	default:
		e.motors.Brake(id)
	}
}

// ButtonAction names what a button press does in the manual loop. The
// names label BTN_ lines in drive logs.
func ButtonAction(b robot.Button) string {
	switch b {
	case robot.ButtonL1:
		return "ACTUATOR_A_FORWARD"
	case robot.ButtonL2:
		return "ACTUATOR_A_REVERSE"
	case robot.ButtonR1:
		return "ACTUATOR_B_FORWARD"
	case robot.ButtonR2:
		return "ACTUATOR_B_REVERSE"
	case robot.ButtonUp:
		return "DPAD_UP"
	case robot.ButtonDown:
		return "DPAD_DOWN"
	case robot.ButtonLeft:
		return "DPAD_LEFT"
	case robot.ButtonRight:
		return "DPAD_RIGHT"
	case robot.ButtonA:
		return "HEADING_ASSIST_ON"
	case robot.ButtonB:
		return "HEADING_ASSIST_OFF"
	default:
		return "NO_ACTION"
	}
}

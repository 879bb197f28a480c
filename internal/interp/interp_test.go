package interp

import (
	"math"
	"testing"
	"time"

	"github.com/danieljhkim/autonkit/internal/clock"
	"github.com/danieljhkim/autonkit/internal/guard"
	"github.com/danieljhkim/autonkit/internal/heading"
	"github.com/danieljhkim/autonkit/internal/logging"
	"github.com/danieljhkim/autonkit/internal/plan"
	"github.com/danieljhkim/autonkit/internal/robot"
)

var epoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type command struct {
	at      time.Duration
	motor   robot.MotorID
	percent int
	brake   bool
}

// fakeBot records motor commands with their offset from epoch and turns in
// place in proportion to the drive difference on every heading read.
type fakeBot struct {
	clk      *clock.FakeClock
	commands []command
	speeds   map[robot.MotorID]int
	heading  float64
}

func newFakeBot(clk *clock.FakeClock) *fakeBot {
	return &fakeBot{clk: clk, speeds: map[robot.MotorID]int{}}
}

func (b *fakeBot) SetVelocity(id robot.MotorID, percent int) {
	b.speeds[id] = percent
	b.commands = append(b.commands, command{at: b.clk.Now().Sub(epoch), motor: id, percent: percent})
}

func (b *fakeBot) Brake(id robot.MotorID) {
	b.speeds[id] = 0
	b.commands = append(b.commands, command{at: b.clk.Now().Sub(epoch), motor: id, brake: true})
}

func (b *fakeBot) HeadingDegrees() float64 {
	b.heading += 0.05 * float64(b.speeds[robot.LeftDrive]-b.speeds[robot.RightDrive])
	b.heading = math.Mod(b.heading+360, 360)
	return b.heading
}

func (b *fakeBot) allStopped() bool {
	for _, id := range robot.AllMotors {
		if b.speeds[id] != 0 {
			return false
		}
	}
	return true
}

func (b *fakeBot) commandsFor(id robot.MotorID) []command {
	var out []command
	for _, c := range b.commands {
		if c.motor == id {
			out = append(out, c)
		}
	}
	return out
}

func setup(t *testing.T, max time.Duration, cfg Config) (*Interpreter, *fakeBot, *guard.Guard, *clock.FakeClock) {
	t.Helper()
	clk := clock.NewFakeClock(epoch)
	bot := newFakeBot(clk)
	g := guard.New(clk)
	if !g.Begin(max) {
		t.Fatal("Begin() = false")
	}
	hc := heading.New(bot, bot, clk, heading.DefaultConfig())
	return New(bot, hc, clk, cfg, logging.Discard()), bot, g, clk
}

func TestExecute_DriveHoldsThenBrakes(t *testing.T) {
	in, bot, g, clk := setup(t, 15*time.Second, DefaultConfig())

	out := in.Execute(plan.New(0, plan.Drive(60, 1200)), g)

	if out.Aborted || out.Completed != 1 {
		t.Fatalf("Execute() = %+v, want 1 completed", out)
	}
	if got := clk.Now().Sub(epoch); got != 1200*time.Millisecond {
		t.Errorf("elapsed = %v, want 1.2s", got)
	}
	left := bot.commandsFor(robot.LeftDrive)
	if len(left) < 2 {
		t.Fatalf("left drive commands = %+v", left)
	}
	if left[0] != (command{at: 0, motor: robot.LeftDrive, percent: 60}) {
		t.Errorf("first left command = %+v", left[0])
	}
	if !left[1].brake || left[1].at != 1200*time.Millisecond {
		t.Errorf("second left command = %+v, want brake at 1.2s", left[1])
	}
	if !bot.allStopped() {
		t.Errorf("motors still running: %v", bot.speeds)
	}
}

func TestExecute_TankUsesIndependentSides(t *testing.T) {
	in, bot, g, clk := setup(t, 15*time.Second, DefaultConfig())

	in.Execute(plan.New(0, plan.Tank(40, -25, 300)), g)

	if got := bot.commandsFor(robot.LeftDrive)[0].percent; got != 40 {
		t.Errorf("left = %d, want 40", got)
	}
	if got := bot.commandsFor(robot.RightDrive)[0].percent; got != -25 {
		t.Errorf("right = %d, want -25", got)
	}
	if got := clk.Now().Sub(epoch); got != 300*time.Millisecond {
		t.Errorf("elapsed = %v, want 300ms", got)
	}
}

func TestExecute_AbortDuringWait(t *testing.T) {
	in, bot, g, clk := setup(t, 500*time.Millisecond, DefaultConfig())

	p := plan.New(0,
		plan.Step{Type: plan.ActuatorAOn},
		plan.Drive(50, 1000),
		plan.Pause(100),
	)
	out := in.Execute(p, g)

	if !out.Aborted {
		t.Fatal("execution past the deadline was not aborted")
	}
	if out.Completed != 1 || out.Total != 3 {
		t.Errorf("Execute() = %+v, want 1 of 3 completed", out)
	}
	if got := clk.Now().Sub(epoch); got != 500*time.Millisecond {
		t.Errorf("stopped at %v, want 500ms", got)
	}
	if !bot.allStopped() {
		t.Errorf("motors still running after abort: %v", bot.speeds)
	}
	for _, c := range bot.commands {
		if c.at > 500*time.Millisecond {
			t.Errorf("command after deadline: %+v", c)
		}
	}
}

func TestExecute_AbortedBeforeStart(t *testing.T) {
	in, bot, g, _ := setup(t, time.Second, DefaultConfig())
	g.Abort()

	out := in.Execute(plan.New(0, plan.Drive(60, 1000)), g)
	if !out.Aborted || out.Completed != 0 {
		t.Errorf("Execute() = %+v", out)
	}
	for _, c := range bot.commands {
		if !c.brake {
			t.Errorf("motor driven after abort: %+v", c)
		}
	}
}

func TestExecute_NoneHasNoSideEffects(t *testing.T) {
	in, bot, g, clk := setup(t, time.Second, DefaultConfig())

	out := in.Execute(plan.New(0, plan.Step{Type: plan.None, V1: 99, V2: 99, V3: 99}), g)

	if out.Completed != 1 || out.Aborted {
		t.Errorf("Execute() = %+v", out)
	}
	if !clk.Now().Equal(epoch) {
		t.Error("NONE step waited")
	}
	for _, c := range bot.commands {
		if !c.brake {
			t.Errorf("NONE step drove a motor: %+v", c)
		}
	}
}

func TestExecute_Actuators(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		step    plan.StepType
		motor   robot.MotorID
		percent int
		brake   bool
	}{
		{"A on", DefaultConfig(), plan.ActuatorAOn, robot.ActuatorA, robot.FullPower, false},
		{"A off brakes", DefaultConfig(), plan.ActuatorAOff, robot.ActuatorA, 0, true},
		{"B on", DefaultConfig(), plan.ActuatorBOn, robot.ActuatorB, robot.FullPower, false},
		{"B off brakes", DefaultConfig(), plan.ActuatorBOff, robot.ActuatorB, 0, true},
		{
			"swapped mapping",
			Config{ActuatorA: robot.ActuatorB, ActuatorB: robot.ActuatorA},
			plan.ActuatorAOn, robot.ActuatorB, robot.FullPower, false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, bot, g, _ := setup(t, time.Second, tt.cfg)
			in.Execute(plan.New(0, plan.Step{Type: tt.step}), g)

			got := bot.commands[0]
			want := command{motor: tt.motor, percent: tt.percent, brake: tt.brake}
			if got != want {
				t.Errorf("first command = %+v, want %+v", got, want)
			}
		})
	}
}

func TestExecute_TurnStep(t *testing.T) {
	in, bot, g, _ := setup(t, 15*time.Second, DefaultConfig())

	out := in.Execute(plan.New(0, plan.Turn(90)), g)
	if out.Aborted {
		t.Fatal("turn aborted")
	}
	if err := heading.Error(90, bot.heading); math.Abs(err) >= 2 {
		t.Errorf("heading = %v, want within 2 of 90", bot.heading)
	}
	for _, c := range bot.commandsFor(robot.LeftDrive) {
		if c.percent > 60 {
			t.Errorf("turn exceeded max speed: %+v", c)
		}
	}
}

func TestExecute_EndsWithAllMotorsBraked(t *testing.T) {
	in, bot, g, _ := setup(t, time.Second, DefaultConfig())

	in.Execute(plan.New(0, plan.Step{Type: plan.ActuatorBOn}), g)

	n := len(bot.commands)
	if n < len(robot.AllMotors) {
		t.Fatalf("commands = %+v", bot.commands)
	}
	for i, id := range robot.AllMotors {
		c := bot.commands[n-len(robot.AllMotors)+i]
		if c.motor != id || !c.brake {
			t.Errorf("tail command %d = %+v, want brake %v", i, c, id)
		}
	}
}

package robot

import (
	"reflect"
	"testing"
)

type call struct {
	motor   MotorID
	percent int
	brake   bool
}

type recordingMotors struct {
	calls []call
}

func (m *recordingMotors) SetVelocity(id MotorID, percent int) {
	m.calls = append(m.calls, call{motor: id, percent: percent})
}

func (m *recordingMotors) Brake(id MotorID) {
	m.calls = append(m.calls, call{motor: id, brake: true})
}

func TestClamp(t *testing.T) {
	tests := []struct{ v, limit, want int }{
		{50, 100, 50},
		{150, 100, 100},
		{-150, 100, -100},
		{-60, 60, -60},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.limit); got != tt.want {
			t.Errorf("Clamp(%d, %d) = %d, want %d", tt.v, tt.limit, got, tt.want)
		}
	}
}

func TestStopAll_BrakesEveryMotor(t *testing.T) {
	m := &recordingMotors{}
	StopAll(m)

	want := []call{
		{motor: LeftDrive, brake: true},
		{motor: RightDrive, brake: true},
		{motor: ActuatorA, brake: true},
		{motor: ActuatorB, brake: true},
	}
	if !reflect.DeepEqual(m.calls, want) {
		t.Errorf("StopAll calls = %+v, want %+v", m.calls, want)
	}
}

func TestButtonSet_RisingEdges(t *testing.T) {
	prev := Buttons(ButtonL1, ButtonA)
	now := Buttons(ButtonL1, ButtonR2, ButtonY)

	got := now.RisingEdges(prev)
	want := []Button{ButtonR2, ButtonY}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RisingEdges() = %v, want %v", got, want)
	}

	if edges := now.RisingEdges(now); len(edges) != 0 {
		t.Errorf("held buttons produced edges: %v", edges)
	}
}

func TestParseButton(t *testing.T) {
	for _, b := range AllButtons {
		got, ok := ParseButton(b.String())
		if !ok || got != b {
			t.Errorf("ParseButton(%q) = %v, %v", b.String(), got, ok)
		}
	}
	if _, ok := ParseButton("Z"); ok {
		t.Error("expected unknown button to fail")
	}
}

func TestInputFrame_Axis(t *testing.T) {
	f := InputFrame{Axes: [AxisCount]int{1, 2, 3, 4}}
	for n := 1; n <= AxisCount; n++ {
		if got := f.Axis(n); got != n {
			t.Errorf("Axis(%d) = %d", n, got)
		}
	}
	if f.Axis(0) != 0 || f.Axis(5) != 0 {
		t.Error("out-of-range axes should read 0")
	}
}

package plan

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestStepType_String(t *testing.T) {
	for _, st := range StepTypes() {
		if got := ParseStepType(st.String()); got != st {
			t.Errorf("ParseStepType(%q) = %v, want %v", st.String(), got, st)
		}
	}
	if got := StepType(42).String(); got != "NONE" {
		t.Errorf("out of range String() = %q, want NONE", got)
	}
}

func TestStep_JSONUsesTypeNames(t *testing.T) {
	data, err := json.Marshal(Turn(90))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got, want := string(data), `{"type":"TURN_TO_HEADING","v1":90,"v2":0,"v3":0}`; got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}

	var s Step
	if err := json.Unmarshal([]byte(`{"type":"WAIT_MS","v1":300}`), &s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if s != Pause(300) {
		t.Errorf("Unmarshal() = %+v, want %+v", s, Pause(300))
	}
}

func TestStepType_Cycle(t *testing.T) {
	if got := ActuatorBOff.Next(); got != None {
		t.Errorf("ActuatorBOff.Next() = %v, want None", got)
	}
	if got := None.Prev(); got != ActuatorBOff {
		t.Errorf("None.Prev() = %v, want ActuatorBOff", got)
	}
	for _, st := range StepTypes() {
		if st.Next().Prev() != st {
			t.Errorf("%v.Next().Prev() != %v", st, st)
		}
	}
}

func TestStep_DurationMs(t *testing.T) {
	tests := []struct {
		step Step
		want int
	}{
		{Drive(60, 1200), 1200},
		{Tank(10, 20, 300), 300},
		{Pause(250), 250},
		{Turn(90), 0},
		{Step{Type: ActuatorAOn, V1: 500}, 0},
	}
	for _, tt := range tests {
		if got := tt.step.DurationMs(); got != tt.want {
			t.Errorf("%v.DurationMs() = %d, want %d", tt.step, got, tt.want)
		}
		if got := tt.step.Duration(); got != time.Duration(tt.want)*time.Millisecond {
			t.Errorf("%v.Duration() = %v", tt.step, got)
		}
	}
}

func TestPlan_AppendRespectsCapacity(t *testing.T) {
	p := Plan{Capacity: 2}

	if !p.Append(Pause(1)) || !p.Append(Pause(2)) {
		t.Fatal("expected first two appends to succeed")
	}
	if p.Append(Pause(3)) {
		t.Error("expected append past capacity to fail")
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}

	unbounded := Plan{}
	for i := 0; i < 100; i++ {
		if !unbounded.Append(Pause(i)) {
			t.Fatalf("unbounded append %d failed", i)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"primary", Primary, false},
		{"secondary", Secondary, false},
		{"gps", Primary, false},
		{"basic", Secondary, false},
		{"tertiary", Primary, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSet_GetReturnsCopy(t *testing.T) {
	s := NewSet(New(0, Pause(1)), Plan{})

	p := s.Get(Primary)
	p.Steps[0] = Pause(99)

	if got := s.Get(Primary).Steps[0]; got != Pause(1) {
		t.Errorf("Set was mutated through Get copy: %v", got)
	}
}

func TestSet_ConcurrentEdit(t *testing.T) {
	s := NewSet(Plan{}, Plan{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Edit(Secondary, func(p *Plan) { p.Append(Pause(i)) })
		}(i)
	}
	wg.Wait()

	if got := s.Get(Secondary).Len(); got != 50 {
		t.Errorf("secondary has %d steps, want 50", got)
	}
	if got := s.Get(Primary).Len(); got != 0 {
		t.Errorf("primary has %d steps, want 0", got)
	}
}

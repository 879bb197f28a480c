package plan

import (
	"fmt"
	"slices"
	"sync"
)

// Mode selects one of the two plans held in memory.
type Mode int

const (
	// Primary is the sensor-assisted plan.
	Primary Mode = iota
	// Secondary is the dead-reckoning plan.
	Secondary
)

// Modes lists both modes in file order.
var Modes = []Mode{Primary, Secondary}

// String returns the lower-case mode name.
func (m Mode) String() string {
	if m == Secondary {
		return "secondary"
	}
	return "primary"
}

// Marker returns the section marker that introduces the mode in a plan file.
func (m Mode) Marker() string {
	if m == Secondary {
		return "[SECONDARY]"
	}
	return "[PRIMARY]"
}

// ParseMode parses "primary" or "secondary".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "primary", "gps":
		return Primary, nil
	case "secondary", "basic":
		return Secondary, nil
	default:
		return Primary, fmt.Errorf("unknown plan mode %q", s)
	}
}

// Plan is an ordered list of steps. A zero Capacity means unbounded.
type Plan struct {
	Steps    []Step `json:"steps"`
	Capacity int    `json:"capacity,omitempty"`
}

// New returns a plan with the given capacity. Steps beyond capacity are dropped.
func New(capacity int, steps ...Step) Plan {
	p := Plan{Capacity: capacity}
	for _, s := range steps {
		if !p.Append(s) {
			break
		}
	}
	return p
}

// Len returns the number of steps.
func (p Plan) Len() int {
	return len(p.Steps)
}

// Full reports whether the plan cannot accept another step.
func (p Plan) Full() bool {
	return p.Capacity > 0 && len(p.Steps) >= p.Capacity
}

// Append adds a step. It returns false, leaving the plan untouched, when full.
func (p *Plan) Append(s Step) bool {
	if p.Full() {
		return false
	}
	p.Steps = append(p.Steps, s)
	return true
}

// Last returns a pointer to the final step, or nil for an empty plan.
func (p *Plan) Last() *Step {
	if len(p.Steps) == 0 {
		return nil
	}
	return &p.Steps[len(p.Steps)-1]
}

// Clear removes all steps and keeps the capacity.
func (p *Plan) Clear() {
	p.Steps = nil
}

// Clone returns a deep copy.
func (p Plan) Clone() Plan {
	return Plan{Steps: slices.Clone(p.Steps), Capacity: p.Capacity}
}

// Equal compares steps only; capacity is not part of plan identity.
func (p Plan) Equal(o Plan) bool {
	return slices.Equal(p.Steps, o.Steps)
}

// Set holds the primary and secondary plans shared by the autonomous runner,
// the recorder and the editor. The lock is only held for a single
// read-modify-write, never across a wait.
type Set struct {
	mu    sync.Mutex
	plans [2]Plan
}

// NewSet creates a Set holding copies of the given plans.
func NewSet(primary, secondary Plan) *Set {
	s := &Set{}
	s.plans[Primary] = primary.Clone()
	s.plans[Secondary] = secondary.Clone()
	return s
}

// Get returns a copy of the plan for mode m.
func (s *Set) Get(m Mode) Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plans[m].Clone()
}

// Snapshot returns copies of both plans.
func (s *Set) Snapshot() (primary, secondary Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plans[Primary].Clone(), s.plans[Secondary].Clone()
}

// Replace swaps in new copies of both plans.
func (s *Set) Replace(primary, secondary Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[Primary] = primary.Clone()
	s.plans[Secondary] = secondary.Clone()
}

// Edit runs fn with exclusive access to the plan for mode m.
func (s *Set) Edit(m Mode, fn func(p *Plan)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.plans[m])
}

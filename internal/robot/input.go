package robot

import "strings"

// Button is one digital input on the hand controller.
type Button uint16

const (
	ButtonL1 Button = 1 << iota
	ButtonL2
	ButtonR1
	ButtonR2
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonA
	ButtonB
	ButtonX
	ButtonY
)

// AllButtons lists every button in log order.
var AllButtons = []Button{
	ButtonL1, ButtonL2, ButtonR1, ButtonR2,
	ButtonUp, ButtonDown, ButtonLeft, ButtonRight,
	ButtonA, ButtonB, ButtonX, ButtonY,
}

var buttonNames = map[Button]string{
	ButtonL1:    "L1",
	ButtonL2:    "L2",
	ButtonR1:    "R1",
	ButtonR2:    "R2",
	ButtonUp:    "UP",
	ButtonDown:  "DOWN",
	ButtonLeft:  "LEFT",
	ButtonRight: "RIGHT",
	ButtonA:     "A",
	ButtonB:     "B",
	ButtonX:     "X",
	ButtonY:     "Y",
}

// String returns the button label used in drive logs.
func (b Button) String() string {
	if name, ok := buttonNames[b]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseButton is the inverse of String.
func ParseButton(s string) (Button, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for b, name := range buttonNames {
		if name == s {
			return b, true
		}
	}
	return 0, false
}

// ButtonSet is the set of buttons held down in one frame.
type ButtonSet uint16

// Buttons builds a set.
func Buttons(bs ...Button) ButtonSet {
	var set ButtonSet
	for _, b := range bs {
		set |= ButtonSet(b)
	}
	return set
}

// Has reports whether b is held.
func (s ButtonSet) Has(b Button) bool {
	return s&ButtonSet(b) != 0
}

// RisingEdges returns the buttons held in s that were not held in prev.
func (s ButtonSet) RisingEdges(prev ButtonSet) []Button {
	edges := s &^ prev
	var out []Button
	for _, b := range AllButtons {
		if edges.Has(b) {
			out = append(out, b)
		}
	}
	return out
}

// AxisCount is the number of analog axes on the controller.
const AxisCount = 4

// InputFrame is one poll of the hand controller. Axes are signed values in
// [-100, 100]; Axes[0] is AXIS1.
type InputFrame struct {
	Axes    [AxisCount]int
	Buttons ButtonSet
}

// Axis returns the 1-based axis value, or 0 for an unknown axis.
func (f InputFrame) Axis(n int) int {
	if n < 1 || n > AxisCount {
		return 0
	}
	return f.Axes[n-1]
}

// DPadHeld reports whether any direction pad button is held.
func (f InputFrame) DPadHeld() bool {
	return f.Buttons.Has(ButtonUp) || f.Buttons.Has(ButtonDown) ||
		f.Buttons.Has(ButtonLeft) || f.Buttons.Has(ButtonRight)
}

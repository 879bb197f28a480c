package recorder

import (
	"math"

	"github.com/danieljhkim/autonkit/internal/plan"
	"github.com/danieljhkim/autonkit/internal/robot"
)

// Quantizer maps raw stick values onto the coarse grid stored in plans, so
// small stick jitter does not break a hold into many steps.
type Quantizer struct {
	Deadband int
	Snap     int
	Limit    int
}

// Quantize zeroes values within the deadband, rounds to the nearest multiple
// of Snap and clamps to ±Limit.
func (q Quantizer) Quantize(v int) int {
	if abs(v) <= q.Deadband {
		return 0
	}
	if q.Snap > 1 {
		v = int(math.Round(float64(v)/float64(q.Snap))) * q.Snap
	}
	if q.Limit > 0 {
		v = robot.Clamp(v, q.Limit)
	}
	return v
}

// compress adds one sample of intervalMs to p. A sample equal to the last
// TANK step extends it; anything else appends a new step. It returns false
// when the plan is full and the sample was dropped.
func compress(p *plan.Plan, left, right, intervalMs int) bool {
	if last := p.Last(); last != nil && last.Type == plan.TankForDuration &&
		last.Left() == left && last.Right() == right {
		last.V3 += intervalMs
		return true
	}
	return p.Append(plan.Tank(left, right, intervalMs))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

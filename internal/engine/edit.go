package engine

import "github.com/danieljhkim/autonkit/internal/plan"

// Field selects one of a step's positional values.
type Field int

const (
	FieldV1 Field = iota + 1
	FieldV2
	FieldV3
)

// Adjustment sizes per field. V1 holds speeds and headings; V2 and V3 hold
// durations or a second speed.
const (
	v1Delta = 5
	vnDelta = 50
)

// EditStep replaces the step at index in the selected plan, or appends it
// when index equals the plan length. It returns false while recording, for
// an index past the end, or when the plan is full.
func (e *Engine) EditStep(index int, s plan.Step) bool {
	return e.edit(func(p *plan.Plan) bool {
		switch {
		case index >= 0 && index < p.Len():
			p.Steps[index] = s
			return true
		case index == p.Len():
			return p.Append(s)
		default:
			return false
		}
	})
}

// CycleStepType moves the step at index to the next (or previous) step type.
func (e *Engine) CycleStepType(index int, forward bool) bool {
	return e.editAt(index, func(s *plan.Step) {
		if forward {
			s.Type = s.Type.Next()
		} else {
			s.Type = s.Type.Prev()
		}
	})
}

// AdjustStep nudges one value of the step at index up or down: V1 by 5, V2
// and V3 by 50.
func (e *Engine) AdjustStep(index int, field Field, up bool) bool {
	delta := vnDelta
	if field == FieldV1 {
		delta = v1Delta
	}
	if !up {
		delta = -delta
	}
	return e.editAt(index, func(s *plan.Step) {
		switch field {
		case FieldV1:
			s.V1 += delta
		case FieldV2:
			s.V2 += delta
		case FieldV3:
			s.V3 += delta
		}
	})
}

// RemoveStep deletes the step at index.
func (e *Engine) RemoveStep(index int) bool {
	return e.edit(func(p *plan.Plan) bool {
		if index < 0 || index >= p.Len() {
			return false
		}
		p.Steps = append(p.Steps[:index], p.Steps[index+1:]...)
		return true
	})
}

// ClearPlan empties the selected plan.
func (e *Engine) ClearPlan() bool {
	return e.edit(func(p *plan.Plan) bool {
		p.Clear()
		return true
	})
}

// ReplacePlan overwrites the plan for m, truncating to capacity.
func (e *Engine) ReplacePlan(m plan.Mode, steps plan.Plan) bool {
	if e.recorder.Recording() {
		return false
	}
	e.plans.Edit(m, func(p *plan.Plan) {
		p.Clear()
		for _, s := range steps.Steps {
			if !p.Append(s) {
				break
			}
		}
	})
	return true
}

func (e *Engine) editAt(index int, fn func(s *plan.Step)) bool {
	return e.edit(func(p *plan.Plan) bool {
		if index < 0 || index >= p.Len() {
			return false
		}
		fn(&p.Steps[index])
		return true
	})
}

// edit applies fn to the selected plan. Edits are refused while recording.
func (e *Engine) edit(fn func(p *plan.Plan) bool) bool {
	if e.recorder.Recording() {
		return false
	}
	ok := false
	e.plans.Edit(e.Mode(), func(p *plan.Plan) {
		ok = fn(p)
	})
	return ok
}

package engine

import (
	"fmt"

	"github.com/danieljhkim/autonkit/internal/plan"
	"github.com/danieljhkim/autonkit/internal/planstore"
)

// Status returns a snapshot of the engine state.
func (e *Engine) Status() *StatusResult {
	primary, secondary := e.plans.Snapshot()

	e.mu.Lock()
	result := &StatusResult{
		Mode:          e.mode.String(),
		HeadingAssist: e.assist,
	}
	if e.lastRun != nil {
		last := *e.lastRun
		result.LastRun = &last
	}
	e.mu.Unlock()

	result.Slot = e.slots.Active()
	result.State = e.guard.State().String()
	result.PrimarySteps = primary.Len()
	result.SecondarySteps = secondary.Len()
	result.Heading = e.sensor.HeadingDegrees()
	if e.position != nil {
		pose := e.position.Position()
		result.Pose = &pose
	}
	if session, ok := e.recorder.Session(); ok {
		result.Recording = &session
	}
	result.RecordingFull = e.recorder.Full()
	return result
}

// ActiveSlot returns the selected zero-based slot.
func (e *Engine) ActiveSlot() int {
	return e.slots.Active()
}

// Mode returns the plan that OnAutonomous runs.
func (e *Engine) Mode() plan.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SetMode selects the plan that OnAutonomous runs.
func (e *Engine) SetMode(m plan.Mode) {
	e.mu.Lock()
	e.mode = m
	e.mu.Unlock()
	e.log.Info("mode selected", "mode", m.String())
}

// Plan returns a copy of the plan for m.
func (e *Engine) Plan(m plan.Mode) plan.Plan {
	return e.plans.Get(m)
}

// Plans returns copies of both plans.
func (e *Engine) Plans() (primary, secondary plan.Plan) {
	return e.plans.Snapshot()
}

// SelectSlot makes slot active, persists the selection and loads that
// slot's plans. Unsaved edits are discarded.
func (e *Engine) SelectSlot(slot int) error {
	if !planstore.ValidSlot(slot) {
		return ErrInvalidSlot
	}
	if e.recorder.Recording() {
		return ErrRecording
	}
	if !e.slots.Select(slot) {
		e.log.Warn("slot selection not persisted", "slot", slot+1)
	}
	e.loadSlot(slot)
	return nil
}

// Save writes both plans into the active slot.
func (e *Engine) Save() error {
	slot := e.slots.Active()
	primary, secondary := e.plans.Snapshot()
	if !e.store.Save(slot, primary, secondary) {
		return fmt.Errorf("%w: slot %d", ErrSaveFailed, slot+1)
	}
	return nil
}

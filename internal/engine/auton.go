package engine

import (
	"github.com/google/uuid"

	"github.com/danieljhkim/autonkit/internal/plan"
	"github.com/danieljhkim/autonkit/internal/recorder"
	"github.com/danieljhkim/autonkit/internal/runlog"
)

// OnAutonomous runs the selected plan for the competition's autonomous
// phase. It returns once the plan completes or is aborted.
func (e *Engine) OnAutonomous() (RunResult, bool) {
	return e.RunPlan(e.Mode(), TriggerCompetition)
}

// RequestAutonomous asks the manual loop to run the selected plan on its
// next tick.
func (e *Engine) RequestAutonomous() {
	e.mu.Lock()
	e.autonRequested = true
	e.mu.Unlock()
}

// Abort requests that the running execution stop at its next check.
func (e *Engine) Abort() bool {
	return e.guard.Abort()
}

// RunPlan executes the plan for m under the deadline guard. It returns
// false without touching the motors when an execution is already running.
// Any active recording is stopped first.
func (e *Engine) RunPlan(m plan.Mode, trigger Trigger) (RunResult, bool) {
	e.startMu.Lock()
	if !e.guard.Begin(e.opts.AutonMax) {
		e.startMu.Unlock()
		e.log.Warn("execution already running", "trigger", string(trigger))
		return RunResult{}, false
	}
	sum, stopped := e.recorder.Stop(recorder.ReasonAuton)
	e.startMu.Unlock()

	if stopped {
		e.recordRecording(sum)
	}

	p := e.plans.Get(m)
	result := RunResult{
		ID:        uuid.NewString(),
		Slot:      e.slots.Active(),
		Mode:      m.String(),
		Trigger:   trigger,
		PlanHash:  e.hasher.HashPlan(p),
		StartedAt: e.clock.Now(),
	}
	e.log.Info("execution started",
		"id", result.ID,
		"mode", result.Mode,
		"trigger", string(trigger),
		"steps", p.Len(),
	)

	result.Outcome = e.interp.Execute(p, e.guard)
	result.State = e.guard.End()
	result.StateName = result.State.String()
	result.FinishedAt = e.clock.Now()

	e.log.Info("execution finished",
		"id", result.ID,
		"state", result.StateName,
		"completed", result.Outcome.Completed,
		"total", result.Outcome.Total,
		"elapsed", result.Duration().String(),
	)

	e.mu.Lock()
	last := result
	e.lastRun = &last
	e.mu.Unlock()

	e.recordExecution(result)
	return result, true
}

func (e *Engine) recordExecution(r RunResult) {
	if e.history == nil {
		return
	}
	err := e.history.RecordExecution(runlog.Execution{
		ID:         r.ID,
		Slot:       r.Slot,
		Mode:       r.Mode,
		Trigger:    string(r.Trigger),
		PlanHash:   r.PlanHash,
		Steps:      r.Outcome.Total,
		Completed:  r.Outcome.Completed,
		Outcome:    r.StateName,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	})
	if err != nil {
		e.log.Warn("failed to record execution", "id", r.ID, "error", err)
	}
}

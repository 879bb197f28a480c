package engine

import (
	"github.com/danieljhkim/autonkit/internal/recorder"
	"github.com/danieljhkim/autonkit/internal/runlog"
)

// StartRecording begins recording the sticks into the selected plan,
// clearing it first. It returns false while an execution runs or another
// recording is active.
func (e *Engine) StartRecording() bool {
	e.startMu.Lock()
	defer e.startMu.Unlock()

	if e.guard.Running() {
		return false
	}
	m := e.Mode()
	if !e.recorder.StartSteps(recorder.SetSink(e.plans, m)) {
		return false
	}
	e.mu.Lock()
	e.recTarget = m.String()
	e.mu.Unlock()
	return true
}

// StartFrameLog begins a raw drive log on the storage card. Calling it
// while a log is already open returns that session.
func (e *Engine) StartFrameLog() (recorder.Session, error) {
	e.startMu.Lock()
	defer e.startMu.Unlock()

	if e.guard.Running() {
		return recorder.Session{}, ErrRunning
	}

	e.mu.Lock()
	driveMode := "TANK"
	if e.assist {
		driveMode = "HEADING_ASSIST"
	}
	e.mu.Unlock()

	session, err := e.recorder.StartFrames(driveMode)
	if err != nil {
		return recorder.Session{}, err
	}
	e.mu.Lock()
	e.recTarget = session.File
	e.mu.Unlock()
	return session, nil
}

// StopRecording ends the active recording. An empty reason means the
// driver stopped it.
func (e *Engine) StopRecording(reason string) (recorder.Summary, error) {
	sum, ok := e.recorder.Stop(reason)
	if !ok {
		return recorder.Summary{}, ErrNotRecording
	}
	e.recordRecording(sum)
	return sum, nil
}

// Recording reports whether a recording is active.
func (e *Engine) Recording() bool {
	return e.recorder.Recording()
}

func (e *Engine) recordRecording(sum recorder.Summary) {
	e.mu.Lock()
	target := e.recTarget
	e.recTarget = ""
	e.mu.Unlock()

	if e.history == nil {
		return
	}
	err := e.history.RecordRecording(runlog.Recording{
		ID:        sum.ID,
		Kind:      sum.Mode,
		Target:    target,
		Reason:    sum.Reason,
		Samples:   sum.Samples,
		Steps:     sum.Steps,
		Lines:     sum.Lines,
		Full:      sum.Full,
		StartedAt: sum.Started,
		StoppedAt: sum.Stopped,
	})
	if err != nil {
		e.log.Warn("failed to record recording", "id", sum.ID, "error", err)
	}
}

package engine

import "errors"

var (
	// ErrInvalidSlot indicates a slot index outside the available slots.
	ErrInvalidSlot = errors.New("invalid slot")

	// ErrRecording indicates an operation refused while a recording is active.
	ErrRecording = errors.New("recording in progress")

	// ErrNotRecording indicates there is no recording to stop.
	ErrNotRecording = errors.New("not recording")

	// ErrRunning indicates an execution is already in progress.
	ErrRunning = errors.New("execution in progress")

	// ErrSaveFailed indicates the slot file could not be written.
	ErrSaveFailed = errors.New("failed to save plans")
)

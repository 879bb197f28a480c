// Package engine owns all mutable robot-side state and exposes the entry
// points the competition-phase dispatcher calls.
//
// The engine acts as the orchestration layer between the dispatcher or CLI
// and the lower-level packages. It coordinates slot persistence, plan
// execution under the guard, the manual drive loop and input recording.
//
// Key components:
//   - OnInit: restores the active slot and its plans
//   - OnAutonomous / RunPlan: executes a plan under the deadline guard
//   - OnManualTick: one 20ms pass of the driver-control loop
//   - Recording: step and frame-log recording during manual control
//   - Editing: menu-style plan edits, refused while recording
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/danieljhkim/autonkit/internal/clock"
	"github.com/danieljhkim/autonkit/internal/fsops"
	"github.com/danieljhkim/autonkit/internal/guard"
	"github.com/danieljhkim/autonkit/internal/hash"
	"github.com/danieljhkim/autonkit/internal/heading"
	"github.com/danieljhkim/autonkit/internal/interp"
	"github.com/danieljhkim/autonkit/internal/logging"
	"github.com/danieljhkim/autonkit/internal/plan"
	"github.com/danieljhkim/autonkit/internal/planstore"
	"github.com/danieljhkim/autonkit/internal/recorder"
	"github.com/danieljhkim/autonkit/internal/robot"
	"github.com/danieljhkim/autonkit/internal/runlog"
)

// History stores finished executions and recordings.
type History interface {
	RecordExecution(e runlog.Execution) error
	RecordRecording(r runlog.Recording) error
}

// Deps are the collaborators the engine drives.
type Deps struct {
	Motors   robot.Motors
	Heading  robot.HeadingSensor
	Position robot.PositionSensor // optional
	Clock    clock.Clock
	FS       fsops.FS
	Hasher   hash.Hasher
	History  History // optional
	Logger   *slog.Logger
}

// Engine orchestrates all plan operations.
// It is the main API surface called by the dispatcher and the CLI.
type Engine struct {
	motors   robot.Motors
	sensor   robot.HeadingSensor
	position robot.PositionSensor
	clock    clock.Clock
	hasher   hash.Hasher
	history  History
	log      *slog.Logger
	opts     Options

	plans    *plan.Set
	store    *planstore.Store
	slots    *planstore.SlotIndex
	guard    *guard.Guard
	watchdog *guard.Watchdog
	turner   *heading.Controller
	interp   *interp.Interpreter
	recorder *recorder.Recorder

	// startMu makes starting a recording and starting an execution mutually
	// exclusive, so a recording can never begin after RunPlan stopped it.
	startMu sync.Mutex

	// mu guards the fields below. It is never held across a wait.
	mu             sync.Mutex
	mode           plan.Mode
	assist         bool
	prevButtons    robot.ButtonSet
	autonRequested bool
	recTarget      string
	lastRun        *RunResult
}

// New creates an Engine. Plans start at the compiled-in defaults until
// OnInit restores the active slot.
func New(deps Deps, opts Options) *Engine {
	log := deps.Logger
	if log == nil {
		log = logging.Discard()
	}
	hasher := deps.Hasher
	if hasher == nil {
		hasher = hash.NewSHA256Hasher()
	}

	e := &Engine{
		motors:   deps.Motors,
		sensor:   deps.Heading,
		position: deps.Position,
		clock:    deps.Clock,
		hasher:   hasher,
		history:  deps.History,
		log:      log,
		opts:     opts,
		mode:     opts.DefaultMode,
		assist:   opts.Manual.HeadingAssist,
	}

	e.plans = plan.NewSet(plan.DefaultPrimary(opts.PlanCapacity), plan.DefaultSecondary(opts.PlanCapacity))
	e.store = planstore.New(deps.FS, opts.PlanCapacity, log.With("component", "planstore"))
	e.slots = planstore.NewSlotIndex(deps.FS, log.With("component", "slots"))
	e.guard = guard.New(deps.Clock)
	e.watchdog = guard.NewWatchdog(e.guard, opts.WatchdogTick, func() { robot.StopAll(e.motors) },
		log.With("component", "watchdog"))
	e.turner = heading.New(deps.Motors, deps.Heading, deps.Clock, opts.Heading)
	e.interp = interp.New(deps.Motors, e.turner, deps.Clock, opts.Interp, log.With("component", "interp"))

	recCfg := opts.Recorder
	if recCfg.Actions == nil {
		recCfg.Actions = ButtonAction
	}
	e.recorder = recorder.New(deps.FS, deps.Clock, recCfg, log.With("component", "recorder"))
	return e
}

// OnInit restores the persisted slot selection and loads that slot's plans,
// falling back to the compiled-in defaults. All motors are braked.
func (e *Engine) OnInit() {
	robot.StopAll(e.motors)
	slot := e.slots.Load()
	e.loadSlot(slot)
	e.log.Info("engine initialized", "slot", slot+1, "mode", e.Mode().String())
}

// Start runs the watchdog until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	return e.watchdog.Run(ctx)
}

// loadSlot replaces the in-memory plans with the contents of slot.
func (e *Engine) loadSlot(slot int) bool {
	primary, secondary, found := e.store.Load(slot)
	if !found {
		primary = plan.DefaultPrimary(e.opts.PlanCapacity)
		secondary = plan.DefaultSecondary(e.opts.PlanCapacity)
		e.log.Info("no saved plans, using defaults", "slot", slot+1)
	}
	e.plans.Replace(primary, secondary)
	return found
}

// Guard exposes the execution guard for the dispatcher's watchdog wiring
// and tests.
func (e *Engine) Guard() *guard.Guard {
	return e.guard
}

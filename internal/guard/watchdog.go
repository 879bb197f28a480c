package guard

import (
	"context"
	"log/slog"
	"time"
)

// DefaultTick is the watchdog polling period.
const DefaultTick = 20 * time.Millisecond

// Watchdog force-terminates executions that run past their deadline.
type Watchdog struct {
	guard *Guard
	tick  time.Duration
	stop  func()
	log   *slog.Logger
}

// NewWatchdog creates a watchdog over g. stop is called once per expired
// execution and must command every actuator to brake.
func NewWatchdog(g *Guard, tick time.Duration, stop func(), log *slog.Logger) *Watchdog {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Watchdog{guard: g, tick: tick, stop: stop, log: log}
}

// Check performs one watchdog poll. It reports whether it expired an execution.
func (w *Watchdog) Check() bool {
	if !w.guard.expire() {
		return false
	}
	w.log.Warn("execution deadline exceeded, forcing stop",
		"deadline", w.guard.Deadline().Format(time.RFC3339Nano),
	)
	w.stop()
	return true
}

// Run polls every tick until ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Check()
		}
	}
}

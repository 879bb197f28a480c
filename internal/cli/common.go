package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/danieljhkim/autonkit/internal/clock"
	"github.com/danieljhkim/autonkit/internal/config"
	"github.com/danieljhkim/autonkit/internal/engine"
	"github.com/danieljhkim/autonkit/internal/fsops"
	"github.com/danieljhkim/autonkit/internal/hash"
	"github.com/danieljhkim/autonkit/internal/logging"
	"github.com/danieljhkim/autonkit/internal/plan"
	"github.com/danieljhkim/autonkit/internal/planstore"
	"github.com/danieljhkim/autonkit/internal/runlog"
	"github.com/danieljhkim/autonkit/internal/sim"
)

// session holds what every command needs: the filesystem layout, the
// tuning file, a logger and the run history.
type session struct {
	paths   *config.Paths
	cfg     *config.Config
	log     *slog.Logger
	card    *fsops.RealFS
	history *runlog.Store
	logFile io.Closer
}

// openSession loads paths and config and opens the run history.
func openSession() (*session, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	s := &session{
		paths: paths,
		cfg:   cfg,
		card:  fsops.NewRealFS(paths.SD),
	}

	logOpts := logging.Options{Level: cfg.LogLevel, Journal: cfg.Journal}
	if cfg.LogFile {
		f, err := os.OpenFile(paths.LogFile("autonkit"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logOpts.File = f
		s.logFile = f
	}
	s.log = logging.New(stderr, logOpts)

	history, err := runlog.Open(paths.RunsDB)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.history = history
	return s, nil
}

// Close releases the history database and log file.
func (s *session) Close() error {
	var errs []error
	if s.history != nil {
		errs = append(errs, s.history.Close())
	}
	if s.logFile != nil {
		errs = append(errs, s.logFile.Close())
	}
	return errors.Join(errs...)
}

// newEngine creates an engine wired to a simulated robot and the storage
// card, and runs its init hook.
func (s *session) newEngine(clk clock.Clock) (*engine.Engine, *sim.Robot) {
	bot := sim.New(clk, sim.Config{
		MaxSpeed:     s.cfg.Sim.MaxSpeed,
		TrackWidth:   s.cfg.Sim.TrackWidth,
		StartHeading: s.cfg.Sim.StartHeading,
	})
	eng := engine.New(engine.Deps{
		Motors:   bot,
		Heading:  bot,
		Position: bot,
		Clock:    clk,
		FS:       s.card,
		Hasher:   hash.NewSHA256Hasher(),
		History:  s.history,
		Logger:   s.log,
	}, engine.OptionsFromConfig(s.cfg))
	eng.OnInit()
	return eng, bot
}

// store returns a plan store over the storage card.
func (s *session) store() *planstore.Store {
	return planstore.New(s.card, s.cfg.PlanCapacity, s.log)
}

// loadSlot reads a slot's plans, substituting the compiled-in plans when
// the slot has never been saved.
func (s *session) loadSlot(slot int) (primary, secondary plan.Plan, found bool) {
	primary, secondary, found = s.store().Load(slot)
	if !found {
		primary = plan.DefaultPrimary(s.cfg.PlanCapacity)
		secondary = plan.DefaultSecondary(s.cfg.PlanCapacity)
	}
	return primary, secondary, found
}

// parseSlot parses a 1-based slot argument into a zero-based slot.
func parseSlot(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: %q (want 1-%d)", engine.ErrInvalidSlot, arg, planstore.SlotCount)
	}
	return checkSlot(n)
}

// checkSlot converts a 1-based slot number into a zero-based slot.
func checkSlot(n int) (int, error) {
	if !planstore.ValidSlot(n - 1) {
		return 0, fmt.Errorf("%w: %d (want 1-%d)", engine.ErrInvalidSlot, n, planstore.SlotCount)
	}
	return n - 1, nil
}

// parseIndex parses a 1-based step number into a zero-based index.
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid step number %q", arg)
	}
	return n - 1, nil
}

// prepareEngine selects slot (1-based, 0 keeps the active slot) and mode.
func prepareEngine(eng *engine.Engine, slot int, mode string) (plan.Mode, error) {
	if slot != 0 {
		if err := eng.SelectSlot(slot - 1); err != nil {
			return plan.Primary, fmt.Errorf("failed to select slot %d: %w", slot, err)
		}
	}
	m := eng.Mode()
	if mode != "" {
		var err error
		m, err = plan.ParseMode(mode)
		if err != nil {
			return plan.Primary, err
		}
		eng.SetMode(m)
	}
	return m, nil
}

// formatJSON formats a value as JSON.
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package integration

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danieljhkim/autonkit/internal/clock"
	"github.com/danieljhkim/autonkit/internal/engine"
	"github.com/danieljhkim/autonkit/internal/hash"
	"github.com/danieljhkim/autonkit/internal/logging"
	"github.com/danieljhkim/autonkit/internal/robot"
	"github.com/danieljhkim/autonkit/internal/runlog"
	"github.com/danieljhkim/autonkit/internal/sim"
)

var epoch = time.Date(2024, 3, 2, 14, 0, 0, 0, time.UTC)

// cardFS is an in-memory storage card. It survives across engines the way
// the SD card survives a robot power cycle.
type cardFS struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newCardFS() *cardFS {
	return &cardFS{files: make(map[string][]byte)}
}

func (fs *cardFS) ReadFile(name string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if content, ok := fs.files[name]; ok {
		return append([]byte(nil), content...), nil
	}
	return nil, os.ErrNotExist
}

func (fs *cardFS) AtomicWrite(name string, data []byte, perm os.FileMode) error {
	if err := fs.ValidateName(name); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[name] = append([]byte(nil), data...)
	return nil
}

func (fs *cardFS) OpenAppend(name string) (io.WriteCloser, error) {
	if err := fs.ValidateName(name); err != nil {
		return nil, err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.files[name]; !ok {
		fs.files[name] = nil
	}
	return &appendHandle{fs: fs, name: name}, nil
}

func (fs *cardFS) Exists(name string) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, ok := fs.files[name]
	return ok, nil
}

func (fs *cardFS) Remove(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.files, name)
	return nil
}

func (fs *cardFS) ValidateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return os.ErrInvalid
	}
	return nil
}

// names returns the files whose names start with prefix.
func (fs *cardFS) names(prefix string) []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var out []string
	for name := range fs.files {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

type appendHandle struct {
	fs   *cardFS
	name string
}

func (h *appendHandle) Write(p []byte) (int, error) {
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()
	h.fs.files[h.name] = append(h.fs.files[h.name], p...)
	return len(p), nil
}

func (h *appendHandle) Close() error { return nil }

// robotRig is one power cycle of the robot: a fresh engine and chassis over
// a card and history that outlive it.
type robotRig struct {
	engine *engine.Engine
	bot    *sim.Robot
	clk    *clock.FakeClock
}

// openHistory opens a SQLite run history in a temp directory.
func openHistory(t *testing.T) *runlog.Store {
	t.Helper()
	store, err := runlog.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("runlog.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// bootRobot creates an engine over card and history and runs its init hook.
func bootRobot(t *testing.T, card *cardFS, history *runlog.Store) *robotRig {
	t.Helper()
	clk := clock.NewFakeClock(epoch)
	bot := sim.New(clk, sim.DefaultConfig())
	eng := engine.New(engine.Deps{
		Motors:   bot,
		Heading:  bot,
		Position: bot,
		Clock:    clk,
		FS:       card,
		Hasher:   hash.NewSHA256Hasher(),
		History:  history,
		Logger:   logging.Discard(),
	}, engine.DefaultOptions())
	eng.OnInit()
	return &robotRig{engine: eng, bot: bot, clk: clk}
}

// drive feeds frame for n control ticks of 20ms.
func (r *robotRig) drive(f robot.InputFrame, n int) {
	for i := 0; i < n; i++ {
		r.engine.OnManualTick(f)
		r.clk.Advance(20 * time.Millisecond)
	}
}

func sticks(left, right int) robot.InputFrame {
	var f robot.InputFrame
	f.Axes[2] = left
	f.Axes[1] = right
	return f
}

func press(bs ...robot.Button) robot.InputFrame {
	return robot.InputFrame{Buttons: robot.Buttons(bs...)}
}

// cardText returns a file from the card as a string.
func cardText(t *testing.T, card *cardFS, name string) string {
	t.Helper()
	data, err := card.ReadFile(name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(bytes.TrimSpace(data))
}

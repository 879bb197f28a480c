package planstore

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/danieljhkim/autonkit/internal/fsops"
)

// SlotIndexFile holds the active slot as a single 1-based integer.
const SlotIndexFile = "auton_slot.txt"

// SlotIndex tracks the active zero-based slot and persists the selection.
type SlotIndex struct {
	fs  fsops.FS
	log *slog.Logger

	mu     sync.Mutex
	active int
}

// NewSlotIndex creates a SlotIndex starting at slot 0.
func NewSlotIndex(fs fsops.FS, log *slog.Logger) *SlotIndex {
	return &SlotIndex{fs: fs, log: log}
}

// Load reads the persisted selection. A missing, unreadable or out-of-range
// value selects slot 0.
func (x *SlotIndex) Load() int {
	slot := x.read()

	x.mu.Lock()
	x.active = slot
	x.mu.Unlock()
	return slot
}

func (x *SlotIndex) read() int {
	data, err := x.fs.ReadFile(SlotIndexFile)
	if err != nil {
		x.log.Debug("slot index unavailable", "error", err)
		return 0
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || !ValidSlot(n-1) {
		x.log.Warn("slot index corrupt, using slot 1", "value", fields[0])
		return 0
	}
	return n - 1
}

// Active returns the selected zero-based slot.
func (x *SlotIndex) Active() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.active
}

// Select makes slot active and persists it. It returns false for an
// out-of-range slot, or when the selection could not be written; the
// in-memory selection still changes in the latter case.
func (x *SlotIndex) Select(slot int) bool {
	if !ValidSlot(slot) {
		return false
	}

	x.mu.Lock()
	x.active = slot
	x.mu.Unlock()

	if err := x.fs.AtomicWrite(SlotIndexFile, []byte(fmt.Sprintf("%d\n", slot+1)), 0644); err != nil {
		x.log.Warn("failed to persist slot index", "slot", slot+1, "error", err)
		return false
	}
	return true
}

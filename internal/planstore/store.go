// Package planstore persists plan pairs into numbered slot files and tracks
// which slot is active.
//
// Loading never fails outright: a missing or unreadable slot file falls back
// to the legacy single-file location, and when that is absent too the caller
// is told nothing was found so it can substitute the compiled-in plans.
package planstore

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/danieljhkim/autonkit/internal/fsops"
	"github.com/danieljhkim/autonkit/internal/plan"
)

const (
	// SlotCount is the number of plan slots on the card.
	SlotCount = 3

	// LegacyFile is the single plan file written before slots existed.
	LegacyFile = "auton_plans.txt"
)

// SlotFile returns the file name for a zero-based slot. Out-of-range slots
// map to the first slot's file.
func SlotFile(slot int) string {
	if !ValidSlot(slot) {
		slot = 0
	}
	return fmt.Sprintf("auton_plans_slot%d.txt", slot+1)
}

// ValidSlot reports whether slot is a zero-based slot number.
func ValidSlot(slot int) bool {
	return slot >= 0 && slot < SlotCount
}

// Store reads and writes plan files.
type Store struct {
	fs       fsops.FS
	capacity int
	log      *slog.Logger
}

// New creates a Store. Loaded plans get the given capacity (0 = unbounded).
func New(fs fsops.FS, capacity int, log *slog.Logger) *Store {
	return &Store{fs: fs, capacity: capacity, log: log}
}

// Load reads the plans for slot, falling back to the legacy file. found is
// false when neither file could be read.
func (s *Store) Load(slot int) (primary, secondary plan.Plan, found bool) {
	for _, name := range []string{SlotFile(slot), LegacyFile} {
		primary, secondary, ok := s.LoadFile(name)
		if ok {
			s.log.Info("plans loaded",
				"file", name,
				"primary_steps", primary.Len(),
				"secondary_steps", secondary.Len(),
			)
			return primary, secondary, true
		}
	}
	s.log.Warn("no plan file found", "slot", slot+1)
	return plan.Plan{Capacity: s.capacity}, plan.Plan{Capacity: s.capacity}, false
}

// LoadFile reads a single plan file. It reports false when the file is
// missing or unreadable.
func (s *Store) LoadFile(name string) (primary, secondary plan.Plan, ok bool) {
	data, err := s.fs.ReadFile(name)
	if err != nil {
		s.log.Debug("plan file unavailable", "file", name, "error", err)
		return plan.Plan{}, plan.Plan{}, false
	}

	primary, secondary, err = plan.Decode(bytes.NewReader(data), s.capacity)
	if err != nil {
		s.log.Warn("plan file unreadable", "file", name, "error", err)
		return plan.Plan{}, plan.Plan{}, false
	}
	return primary, secondary, true
}

// Save writes both plans into the slot file. Both sections are always
// written, even when a plan is empty.
func (s *Store) Save(slot int, primary, secondary plan.Plan) bool {
	if !ValidSlot(slot) {
		s.log.Warn("refusing to save to invalid slot", "slot", slot+1)
		return false
	}

	name := SlotFile(slot)
	if err := s.fs.AtomicWrite(name, plan.Marshal(primary, secondary), 0644); err != nil {
		s.log.Warn("failed to save plans", "file", name, "error", err)
		return false
	}

	s.log.Info("plans saved",
		"file", name,
		"primary_steps", primary.Len(),
		"secondary_steps", secondary.Len(),
	)
	return true
}

// Raw returns the stored bytes of a slot file.
func (s *Store) Raw(slot int) ([]byte, error) {
	if !ValidSlot(slot) {
		return nil, fmt.Errorf("slot %d out of range 1-%d", slot+1, SlotCount)
	}
	return s.fs.ReadFile(SlotFile(slot))
}

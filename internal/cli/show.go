package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/autonkit/internal/hash"
	"github.com/danieljhkim/autonkit/internal/plan"
	"github.com/danieljhkim/autonkit/internal/planstore"
)

var (
	showSlot int
	showMode string
)

// showResult is the JSON form of show.
type showResult struct {
	Slot      int        `json:"slot"`
	File      string     `json:"file"`
	Saved     bool       `json:"saved"`
	Primary   *planEntry `json:"primary,omitempty"`
	Secondary *planEntry `json:"secondary,omitempty"`
}

type planEntry struct {
	Hash  string      `json:"hash"`
	Steps []plan.Step `json:"steps"`
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the plans stored in a slot",
	Long: `Display the primary and secondary plans of a slot.

Without --slot the active slot is shown. A slot that was never saved shows
the compiled-in plans the robot falls back to.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		slot := planstore.NewSlotIndex(s.card, s.log).Load()
		if showSlot != 0 {
			if slot, err = checkSlot(showSlot); err != nil {
				return err
			}
		}

		modes := plan.Modes
		if showMode != "" {
			m, err := plan.ParseMode(showMode)
			if err != nil {
				return err
			}
			modes = []plan.Mode{m}
		}

		primary, secondary, found := s.loadSlot(slot)
		hasher := hash.NewSHA256Hasher()

		result := showResult{Slot: slot + 1, File: planstore.SlotFile(slot), Saved: found}
		for _, m := range modes {
			p := primary
			if m == plan.Secondary {
				p = secondary
			}
			entry := &planEntry{Hash: hasher.HashPlan(p), Steps: p.Steps}
			if entry.Steps == nil {
				entry.Steps = []plan.Step{}
			}
			if m == plan.Secondary {
				result.Secondary = entry
			} else {
				result.Primary = entry
			}
		}

		if jsonOutput {
			return outputJSON(result)
		}

		PrintLabelValue("Slot", fmt.Sprintf("%d (%s)", result.Slot, result.File))
		if !found {
			PrintLabelValueWithColor("Source", "compiled-in defaults (slot not saved)", warningColor)
		}
		for _, m := range modes {
			entry := result.Primary
			p := primary
			if m == plan.Secondary {
				entry = result.Secondary
				p = secondary
			}
			PrintPlan(fmt.Sprintf("%s plan %s", m, hash.Short(entry.Hash)), p)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().IntVarP(&showSlot, "slot", "s", 0, "Slot to show, 1-3 (default: active slot)")
	showCmd.Flags().StringVarP(&showMode, "mode", "m", "", "Show only this plan: primary or secondary")
}

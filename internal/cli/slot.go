package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/autonkit/internal/clock"
	"github.com/danieljhkim/autonkit/internal/planstore"
)

type slotInfo struct {
	Slot   int    `json:"slot"`
	File   string `json:"file"`
	Saved  bool   `json:"saved"`
	Active bool   `json:"active"`
}

var slotCmd = &cobra.Command{
	Use:   "slot [n]",
	Short: "Show or select the active slot",
	Long: `Without an argument, list the slots and mark the active one.

With a slot number, make that slot active. The selection is persisted on the
storage card and its plans are what the robot loads on its next init.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if len(args) == 1 {
			slot, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			eng, _ := s.newEngine(&clock.RealClock{})
			if err := eng.SelectSlot(slot); err != nil {
				return err
			}
			if !jsonOutput {
				PrintSuccess(fmt.Sprintf("Slot %d selected", slot+1))
			}
		}

		active := planstore.NewSlotIndex(s.card, s.log).Load()
		infos := make([]slotInfo, 0, planstore.SlotCount)
		for slot := 0; slot < planstore.SlotCount; slot++ {
			saved, err := s.card.Exists(planstore.SlotFile(slot))
			if err != nil {
				return fmt.Errorf("failed to check slot %d: %w", slot+1, err)
			}
			infos = append(infos, slotInfo{
				Slot:   slot + 1,
				File:   planstore.SlotFile(slot),
				Saved:  saved,
				Active: slot == active,
			})
		}

		if jsonOutput {
			return outputJSON(infos)
		}

		rows := make([][]string, 0, len(infos))
		for _, info := range infos {
			mark := ""
			if info.Active {
				mark = "*"
			}
			state := "defaults"
			if info.Saved {
				state = "saved"
			}
			rows = append(rows, []string{mark, fmt.Sprint(info.Slot), info.File, state})
		}
		PrintTable([]string{"", "SLOT", "FILE", "PLANS"}, rows)
		return nil
	},
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/autonkit/internal/config"
	"github.com/danieljhkim/autonkit/internal/engine"
	"github.com/danieljhkim/autonkit/internal/plan"
	"github.com/danieljhkim/autonkit/internal/planstore"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file and seed empty slots",
	Long: `Create the autonkit root directory, write a default config.yaml and seed
every slot that has no plan file with the compiled-in plans.

Existing slot files are never overwritten. Use --force to rewrite
config.yaml with the defaults.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false,
		"Overwrite an existing config.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	paths, err := config.DefaultPaths()
	if err != nil {
		return fmt.Errorf("failed to get config paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	err = config.WriteDefault(paths.Config, initForce)
	switch {
	case errors.Is(err, config.ErrConfigExists):
		PrintInfo(fmt.Sprintf("Config already exists at %s (use --force to overwrite)", paths.Config))
	case err != nil:
		return err
	default:
		PrintSuccess(fmt.Sprintf("Wrote %s", paths.Config))
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	store := s.store()
	seeded := 0
	for slot := 0; slot < planstore.SlotCount; slot++ {
		exists, err := s.card.Exists(planstore.SlotFile(slot))
		if err != nil {
			return fmt.Errorf("failed to check slot %d: %w", slot+1, err)
		}
		if exists {
			continue
		}
		primary := plan.DefaultPrimary(s.cfg.PlanCapacity)
		secondary := plan.DefaultSecondary(s.cfg.PlanCapacity)
		if !store.Save(slot, primary, secondary) {
			return fmt.Errorf("%w: slot %d", engine.ErrSaveFailed, slot+1)
		}
		seeded++
	}

	if seeded > 0 {
		PrintSuccess(fmt.Sprintf("Seeded %s with the default plans in %s", PrintCount(seeded, "slot", "slots"), paths.SD))
	} else {
		PrintInfo("All slots already have plan files")
	}
	fmt.Fprintln(stdout)
	PrintInfo("Next steps:")
	fmt.Fprintln(stdout, "  1. Inspect a plan:     autonkit show")
	fmt.Fprintln(stdout, "  2. Edit a step:        autonkit edit set 1 DRIVE_FOR_DURATION,60,1200")
	fmt.Fprintln(stdout, "  3. Run it simulated:   autonkit run")
	return nil
}

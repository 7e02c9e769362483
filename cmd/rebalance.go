package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/sirene/config"
	"github.com/kilianp07/sirene/core/fleet"
	"github.com/kilianp07/sirene/core/rebalance"
	"github.com/kilianp07/sirene/infra/ai"
	"github.com/kilianp07/sirene/infra/logger"
	"github.com/kilianp07/sirene/internal/store"
)

var (
	rebalanceScenario string
	rebalanceOutput   string
)

var rebalanceCmd = &cobra.Command{
	Use:   "rebalance",
	Short: "Recompute station assignments and write the optimized roster",
	RunE:  runRebalance,
}

func init() {
	rebalanceCmd.Flags().StringVarP(&rebalanceScenario, "scenario", "s", "", "scenario id (default: highest expected call volume)")
	rebalanceCmd.Flags().StringVarP(&rebalanceOutput, "output", "o", "vehicles_optimized.csv", "output roster file")
	rootCmd.AddCommand(rebalanceCmd)
}

func runRebalance(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	units, err := store.LoadUnits(cfg.Data.Vehicles)
	if err != nil {
		return fmt.Errorf("load vehicles: %w", err)
	}
	stations, err := store.LoadStations(cfg.Data.Stations)
	if err != nil {
		return fmt.Errorf("load stations: %w", err)
	}
	scenarios, err := store.LoadScenarios(cfg.Data.Factors)
	if err != nil {
		return fmt.Errorf("load factors: %w", err)
	}

	sc, err := rebalance.SelectScenario(scenarios, rebalanceScenario)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "using scenario %s (region=%s, volume=%.2f)\n",
		sc.ID, sc.Region, sc.ExpectedCallVolume)

	reg, err := fleet.NewRegistry(units, stations)
	if err != nil {
		return err
	}

	log := logger.New("rebalance")
	var alloc rebalance.Allocator
	if cfg.Rebalance.Allocator == "ai" {
		alloc, err = ai.New(cfg.Rebalance.AI, log)
		if err != nil {
			return fmt.Errorf("ai allocator: %w", err)
		}
	} else {
		alloc = rebalance.NewWeightedAllocator(log)
	}

	rb, err := rebalance.New(reg, alloc, nil, nil, log)
	if err != nil {
		return err
	}
	res, err := rb.Rebalance(cmd.Context(), sc)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "moved %d units (mean shift %.2f km)\n", len(res.Placements), res.MeanShiftKm)

	snapshot, _ := reg.Snapshot()
	if err := store.SaveUnits(rebalanceOutput, snapshot); err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote optimized roster to %s\n", rebalanceOutput)
	return nil
}

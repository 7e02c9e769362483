package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/sirene/config"
	"github.com/kilianp07/sirene/core/fleet"
	"github.com/kilianp07/sirene/internal/store"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the unit roster",
	RunE:  runFleetLs,
}

func init() {
	fleetCmd.AddCommand(fleetLsCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
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
	reg, err := fleet.NewRegistry(units, stations)
	if err != nil {
		return err
	}
	snapshot, _ := reg.Snapshot()
	for _, u := range snapshot {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t(%.4f, %.4f)\t%s\n",
			u.ID, u.Type, u.Status, u.Position.Lat, u.Position.Lon, u.StationID)
	}
	return nil
}

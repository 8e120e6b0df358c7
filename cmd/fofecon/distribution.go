package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/output"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/progress"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/service/report"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
)

var distributionCmd = &cobra.Command{
	Use:   "distribution",
	Short: "Share of players by last position per event",
	Long: `Shows, for every event instance, the percentage of players whose last
reached position was each position. Events with too few players are dropped.

Examples:
  fofecon distribution --event dice
  fofecon distribution --event missionbar --min-players 5000
  fofecon distribution --event puzzle --list-configs
  fofecon distribution --event puzzle --max-level 12 --puzzle-config "Ocean Treasures"`,
	RunE: runDistribution,
}

func init() {
	distributionCmd.Flags().String("event", "missionbar", "Event family: missionbar, dice or puzzle")
	distributionCmd.Flags().Int64("min-players", 1000, "Drop events with this many players or fewer (default from config)")
	distributionCmd.Flags().Bool("list-configs", false, "Puzzle only: list configs by max level reached and exit")
	addWindowFlags(distributionCmd)
	addPuzzleFlags(distributionCmd)

	rootCmd.AddCommand(distributionCmd)
}

func runDistribution(cmd *cobra.Command, args []string) error {
	kind, err := getEvent(cmd)
	if err != nil {
		return err
	}
	window, err := getWindow(cmd)
	if err != nil {
		return err
	}
	maxLevel, configs, err := getPuzzleFilters(cmd, kind)
	if err != nil {
		return err
	}
	listConfigs, _ := cmd.Flags().GetBool("list-configs")
	if listConfigs && kind != models.EventPuzzle {
		return fmt.Errorf("--list-configs only applies to --event puzzle")
	}

	opts := report.DistributionOptions{
		Kind:     kind,
		Window:   window,
		MaxLevel: maxLevel,
		Configs:  configs,
	}
	if cmd.Flags().Changed("min-players") {
		n, _ := cmd.Flags().GetInt64("min-players")
		if n < 0 {
			return fmt.Errorf("--min-players must not be negative (got %d)", n)
		}
		opts.MinPlayers = &n
	}

	svc, cfg, cleanup, err := openService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	spinner := progress.NewSpinner(fmt.Sprintf("Loading %s progression...", kind))
	if listConfigs {
		catalog, err := svc.PuzzleCatalog(cmd.Context())
		if err != nil {
			spinner.FinishError(err)
			return fmt.Errorf("listing puzzle configs failed: %w", err)
		}
		spinner.FinishSuccess()
		return formatter.Output(output.CatalogReport(catalog))
	}

	dist, err := svc.Distribution(cmd.Context(), opts)
	if err != nil {
		spinner.FinishError(err)
		return fmt.Errorf("distribution report failed: %w", err)
	}
	spinner.FinishSuccess()

	return formatter.Output(output.DistributionTable(*dist))
}

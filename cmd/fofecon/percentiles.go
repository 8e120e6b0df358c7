package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/output"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/progress"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/service/report"
)

var percentilesCmd = &cobra.Command{
	Use:   "percentiles",
	Short: "Weighted last-position percentiles per event",
	Long: `Selects, for every event instance, the last position reached by the given
percentiles of players. Each position is weighted by its unique players.

Examples:
  fofecon percentiles --event missionbar
  fofecon percentiles --event dice --percentiles p50,p90 --start 2025-01-01
  fofecon percentiles --event puzzle --max-level 12 -f markdown`,
	RunE: runPercentiles,
}

func init() {
	percentilesCmd.Flags().String("event", "missionbar", "Event family: missionbar, dice or puzzle")
	percentilesCmd.Flags().StringSlice("percentiles", nil, `Percentiles such as p90, "90th percentile" or 0.9; "all" for the defaults`)
	percentilesCmd.Flags().Int("workers", 0, "Goroutines for per-event selection (default from config)")
	addWindowFlags(percentilesCmd)
	addPuzzleFlags(percentilesCmd)

	rootCmd.AddCommand(percentilesCmd)
}

func runPercentiles(cmd *cobra.Command, args []string) error {
	kind, err := getEvent(cmd)
	if err != nil {
		return err
	}
	thresholds, err := getThresholds(cmd)
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

	svc, cfg, cleanup, err := openService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	spinner := progress.NewSpinner(fmt.Sprintf("Loading %s progression...", kind))
	series, err := svc.Percentiles(cmd.Context(), report.PercentileOptions{
		Kind:       kind,
		Thresholds: thresholds,
		Window:     window,
		MaxLevel:   maxLevel,
		Configs:    configs,
	})
	if err != nil {
		spinner.FinishError(err)
		return fmt.Errorf("percentile report failed: %w", err)
	}
	spinner.FinishSuccess()

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.PercentileTable(*series))
}

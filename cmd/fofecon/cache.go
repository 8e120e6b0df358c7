package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/output"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/progress"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/service/report"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Extract cache commands",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show extract cache statistics",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached extract",
	RunE:  runCacheClear,
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Load every dataset into the cache",
	Long: `Pulls the MissionBar, Dice and Puzzle progression extracts, player balance
and the monetization plan once, so later reports are served from the cache.`,
	RunE: runCacheWarm,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheWarmCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := openCache(cfg)
	if err != nil {
		return err
	}
	stats, err := c.GetStats()
	if err != nil {
		return fmt.Errorf("reading cache: %w", err)
	}

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	rows := [][]string{
		{"Directory", cfg.Cache.Dir},
		{"Enabled", strconv.FormatBool(c.Enabled())},
		{"Entries", strconv.Itoa(stats.Entries)},
		{"Size", fmt.Sprintf("%d bytes", stats.TotalSize)},
		{"Oldest", stats.OldestAge.Round(time.Second).String()},
		{"Newest", stats.NewestAge.Round(time.Second).String()},
	}
	return formatter.Output(output.NewTable("Extract cache", []string{"Setting", "Value"}, rows, nil, stats))
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	// Clearing works even when caching is switched off for reports.
	cfg.Cache.Enabled = true
	c, err := openCache(cfg)
	if err != nil {
		return err
	}
	if err := c.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()
	formatter.Success("Cleared %s", cfg.Cache.Dir)
	return nil
}

func runCacheWarm(cmd *cobra.Command, args []string) error {
	if noCache {
		return fmt.Errorf("cache warm cannot run with --no-cache")
	}

	svc, cfg, cleanup, err := openService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	if !cfg.Cache.Enabled {
		return fmt.Errorf("cache is disabled in config (cache.enabled = false)")
	}

	formatter, err := newFormatter(cmd, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	datasets := report.Datasets()
	tracker := progress.NewTracker("Loading extracts", len(datasets))
	var failures []string
	err = svc.Warm(cmd.Context(), func(dataset string, loadErr error) {
		if loadErr != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", dataset, loadErr))
		}
		tracker.Describe("Loaded " + dataset)
		tracker.Tick()
	})
	if err != nil {
		tracker.FinishError(err)
		if len(failures) == 0 {
			return err
		}
		for _, f := range failures {
			formatter.Warning("%s", f)
		}
		return fmt.Errorf("%d of %d datasets failed", len(failures), len(datasets))
	}
	tracker.FinishSuccess()

	formatter.Success("Cached %d datasets in %s", len(datasets), cfg.Cache.Dir)
	return nil
}

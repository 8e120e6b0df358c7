package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/cache"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/output"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/service/report"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/config"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/percentile"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/source"
)

// loadConfig reads the config file (explicit or discovered) and applies the
// global flag overrides.
func loadConfig() (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if cfgFile != "" {
		path = cfgFile
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, path, err = config.LoadOrDefault()
	}
	if err != nil {
		return nil, "", err
	}

	if sourceKind != "" {
		cfg.Source.Kind = sourceKind
	}
	if dataDir != "" {
		cfg.Source.DataDir = dataDir
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	return cfg, path, cfg.Validate()
}

// warehouseConfig converts the warehouse section for the source package.
func warehouseConfig(cfg *config.Config) source.WarehouseConfig {
	w := cfg.Warehouse
	return source.WarehouseConfig{
		DSN:             w.DSN,
		Schema:          w.Schema,
		EventsSchema:    w.EventsSchema,
		LookbackDays:    w.LookbackDays,
		MaxOpenConns:    w.MaxOpenConns,
		MaxIdleConns:    w.MaxIdleConns,
		ConnMaxLifetime: w.ConnMaxLifetimeDuration(),
		QueryTimeout:    w.QueryTimeoutDuration(),
	}
}

func openSource(ctx context.Context, cfg *config.Config) (source.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceWarehouse:
		return source.NewWarehouseSource(ctx, warehouseConfig(cfg))
	default:
		return source.NewFileSource(cfg.Source.DataDir, source.WithFileTimeout(cfg.Warehouse.QueryTimeoutDuration()))
	}
}

func openCache(cfg *config.Config) (*cache.Cache, error) {
	return cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
}

// openService wires config, source and cache into a report service. The
// returned cleanup closes the source.
func openService(cmd *cobra.Command) (*report.Service, *config.Config, func(), error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	src, err := openSource(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	c, err := openCache(cfg)
	if err != nil {
		src.Close()
		return nil, nil, nil, fmt.Errorf("opening cache: %w", err)
	}

	opts := []report.Option{
		report.WithConfig(cfg),
		report.WithSource(src),
		report.WithCache(c),
	}
	if cmd.Flags().Lookup("workers") != nil && cmd.Flags().Changed("workers") {
		workers, _ := cmd.Flags().GetInt("workers")
		opts = append(opts, report.WithWorkers(workers))
	}
	return report.New(opts...), cfg, func() { src.Close() }, nil
}

// newFormatter builds the output formatter from the effective config.
func newFormatter(cmd *cobra.Command, cfg *config.Config) (*output.Formatter, error) {
	return output.NewFormatter(output.ParseFormat(cfg.Output.Format), outputFile, cfg.Output.Color,
		output.WithWriter(cmd.OutOrStdout()),
		output.WithStatusWriter(cmd.ErrOrStderr()))
}

// addWindowFlags registers --start and --end.
func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "Last day to include (YYYY-MM-DD)")
}

func getWindow(cmd *cobra.Command) (models.DateRange, error) {
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	return models.ParseDateRange(start, end)
}

// getThresholds parses --percentiles. Nil means the configured defaults.
func getThresholds(cmd *cobra.Command) ([]float64, error) {
	selection, _ := cmd.Flags().GetStringSlice("percentiles")
	if len(selection) == 0 {
		return nil, nil
	}
	qs, err := percentile.ParseSelection(selection)
	if err != nil {
		return nil, fmt.Errorf("--percentiles: %w", err)
	}
	return qs, nil
}

func getEvent(cmd *cobra.Command) (models.EventKind, error) {
	event, _ := cmd.Flags().GetString("event")
	return models.ParseEventKind(event)
}

// addPuzzleFlags registers the puzzle config filters.
func addPuzzleFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-level", 0, "Puzzle only: keep configs whose max level reached equals N")
	cmd.Flags().StringSlice("puzzle-config", nil, "Puzzle only: keep the named configs")
}

func getPuzzleFilters(cmd *cobra.Command, kind models.EventKind) (int, []string, error) {
	maxLevel, _ := cmd.Flags().GetInt("max-level")
	configs, _ := cmd.Flags().GetStringSlice("puzzle-config")
	if kind != models.EventPuzzle && (maxLevel != 0 || len(configs) > 0) {
		return 0, nil, fmt.Errorf("--max-level and --puzzle-config only apply to --event puzzle")
	}
	if maxLevel < 0 {
		return 0, nil, fmt.Errorf("--max-level must not be negative (got %d)", maxLevel)
	}
	return maxLevel, configs, nil
}

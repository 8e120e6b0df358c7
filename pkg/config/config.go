// Package config loads fofecon settings from defaults, an optional config
// file and FOFECON_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. FOFECON_WAREHOUSE_DSN.
const EnvPrefix = "FOFECON_"

// Source kinds.
const (
	SourceFiles     = "files"
	SourceWarehouse = "warehouse"
)

// Config holds all configuration options for fofecon.
type Config struct {
	Source    SourceConfig    `koanf:"source"`
	Warehouse WarehouseConfig `koanf:"warehouse"`
	Analysis  AnalysisConfig  `koanf:"analysis"`
	Cache     CacheConfig     `koanf:"cache"`
	Output    OutputConfig    `koanf:"output"`
}

// SourceConfig selects where extracts come from.
type SourceConfig struct {
	Kind    string `koanf:"kind"` // files or warehouse
	DataDir string `koanf:"data_dir"`
}

// WarehouseConfig holds the postgres connection and query window.
type WarehouseConfig struct {
	DSN             string `koanf:"dsn"`
	Schema          string `koanf:"schema"`
	EventsSchema    string `koanf:"events_schema"`
	LookbackDays    int    `koanf:"lookback_days"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"` // seconds
	QueryTimeout    int    `koanf:"query_timeout"`     // seconds
}

// ConnMaxLifetimeDuration returns ConnMaxLifetime as a duration.
func (w WarehouseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(w.ConnMaxLifetime) * time.Second
}

// QueryTimeoutDuration returns QueryTimeout as a duration.
func (w WarehouseConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(w.QueryTimeout) * time.Second
}

// AnalysisConfig holds aggregation defaults.
type AnalysisConfig struct {
	Percentiles     []float64 `koanf:"percentiles"`
	MinEventPlayers int64     `koanf:"min_event_players"`
	Workers         int       `koanf:"workers"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	TTL     int    `koanf:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:    SourceFiles,
			DataDir: "data",
		},
		Warehouse: WarehouseConfig{
			Schema:          "dwh",
			EventsSchema:    "base",
			LookbackDays:    191,
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 1800,
			QueryTimeout:    600,
		},
		Analysis: AnalysisConfig{
			Percentiles:     []float64{0.5, 0.75, 0.9, 0.95, 0.99},
			MinEventPlayers: 1000,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".fofecon/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// configNames are searched in order in each of searchDirs.
var (
	configNames = []string{
		"fofecon.toml",
		"fofecon.yaml",
		"fofecon.yml",
		"fofecon.json",
		".fofecon.toml",
		".fofecon.yaml",
		".fofecon.yml",
		".fofecon.json",
	}
	searchDirs = []string{".", ".fofecon"}
)

// Find returns the first config file in the standard locations, or "".
func Find() string {
	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Load layers defaults, the file at path (if path is not empty) and the
// environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}
	if err := splitPercentiles(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads the first config file found in the standard
// locations. With no file it returns the defaults plus environment
// overrides. The returned path is empty when no file was used.
func LoadOrDefault() (*Config, string, error) {
	path := Find()
	cfg, err := Load(path)
	return cfg, path, err
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// envKey maps FOFECON_WAREHOUSE_LOOKBACK_DAYS to warehouse.lookback_days.
// Section names contain no underscores, so the first one separates the
// section from the key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return ""
	}
	return section + "." + rest
}

// splitPercentiles turns a comma-separated FOFECON_ANALYSIS_PERCENTILES
// value into a list.
func splitPercentiles(k *koanf.Koanf) error {
	s, ok := k.Get("analysis.percentiles").(string)
	if !ok {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if err := k.Set("analysis.percentiles", parts); err != nil {
		return fmt.Errorf("setting analysis.percentiles: %w", err)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Source.Kind {
	case SourceFiles:
		if c.Source.DataDir == "" {
			errs = append(errs, errors.New("source.data_dir must be set for the files source"))
		}
	case SourceWarehouse:
		if c.Warehouse.DSN == "" {
			errs = append(errs, fmt.Errorf("warehouse.dsn must be set for the warehouse source (or %sWAREHOUSE_DSN)", EnvPrefix))
		}
	default:
		errs = append(errs, fmt.Errorf("source.kind %q must be %s or %s", c.Source.Kind, SourceFiles, SourceWarehouse))
	}

	if c.Warehouse.LookbackDays <= 0 {
		errs = append(errs, fmt.Errorf("warehouse.lookback_days must be positive, got %d", c.Warehouse.LookbackDays))
	}
	if c.Warehouse.QueryTimeout < 0 {
		errs = append(errs, fmt.Errorf("warehouse.query_timeout must not be negative, got %d", c.Warehouse.QueryTimeout))
	}
	for _, q := range c.Analysis.Percentiles {
		if !(q > 0 && q <= 1) {
			errs = append(errs, fmt.Errorf("analysis.percentiles: %v is outside (0, 1]", q))
		}
	}
	if c.Analysis.MinEventPlayers < 0 {
		errs = append(errs, fmt.Errorf("analysis.min_event_players must not be negative, got %d", c.Analysis.MinEventPlayers))
	}
	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("analysis.workers must not be negative, got %d", c.Analysis.Workers))
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive, got %d", c.Cache.TTL))
	}
	switch strings.ToLower(c.Output.Format) {
	case "", "text", "json", "markdown", "md", "toon":
	default:
		errs = append(errs, fmt.Errorf("output.format %q is not one of text, json, markdown, toon", c.Output.Format))
	}

	return errors.Join(errs...)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, SourceFiles, cfg.Source.Kind)
	assert.Equal(t, 191, cfg.Warehouse.LookbackDays)
	assert.Equal(t, []float64{0.5, 0.75, 0.9, 0.95, 0.99}, cfg.Analysis.Percentiles)
	assert.EqualValues(t, 1000, cfg.Analysis.MinEventPlayers)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, ".fofecon/cache", cfg.Cache.Dir)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, 10*time.Minute, cfg.Warehouse.QueryTimeoutDuration())
	assert.Equal(t, 30*time.Minute, cfg.Warehouse.ConnMaxLifetimeDuration())
	assert.NoError(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fofecon.toml", `
[source]
kind = "warehouse"

[warehouse]
dsn = "postgres://analyst@dwh/fof"
lookback_days = 30

[analysis]
percentiles = [0.25, 0.5]
workers = 4

[cache]
enabled = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceWarehouse, cfg.Source.Kind)
	assert.Equal(t, "postgres://analyst@dwh/fof", cfg.Warehouse.DSN)
	assert.Equal(t, 30, cfg.Warehouse.LookbackDays)
	assert.Equal(t, "dwh", cfg.Warehouse.Schema, "unset keys keep defaults")
	assert.Equal(t, []float64{0.25, 0.5}, cfg.Analysis.Percentiles)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.False(t, cfg.Cache.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fofecon.yaml", `
source:
  data_dir: /srv/extracts
analysis:
  min_event_players: 500
output:
  format: markdown
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/extracts", cfg.Source.DataDir)
	assert.EqualValues(t, 500, cfg.Analysis.MinEventPlayers)
	assert.Equal(t, "markdown", cfg.Output.Format)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fofecon.json", `{"cache": {"ttl": 6}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Cache.TTL)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := writeFile(t, t.TempDir(), "bad.toml", "[source\nkind = ")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("FOFECON_WAREHOUSE_DSN", "postgres://secret@dwh/fof")
	t.Setenv("FOFECON_WAREHOUSE_LOOKBACK_DAYS", "90")
	t.Setenv("FOFECON_ANALYSIS_PERCENTILES", "0.5, 0.9")
	t.Setenv("FOFECON_SOURCE_KIND", "warehouse")

	path := writeFile(t, t.TempDir(), "fofecon.toml", "[warehouse]\ndsn = \"from-file\"\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://secret@dwh/fof", cfg.Warehouse.DSN)
	assert.Equal(t, 90, cfg.Warehouse.LookbackDays)
	assert.Equal(t, []float64{0.5, 0.9}, cfg.Analysis.Percentiles)
	assert.Equal(t, SourceWarehouse, cfg.Source.Kind)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "warehouse.lookback_days", envKey("FOFECON_WAREHOUSE_LOOKBACK_DAYS"))
	assert.Equal(t, "cache.dir", envKey("FOFECON_CACHE_DIR"))
	assert.Equal(t, "", envKey("FOFECON_VERBOSE"))
}

func TestLoadOrDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, path, err := LoadOrDefault()
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, DefaultConfig().Cache.Dir, cfg.Cache.Dir)

	require.NoError(t, os.Mkdir(".fofecon", 0o750))
	writeFile(t, ".fofecon", "fofecon.yml", "cache:\n  ttl: 2\n")

	cfg, path, err = LoadOrDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(".fofecon", "fofecon.yml"), path)
	assert.Equal(t, 2, cfg.Cache.TTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown source", func(c *Config) { c.Source.Kind = "s3" }, "source.kind"},
		{"warehouse without dsn", func(c *Config) { c.Source.Kind = SourceWarehouse }, "warehouse.dsn"},
		{"files without dir", func(c *Config) { c.Source.DataDir = "" }, "source.data_dir"},
		{"zero lookback", func(c *Config) { c.Warehouse.LookbackDays = 0 }, "lookback_days"},
		{"percentile above one", func(c *Config) { c.Analysis.Percentiles = []float64{1.5} }, "outside (0, 1]"},
		{"zero percentile", func(c *Config) { c.Analysis.Percentiles = []float64{0} }, "outside (0, 1]"},
		{"negative workers", func(c *Config) { c.Analysis.Workers = -1 }, "workers"},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, "cache.ttl"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("disabled cache ignores ttl", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Cache.Enabled = false
		cfg.Cache.TTL = 0
		assert.NoError(t, cfg.Validate())
	})
}

func TestEncode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Warehouse.DSN = "postgres://secret@dwh/fof"

	out, err := cfg.Encode("toml")
	require.NoError(t, err)
	assert.Contains(t, string(out), "lookback_days = 191")
	assert.Contains(t, string(out), redacted)
	assert.NotContains(t, string(out), "secret")

	out, err = cfg.Encode("yaml")
	require.NoError(t, err)
	assert.Contains(t, string(out), "lookback_days: 191")
	assert.NotContains(t, string(out), "secret")

	_, err = cfg.Encode("ini")
	assert.Error(t, err)
}

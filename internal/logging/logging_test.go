package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForVerbosity(t *testing.T) {
	assert.Equal(t, "warn", ForVerbosity(false).Level)
	assert.Equal(t, "debug", ForVerbosity(true).Level)
}

func TestInitLevels(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf})

	log.Debug().Msg("hidden")
	log.Warn().Str("key", "k").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "k", line["key"])
}

func TestInitConsole(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var buf bytes.Buffer
	cfg := ForVerbosity(true)
	cfg.Output = &buf
	Init(cfg)

	log.Debug().Str("dataset", "dice_progression").Msg("query done")
	assert.Contains(t, buf.String(), "query done")
	assert.Contains(t, buf.String(), "dataset=dice_progression")
}

func TestInitUnknownLevelFallsBackToWarn(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	Init(Config{Level: "chatty", Output: &bytes.Buffer{}})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))

	f, err := os.Create(filepath.Join(t.TempDir(), "log.txt"))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	assert.False(t, isTerminal(f))
}

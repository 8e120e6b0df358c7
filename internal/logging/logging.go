// Package logging configures the global zerolog logger for the CLI.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn or error. Default: warn.
	Level string

	// Format is console or json. Default: console.
	Format string

	// Output defaults to os.Stderr so reports on stdout stay clean.
	Output io.Writer
}

// ForVerbosity returns the configuration selected by the --verbose flag.
func ForVerbosity(verbose bool) Config {
	cfg := Config{Level: "warn", Format: "console"}
	if verbose {
		cfg.Level = "debug"
	}
	return cfg
}

// Init points the global logger at cfg.Output with the configured level.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.EqualFold(cfg.Format, "json") {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(out),
	}).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

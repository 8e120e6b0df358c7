// Package source extracts economy rows from a warehouse or local extracts.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
)

var (
	// ErrNotFound is returned when an extract file does not exist.
	ErrNotFound = errors.New("extract not found")
	// ErrUnknownEvent is returned for unsupported event kinds.
	ErrUnknownEvent = errors.New("unknown event kind")
)

// Source provides economy rows from a specific backend.
type Source interface {
	// Progression returns unique players per (event start, last position).
	Progression(ctx context.Context, kind models.EventKind) ([]models.ProgressionRow, error)
	// Balance returns one row per player and promo day.
	Balance(ctx context.Context) ([]models.BalanceRow, error)
	// Plan returns the monetization plan.
	Plan(ctx context.Context) ([]models.PlanEntry, error)
	// Name identifies the backend for cache keys and log lines.
	Name() string
	Close() error
}

// Fingerprinter is implemented by sources that can hash the data behind a
// dataset, letting caches detect stale entries.
type Fingerprinter interface {
	Fingerprint(dataset string) (string, error)
}

// Dataset names used for fingerprints and cache keys.
const (
	DatasetBalance = "player_balance"
	DatasetPlan    = "monetization_plan"
)

// ProgressionDataset returns the dataset name for an event kind.
func ProgressionDataset(kind models.EventKind) (string, error) {
	schema, ok := progressionSchemas[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
	}
	return schema.dataset, nil
}

// progressionSchema maps an event kind onto the columns of its extract.
type progressionSchema struct {
	dataset     string
	eventCol    string
	positionCol string
	configCol   string
}

var progressionSchemas = map[models.EventKind]progressionSchema{
	models.EventMissionBar: {dataset: "mb_progression", eventCol: "mb_event_start", positionCol: "last_position"},
	models.EventDice:       {dataset: "dice_progression", eventCol: "dice_event_start", positionCol: "last_position"},
	models.EventPuzzle: {
		dataset:     "puzzle_progression",
		eventCol:    "puzzle_event_starts_at",
		positionCol: "levels_completed",
		configCol:   "puzzle_config_display_name",
	},
}

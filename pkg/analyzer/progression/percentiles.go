package progression

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/analyzer"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/percentile"
)

// PercentileAnalyzer selects weighted last-position percentiles per event.
type PercentileAnalyzer struct {
	kind       models.EventKind
	thresholds []float64
	window     models.DateRange
	workers    int
}

var _ analyzer.RowAnalyzer[models.ProgressionRow, *models.PercentileSeries] = (*PercentileAnalyzer)(nil)

// PercentileOption configures a PercentileAnalyzer.
type PercentileOption func(*PercentileAnalyzer)

// WithKind labels the report with the event family.
func WithKind(kind models.EventKind) PercentileOption {
	return func(a *PercentileAnalyzer) {
		a.kind = kind
	}
}

// WithThresholds sets the percentiles to select.
func WithThresholds(qs []float64) PercentileOption {
	return func(a *PercentileAnalyzer) {
		if len(qs) > 0 {
			a.thresholds = slices.Clone(qs)
		}
	}
}

// WithWindow restricts events to a date window.
func WithWindow(window models.DateRange) PercentileOption {
	return func(a *PercentileAnalyzer) {
		a.window = window
	}
}

// WithWorkers spreads per-event selection over n goroutines.
func WithWorkers(n int) PercentileOption {
	return func(a *PercentileAnalyzer) {
		a.workers = n
	}
}

// NewPercentileAnalyzer creates a weighted percentile analyzer.
func NewPercentileAnalyzer(opts ...PercentileOption) *PercentileAnalyzer {
	a := &PercentileAnalyzer{
		kind:       models.EventMissionBar,
		thresholds: slices.Clone(percentile.DefaultThresholds),
		workers:    1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns one point per event with positive player count, sorted by
// event start.
func (a *PercentileAnalyzer) Analyze(ctx context.Context, rows []models.ProgressionRow) (*models.PercentileSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows = InWindow(rows, a.window)
	result, err := percentile.Aggregate(Observations(rows), a.thresholds, percentile.WithWorkers(a.workers))
	if err != nil {
		return nil, fmt.Errorf("weighted percentiles: %w", err)
	}

	players := make(map[int64]int64)
	for _, r := range rows {
		players[models.Day(r.Event).Unix()] += r.Players
	}

	qs := slices.Clone(a.thresholds)
	slices.Sort(qs)
	qs = slices.Compact(qs)

	series := &models.PercentileSeries{
		Kind:       a.kind,
		Window:     a.window,
		Thresholds: qs,
		Points:     make([]models.PercentilePoint, 0, len(result)),
	}
	for _, event := range result.Groups() {
		selected := result[event]
		point := models.PercentilePoint{
			Event:       time.Unix(event, 0).UTC(),
			Players:     players[event],
			Percentiles: make([]models.ThresholdValue, 0, len(qs)),
		}
		for _, q := range qs {
			point.Percentiles = append(point.Percentiles, models.ThresholdValue{
				Threshold: q,
				Label:     percentile.Label(q),
				Value:     selected[q],
			})
		}
		series.Points = append(series.Points, point)
	}
	return series, nil
}

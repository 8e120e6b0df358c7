package progression

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/analyzer"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
)

// DefaultMinPlayers drops events too small to chart.
const DefaultMinPlayers = 1000

// DistributionAnalyzer computes the share of players by last position.
type DistributionAnalyzer struct {
	kind       models.EventKind
	minPlayers int64
	window     models.DateRange
}

var _ analyzer.RowAnalyzer[models.ProgressionRow, *models.Distribution] = (*DistributionAnalyzer)(nil)

// DistributionOption configures a DistributionAnalyzer.
type DistributionOption func(*DistributionAnalyzer)

// WithDistributionKind labels the report with the event family.
func WithDistributionKind(kind models.EventKind) DistributionOption {
	return func(a *DistributionAnalyzer) {
		a.kind = kind
	}
}

// WithMinPlayers drops events whose total is at or below n.
func WithMinPlayers(n int64) DistributionOption {
	return func(a *DistributionAnalyzer) {
		if n >= 0 {
			a.minPlayers = n
		}
	}
}

// WithDistributionWindow restricts events to a date window.
func WithDistributionWindow(window models.DateRange) DistributionOption {
	return func(a *DistributionAnalyzer) {
		a.window = window
	}
}

// NewDistributionAnalyzer creates a distribution analyzer.
func NewDistributionAnalyzer(opts ...DistributionOption) *DistributionAnalyzer {
	a := &DistributionAnalyzer{
		kind:       models.EventMissionBar,
		minPlayers: DefaultMinPlayers,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze sums players per (event, position), drops small events and
// expresses each position as a percentage of its event's total.
func (a *DistributionAnalyzer) Analyze(ctx context.Context, rows []models.ProgressionRow) (*models.Distribution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byEvent := make(map[time.Time]map[int]int64)
	for _, r := range InWindow(rows, a.window) {
		if r.Players < 0 {
			return nil, fmt.Errorf("event %s position %d: negative player count %d",
				r.Event.Format(models.DateLayout), r.Position, r.Players)
		}
		day := models.Day(r.Event)
		if byEvent[day] == nil {
			byEvent[day] = make(map[int]int64)
		}
		byEvent[day][r.Position] += r.Players
	}

	dist := &models.Distribution{Kind: a.kind, MinPlayers: a.minPlayers}
	positions := make(map[int]bool)

	for _, event := range slices.SortedFunc(maps.Keys(byEvent), func(x, y time.Time) int { return x.Compare(y) }) {
		counts := byEvent[event]
		var total int64
		for _, n := range counts {
			total += n
		}
		if total <= a.minPlayers || total == 0 {
			continue
		}

		ed := models.EventDistribution{Event: event, Total: total}
		for _, pos := range slices.Sorted(maps.Keys(counts)) {
			positions[pos] = true
			ed.Shares = append(ed.Shares, models.PositionShare{
				Position: pos,
				Players:  counts[pos],
				Percent:  float64(counts[pos]) / float64(total) * 100,
			})
		}
		dist.Events = append(dist.Events, ed)
	}

	dist.Positions = slices.Sorted(maps.Keys(positions))
	return dist, nil
}

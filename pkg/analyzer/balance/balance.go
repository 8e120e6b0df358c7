// Package balance computes per-day quantiles of player energy balances.
package balance

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/analyzer"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/percentile"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/stats"
)

// Analyzer computes interpolated quantiles of one balance metric per promo day.
type Analyzer struct {
	metric     models.Metric
	payer      models.PayerFilter
	thresholds []float64
	window     models.DateRange
}

var _ analyzer.RowAnalyzer[models.BalanceRow, *models.QuantileSeries] = (*Analyzer)(nil)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithMetric selects the balance column.
func WithMetric(m models.Metric) Option {
	return func(a *Analyzer) {
		a.metric = m
	}
}

// WithPayer restricts players by payer status.
func WithPayer(p models.PayerFilter) Option {
	return func(a *Analyzer) {
		a.payer = p
	}
}

// WithThresholds sets the quantiles to compute.
func WithThresholds(qs []float64) Option {
	return func(a *Analyzer) {
		if len(qs) > 0 {
			a.thresholds = slices.Clone(qs)
		}
	}
}

// WithWindow restricts promo days to a date window.
func WithWindow(window models.DateRange) Option {
	return func(a *Analyzer) {
		a.window = window
	}
}

// New creates a balance analyzer for end-of-period energy across all players.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		metric:     models.MetricEnergyEOP,
		payer:      models.PayerAll,
		thresholds: slices.Clone(percentile.DefaultThresholds),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns one point per promo day that has at least one value.
func (a *Analyzer) Analyze(ctx context.Context, rows []models.BalanceRow) (*models.QuantileSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := models.ParseMetric(string(a.metric)); err != nil {
		return nil, err
	}

	qs := slices.Clone(a.thresholds)
	slices.Sort(qs)
	qs = slices.Compact(qs)
	for _, q := range qs {
		if !(q > 0 && q <= 1) {
			return nil, &percentile.ValidationError{Field: "threshold", Value: q, Reason: "must be in (0, 1]"}
		}
	}

	byDay := make(map[time.Time][]float64)
	for _, r := range rows {
		if !a.payer.Match(r.IsPayer) || !a.window.Contains(r.PromoDate) {
			continue
		}
		v, ok := r.Value(a.metric)
		if !ok {
			continue
		}
		d := models.Day(r.PromoDate)
		byDay[d] = append(byDay[d], v)
	}

	series := &models.QuantileSeries{
		Metric:     a.metric,
		Payer:      a.payer,
		Window:     a.window,
		Thresholds: qs,
		Points:     make([]models.QuantilePoint, 0, len(byDay)),
	}
	for _, d := range slices.SortedFunc(maps.Keys(byDay), func(x, y time.Time) int { return x.Compare(y) }) {
		values := byDay[d]
		quantiles, err := stats.Quantiles(values, qs)
		if err != nil {
			return nil, fmt.Errorf("quantiles for %s: %w", d.Format(models.DateLayout), err)
		}
		summary, err := stats.Summarize(values)
		if err != nil {
			return nil, fmt.Errorf("summary for %s: %w", d.Format(models.DateLayout), err)
		}
		point := models.QuantilePoint{
			Date:    d,
			Players: summary.Count,
			Mean:    summary.Mean,
			StdDev:  summary.StdDev,
		}
		for _, q := range qs {
			point.Quantiles = append(point.Quantiles, models.QuantileValue{
				Threshold: q,
				Label:     percentile.Label(q),
				Value:     quantiles[q],
			})
		}
		series.Points = append(series.Points, point)
	}
	return series, nil
}

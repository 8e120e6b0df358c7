// Package stats provides statistical utility functions for per-player metrics.
package stats

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmpty is returned when a statistic is requested over no values.
	ErrEmpty = errors.New("no values")
	// ErrQuantileRange is returned for quantiles outside [0, 1].
	ErrQuantileRange = errors.New("quantile must be in [0, 1]")
)

// Quantile returns the q-th quantile of a sorted slice using linear
// interpolation between the closest ranks (rank = q*(n-1)).
// The slice must already be sorted in ascending order.
func Quantile(sorted []float64, q float64) (float64, error) {
	if len(sorted) == 0 {
		return 0, ErrEmpty
	}
	if math.IsNaN(q) || q < 0 || q > 1 {
		return 0, fmt.Errorf("%w: got %v", ErrQuantileRange, q)
	}

	rank := q * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if upper >= len(sorted) {
		upper = len(sorted) - 1
	}
	if lower == upper {
		return sorted[lower], nil
	}

	frac := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac, nil
}

// Quantiles sorts a copy of values and returns the quantile for each q,
// keyed by q.
func Quantiles(values []float64, qs []float64) (map[float64]float64, error) {
	if len(values) == 0 {
		return nil, ErrEmpty
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	out := make(map[float64]float64, len(qs))
	for _, q := range qs {
		v, err := Quantile(sorted, q)
		if err != nil {
			return nil, err
		}
		out[q] = v
	}
	return out, nil
}

// Summary holds descriptive statistics for a set of values.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Summarize computes descriptive statistics. StdDev is the unbiased sample
// standard deviation and is zero for a single value.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmpty
	}
	s := Summary{
		Count: len(values),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
	}
	if len(values) == 1 {
		s.Mean = values[0]
		return s, nil
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	return s, nil
}

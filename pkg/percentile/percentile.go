// Package percentile selects weighted percentiles from grouped observations.
//
// A percentile is always one of the group's own values: the smallest value
// whose cumulative weight share reaches the threshold. Nothing is interpolated.
package percentile

import (
	"cmp"
	"maps"
	"math"
	"slices"
	"sort"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/floats"
)

// Observation is the weight concentrated at one value within one group.
type Observation[G, V cmp.Ordered] struct {
	Group  G
	Value  V
	Weight float64
}

// Result maps each group to its selected value per threshold.
type Result[G, V cmp.Ordered] map[G]map[float64]V

// Groups returns the result's groups in ascending order.
func (r Result[G, V]) Groups() []G {
	return slices.Sorted(maps.Keys(r))
}

// Option configures an aggregation.
type Option func(*options)

type options struct {
	workers int
}

// WithWorkers spreads per-group selection over up to n goroutines.
// Values below 2 keep the computation on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// Aggregate computes, for every group with positive total weight, the
// smallest value whose cumulative weight fraction reaches each threshold.
//
// Thresholds must lie in (0, 1], weights must be non-negative and finite, and
// each group's total weight must be finite; otherwise a *ValidationError is
// returned and no result is produced.
// Observations sharing a (group, value) pair have their weights summed.
// Groups whose weights sum to zero are omitted.
func Aggregate[G, V cmp.Ordered](observations []Observation[G, V], thresholds []float64, opts ...Option) (Result[G, V], error) {
	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	qs, err := normalizeThresholds(thresholds)
	if err != nil {
		return nil, err
	}
	if err := validateWeights(observations); err != nil {
		return nil, err
	}

	groups := partition(observations)
	if err := validateTotals(groups); err != nil {
		return nil, err
	}
	result := make(Result[G, V], len(groups))

	if o.workers < 2 || len(groups) < 2 {
		for g, weights := range groups {
			if selected, ok := selectGroup(weights, qs); ok {
				result[g] = selected
			}
		}
		return result, nil
	}

	type groupResult struct {
		group    G
		selected map[float64]V
		ok       bool
	}

	p := pool.NewWithResults[groupResult]().WithMaxGoroutines(o.workers)
	for g, weights := range groups {
		p.Go(func() groupResult {
			selected, ok := selectGroup(weights, qs)
			return groupResult{group: g, selected: selected, ok: ok}
		})
	}
	for _, r := range p.Wait() {
		if r.ok {
			result[r.group] = r.selected
		}
	}
	return result, nil
}

// normalizeThresholds validates thresholds and returns them sorted with
// duplicates removed.
func normalizeThresholds(thresholds []float64) ([]float64, error) {
	for _, q := range thresholds {
		if math.IsNaN(q) || q <= 0 || q > 1 {
			return nil, &ValidationError{Field: "threshold", Value: q, Reason: "must be in (0, 1]"}
		}
	}
	qs := slices.Clone(thresholds)
	slices.Sort(qs)
	return slices.Compact(qs), nil
}

func validateWeights[G, V cmp.Ordered](observations []Observation[G, V]) error {
	for _, obs := range observations {
		switch {
		case math.IsNaN(obs.Weight) || math.IsInf(obs.Weight, 0):
			return &ValidationError{Field: "weight", Value: obs.Weight, Reason: "must be finite"}
		case obs.Weight < 0:
			return &ValidationError{Field: "weight", Value: obs.Weight, Reason: "must not be negative"}
		}
	}
	return nil
}

// validateTotals rejects groups whose finite weights sum past the float64
// range, where cumulative fractions are no longer meaningful.
func validateTotals[G, V cmp.Ordered](groups map[G]map[V]float64) error {
	for _, weights := range groups {
		total := 0.0
		for _, w := range weights {
			total += w
		}
		if math.IsInf(total, 0) {
			return &ValidationError{Field: "weight", Value: total, Reason: "group total overflows float64"}
		}
	}
	return nil
}

// partition sums weights per distinct value within each group. Sums are
// accumulated in input order.
func partition[G, V cmp.Ordered](observations []Observation[G, V]) map[G]map[V]float64 {
	groups := make(map[G]map[V]float64)
	for _, obs := range observations {
		weights, ok := groups[obs.Group]
		if !ok {
			weights = make(map[V]float64)
			groups[obs.Group] = weights
		}
		weights[obs.Value] += obs.Weight
	}
	return groups
}

// selectGroup picks a value per threshold from one group's weight table.
// It reports false when the group carries no weight.
func selectGroup[V cmp.Ordered](weights map[V]float64, qs []float64) (map[float64]V, bool) {
	values := slices.Sorted(maps.Keys(weights))
	w := make([]float64, len(values))
	for i, v := range values {
		w[i] = weights[v]
	}

	cum := floats.CumSum(make([]float64, len(w)), w)
	total := cum[len(cum)-1]
	if total <= 0 {
		return nil, false
	}

	selected := make(map[float64]V, len(qs))
	for _, q := range qs {
		i := sort.Search(len(cum), func(i int) bool {
			return cum[i]/total >= q
		})
		if i >= len(values) {
			i = len(values) - 1
		}
		selected[q] = values[i]
	}
	return selected, true
}

package percentile

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// DefaultThresholds are the percentiles reported when none are selected.
var DefaultThresholds = []float64{0.5, 0.75, 0.9, 0.95, 0.99}

// Label renders a threshold as "90th percentile".
func Label(q float64) string {
	return ShortLabel(q) + "th percentile"
}

// ShortLabel renders a threshold as "90" (or "99.5").
func ShortLabel(q float64) string {
	pct := math.Round(q*100*1e4) / 1e4
	return strconv.FormatFloat(pct, 'f', -1, 64)
}

// ParseLabel parses a threshold written as "90th percentile", "90th",
// "p90", "90%" or a plain fraction such as "0.9".
func ParseLabel(s string) (float64, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "percentile"))

	percent := false
	switch {
	case strings.HasPrefix(raw, "p"):
		raw, percent = raw[1:], true
	case strings.HasSuffix(raw, "%"):
		raw, percent = strings.TrimSuffix(raw, "%"), true
	default:
		for _, suffix := range []string{"th", "st", "nd", "rd"} {
			if strings.HasSuffix(raw, suffix) {
				raw, percent = strings.TrimSuffix(raw, suffix), true
				break
			}
		}
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentile %q: %w", s, err)
	}
	if percent {
		v /= 100
	}
	if math.IsNaN(v) || v <= 0 || v > 1 {
		return 0, &ValidationError{Field: "threshold", Value: v, Reason: "must be in (0, 1]"}
	}
	return v, nil
}

// ParseSelection converts a percentile picker selection into thresholds.
// An empty selection, or one containing "all", yields DefaultThresholds.
func ParseSelection(selection []string) ([]float64, error) {
	if len(selection) == 0 {
		return slices.Clone(DefaultThresholds), nil
	}
	qs := make([]float64, 0, len(selection))
	for _, s := range selection {
		if strings.EqualFold(strings.TrimSpace(s), "all") {
			return slices.Clone(DefaultThresholds), nil
		}
		q, err := ParseLabel(s)
		if err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	slices.Sort(qs)
	return slices.Compact(qs), nil
}

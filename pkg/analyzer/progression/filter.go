// Package progression summarizes how far players got in progression events.
package progression

import (
	"slices"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/percentile"
)

// Observations converts rows into weighted observations grouped by event
// start day (as Unix seconds), valued by last position and weighted by
// unique players.
func Observations(rows []models.ProgressionRow) []percentile.Observation[int64, int] {
	obs := make([]percentile.Observation[int64, int], len(rows))
	for i, r := range rows {
		obs[i] = percentile.Observation[int64, int]{
			Group:  models.Day(r.Event).Unix(),
			Value:  r.Position,
			Weight: float64(r.Players),
		}
	}
	return obs
}

// InWindow keeps the rows whose event starts inside the window.
func InWindow(rows []models.ProgressionRow, window models.DateRange) []models.ProgressionRow {
	out := make([]models.ProgressionRow, 0, len(rows))
	for _, r := range rows {
		if window.Contains(r.Event) {
			out = append(out, r)
		}
	}
	return out
}

// MaxLevels returns the highest position reached per config.
func MaxLevels(rows []models.ProgressionRow) map[string]int {
	levels := make(map[string]int)
	for _, r := range rows {
		if r.Config == "" {
			continue
		}
		if cur, ok := levels[r.Config]; !ok || r.Position > cur {
			levels[r.Config] = r.Position
		}
	}
	return levels
}

// AvailableLevels returns the distinct config max levels in ascending order.
func AvailableLevels(rows []models.ProgressionRow) []int {
	var levels []int
	for _, l := range MaxLevels(rows) {
		levels = append(levels, l)
	}
	slices.Sort(levels)
	return slices.Compact(levels)
}

// ConfigsWithMaxLevel lists configs whose max level equals maxLevel, sorted.
// A maxLevel of zero lists every config.
func ConfigsWithMaxLevel(rows []models.ProgressionRow, maxLevel int) []string {
	var configs []string
	for cfg, l := range MaxLevels(rows) {
		if maxLevel == 0 || l == maxLevel {
			configs = append(configs, cfg)
		}
	}
	slices.Sort(configs)
	return configs
}

// FilterConfigs keeps rows of configs whose max level equals maxLevel
// (zero keeps every level bucket) and, when configs is non-empty, only the
// named configs.
func FilterConfigs(rows []models.ProgressionRow, maxLevel int, configs []string) []models.ProgressionRow {
	if maxLevel == 0 && len(configs) == 0 {
		return rows
	}

	allowed := make(map[string]bool)
	for _, cfg := range ConfigsWithMaxLevel(rows, maxLevel) {
		allowed[cfg] = true
	}
	if len(configs) > 0 {
		named := make(map[string]bool, len(configs))
		for _, cfg := range configs {
			named[cfg] = true
		}
		for cfg := range allowed {
			if !named[cfg] {
				delete(allowed, cfg)
			}
		}
	}

	out := make([]models.ProgressionRow, 0, len(rows))
	for _, r := range rows {
		if allowed[r.Config] {
			out = append(out, r)
		}
	}
	return out
}

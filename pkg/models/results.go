package models

import "time"

// ThresholdValue is the position selected for one weighted percentile.
type ThresholdValue struct {
	Threshold float64 `json:"threshold"`
	Label     string  `json:"label"`
	Value     int     `json:"value"`
}

// PercentilePoint holds the weighted last-position percentiles of one event.
type PercentilePoint struct {
	Event       time.Time        `json:"event"`
	Players     int64            `json:"players"`
	Percentiles []ThresholdValue `json:"percentiles"`
}

// PercentileSeries is the weighted percentile report for one event family.
type PercentileSeries struct {
	Kind       EventKind         `json:"kind"`
	Window     DateRange         `json:"window"`
	Thresholds []float64         `json:"thresholds"`
	Points     []PercentilePoint `json:"points"`
}

// PositionShare is one stacked segment of an event's distribution.
type PositionShare struct {
	Position int     `json:"position"`
	Players  int64   `json:"players"`
	Percent  float64 `json:"percent"`
}

// EventDistribution is the share of players by last position for one event.
type EventDistribution struct {
	Event  time.Time       `json:"event"`
	Total  int64           `json:"total"`
	Shares []PositionShare `json:"shares"`
}

// Percent returns the share at position, or zero when no player stopped there.
func (e EventDistribution) Percent(position int) float64 {
	for _, s := range e.Shares {
		if s.Position == position {
			return s.Percent
		}
	}
	return 0
}

// Distribution is the 100% stacked last-position report for one event family.
type Distribution struct {
	Kind       EventKind           `json:"kind"`
	MinPlayers int64               `json:"min_players"`
	Positions  []int               `json:"positions"`
	Events     []EventDistribution `json:"events"`
}

// QuantileValue is one interpolated per-player quantile.
type QuantileValue struct {
	Threshold float64 `json:"threshold"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
}

// QuantilePoint holds the per-player quantiles of one promo day.
type QuantilePoint struct {
	Date      time.Time       `json:"date"`
	Players   int             `json:"players"`
	Mean      float64         `json:"mean"`
	StdDev    float64         `json:"std_dev"`
	Quantiles []QuantileValue `json:"quantiles"`
}

// QuantileSeries is the per-day balance quantile report for one metric.
type QuantileSeries struct {
	Metric     Metric          `json:"metric"`
	Payer      PayerFilter     `json:"payer"`
	Window     DateRange       `json:"window"`
	Thresholds []float64       `json:"thresholds"`
	Points     []QuantilePoint `json:"points"`
}

// CampaignStart marks a day whose main story differs from the previous day's.
type CampaignStart struct {
	Date  time.Time `json:"date"`
	Story string    `json:"story"`
}

// StoryDebut lists the stories first appearing on one day.
type StoryDebut struct {
	Date    time.Time `json:"date"`
	Stories []string  `json:"stories"`
	Label   string    `json:"label"`
}

// CampaignReport holds campaign markers for a window.
type CampaignReport struct {
	Window DateRange       `json:"window"`
	Starts []CampaignStart `json:"starts"`
	Debuts []StoryDebut    `json:"debuts,omitempty"`
}

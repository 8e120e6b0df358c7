package progression

import (
	"context"
	"testing"
	"time"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/percentile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleRows() []models.ProgressionRow {
	return []models.ProgressionRow{
		{Event: day("2025-01-06"), Position: 1, Players: 10},
		{Event: day("2025-01-06"), Position: 2, Players: 20},
		{Event: day("2025-01-06").Add(9 * time.Hour), Position: 3, Players: 70},
		{Event: day("2025-01-13"), Position: 1, Players: 50},
		{Event: day("2025-01-13"), Position: 2, Players: 50},
		{Event: day("2025-01-20"), Position: 4, Players: 0},
	}
}

func TestPercentileAnalyzer(t *testing.T) {
	a := NewPercentileAnalyzer(WithThresholds([]float64{0.9, 0.5, 0.5}))

	series, err := a.Analyze(context.Background(), sampleRows())
	require.NoError(t, err)

	assert.Equal(t, models.EventMissionBar, series.Kind)
	assert.Equal(t, []float64{0.5, 0.9}, series.Thresholds)
	require.Len(t, series.Points, 2, "zero-player event omitted")

	first := series.Points[0]
	assert.Equal(t, day("2025-01-06"), first.Event)
	assert.Equal(t, int64(100), first.Players)
	assert.Equal(t, []models.ThresholdValue{
		{Threshold: 0.5, Label: "50th percentile", Value: 3},
		{Threshold: 0.9, Label: "90th percentile", Value: 3},
	}, first.Percentiles)

	second := series.Points[1]
	assert.Equal(t, day("2025-01-13"), second.Event)
	assert.Equal(t, 1, second.Percentiles[0].Value)
	assert.Equal(t, 2, second.Percentiles[1].Value)
}

func TestPercentileAnalyzerWindow(t *testing.T) {
	window, err := models.ParseDateRange("2025-01-10", "")
	require.NoError(t, err)

	series, err := NewPercentileAnalyzer(WithWindow(window), WithWorkers(4)).Analyze(context.Background(), sampleRows())
	require.NoError(t, err)
	require.Len(t, series.Points, 1)
	assert.Equal(t, day("2025-01-13"), series.Points[0].Event)
}

func TestPercentileAnalyzerNegativePlayers(t *testing.T) {
	rows := []models.ProgressionRow{{Event: day("2025-01-06"), Position: 1, Players: -5}}

	_, err := NewPercentileAnalyzer().Analyze(context.Background(), rows)
	require.Error(t, err)

	var verr *percentile.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestPercentileAnalyzerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPercentileAnalyzer().Analyze(ctx, sampleRows())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDistributionAnalyzer(t *testing.T) {
	rows := append(sampleRows(), models.ProgressionRow{Event: day("2025-01-13"), Position: 2, Players: 100})

	dist, err := NewDistributionAnalyzer(WithMinPlayers(100), WithDistributionKind(models.EventDice)).
		Analyze(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, models.EventDice, dist.Kind)
	require.Len(t, dist.Events, 1, "events at or below the minimum are dropped")

	ev := dist.Events[0]
	assert.Equal(t, day("2025-01-13"), ev.Event)
	assert.Equal(t, int64(200), ev.Total)
	assert.Equal(t, []models.PositionShare{
		{Position: 1, Players: 50, Percent: 25},
		{Position: 2, Players: 150, Percent: 75},
	}, ev.Shares)
	assert.Equal(t, []int{1, 2}, dist.Positions)
}

func TestDistributionAnalyzerSharesSumToHundred(t *testing.T) {
	dist, err := NewDistributionAnalyzer(WithMinPlayers(0)).Analyze(context.Background(), sampleRows())
	require.NoError(t, err)
	require.Len(t, dist.Events, 2)
	assert.Equal(t, []int{1, 2, 3}, dist.Positions)

	for _, ev := range dist.Events {
		var sum float64
		for _, s := range ev.Shares {
			sum += s.Percent
		}
		assert.InDelta(t, 100, sum, 1e-9)
	}
}

func TestDistributionAnalyzerNegativePlayers(t *testing.T) {
	rows := []models.ProgressionRow{{Event: day("2025-01-06"), Position: 1, Players: -1}}
	_, err := NewDistributionAnalyzer(WithMinPlayers(0)).Analyze(context.Background(), rows)
	assert.Error(t, err)
}

func puzzleRows() []models.ProgressionRow {
	return []models.ProgressionRow{
		{Event: day("2025-02-01"), Position: 3, Players: 5, Config: "easy"},
		{Event: day("2025-02-01"), Position: 5, Players: 2, Config: "easy"},
		{Event: day("2025-02-01"), Position: 5, Players: 4, Config: "hard"},
		{Event: day("2025-02-08"), Position: 8, Players: 1, Config: "long"},
	}
}

func TestMaxLevels(t *testing.T) {
	rows := puzzleRows()
	assert.Equal(t, map[string]int{"easy": 5, "hard": 5, "long": 8}, MaxLevels(rows))
	assert.Equal(t, []int{5, 8}, AvailableLevels(rows))
	assert.Equal(t, []string{"easy", "hard"}, ConfigsWithMaxLevel(rows, 5))
	assert.Equal(t, []string{"easy", "hard", "long"}, ConfigsWithMaxLevel(rows, 0))
}

func TestFilterConfigs(t *testing.T) {
	rows := puzzleRows()

	assert.Len(t, FilterConfigs(rows, 0, nil), 4)
	assert.Len(t, FilterConfigs(rows, 5, nil), 3)
	assert.Len(t, FilterConfigs(rows, 5, []string{"hard"}), 1)
	assert.Empty(t, FilterConfigs(rows, 8, []string{"hard"}))
	assert.Len(t, FilterConfigs(rows, 0, []string{"long", "easy"}), 3)
}

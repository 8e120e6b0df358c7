package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/cache"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/config"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/source"
)

type fakeSource struct {
	progression map[models.EventKind][]models.ProgressionRow
	balance     []models.BalanceRow
	plan        []models.PlanEntry
	fail        map[string]error
	calls       map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		progression: map[models.EventKind][]models.ProgressionRow{},
		fail:        map[string]error{},
		calls:       map[string]int{},
	}
}

func (f *fakeSource) Progression(_ context.Context, kind models.EventKind) ([]models.ProgressionRow, error) {
	dataset, _ := source.ProgressionDataset(kind)
	f.calls[dataset]++
	if err := f.fail[dataset]; err != nil {
		return nil, err
	}
	return f.progression[kind], nil
}

func (f *fakeSource) Balance(context.Context) ([]models.BalanceRow, error) {
	f.calls[source.DatasetBalance]++
	if err := f.fail[source.DatasetBalance]; err != nil {
		return nil, err
	}
	return f.balance, nil
}

func (f *fakeSource) Plan(context.Context) ([]models.PlanEntry, error) {
	f.calls[source.DatasetPlan]++
	if err := f.fail[source.DatasetPlan]; err != nil {
		return nil, err
	}
	return f.plan, nil
}

func (f *fakeSource) Name() string { return "fake" }
func (f *fakeSource) Close() error { return nil }

// fingerprintSource adds content hashes to fakeSource.
type fingerprintSource struct {
	*fakeSource
	hashes map[string]string
}

func (f *fingerprintSource) Fingerprint(dataset string) (string, error) {
	h, ok := f.hashes[dataset]
	if !ok {
		return "", source.ErrNotFound
	}
	return h, nil
}

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func ptr(v float64) *float64 { return &v }

func diceRows() []models.ProgressionRow {
	return []models.ProgressionRow{
		{Event: day(6), Position: 1, Players: 500},
		{Event: day(6), Position: 2, Players: 300},
		{Event: day(6), Position: 3, Players: 200},
		{Event: day(13), Position: 7, Players: 2000},
	}
}

func testCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.New(t.TempDir(), 24, true)
	require.NoError(t, err)
	return c
}

func TestPercentiles(t *testing.T) {
	src := newFakeSource()
	src.progression[models.EventDice] = diceRows()
	svc := New(WithSource(src))

	series, err := svc.Percentiles(context.Background(), PercentileOptions{
		Kind:       models.EventDice,
		Thresholds: []float64{0.9, 0.5},
	})
	require.NoError(t, err)

	assert.Equal(t, models.EventDice, series.Kind)
	assert.Equal(t, []float64{0.5, 0.9}, series.Thresholds)
	require.Len(t, series.Points, 2)

	first := series.Points[0]
	assert.Equal(t, day(6), first.Event)
	assert.EqualValues(t, 1000, first.Players)
	assert.Equal(t, 1, first.Percentiles[0].Value)
	assert.Equal(t, 3, first.Percentiles[1].Value)
	assert.Equal(t, 7, series.Points[1].Percentiles[0].Value)
}

func TestPercentilesUsesConfiguredThresholds(t *testing.T) {
	src := newFakeSource()
	src.progression[models.EventDice] = diceRows()
	cfg := config.DefaultConfig()
	cfg.Analysis.Percentiles = []float64{0.75}

	series, err := New(WithSource(src), WithConfig(cfg), WithWorkers(4)).
		Percentiles(context.Background(), PercentileOptions{Kind: models.EventDice})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.75}, series.Thresholds)
}

func TestPercentilesPuzzleFilters(t *testing.T) {
	src := newFakeSource()
	src.progression[models.EventPuzzle] = []models.ProgressionRow{
		{Event: day(6), Position: 5, Players: 10, Config: "Short"},
		{Event: day(6), Position: 12, Players: 10, Config: "Long"},
	}
	svc := New(WithSource(src))

	series, err := svc.Percentiles(context.Background(), PercentileOptions{
		Kind:       models.EventPuzzle,
		Thresholds: []float64{1},
		MaxLevel:   5,
	})
	require.NoError(t, err)
	require.Len(t, series.Points, 1)
	assert.Equal(t, 5, series.Points[0].Percentiles[0].Value)

	catalog, err := svc.PuzzleCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int][]string{5: {"Short"}, 12: {"Long"}}, catalog)
}

func TestDistributionMinPlayers(t *testing.T) {
	src := newFakeSource()
	src.progression[models.EventDice] = diceRows()
	svc := New(WithSource(src))
	ctx := context.Background()

	dist, err := svc.Distribution(ctx, DistributionOptions{Kind: models.EventDice})
	require.NoError(t, err)
	require.Len(t, dist.Events, 1, "the 1000-player event is not above the default minimum")
	assert.Equal(t, day(13), dist.Events[0].Event)

	low := int64(0)
	dist, err = svc.Distribution(ctx, DistributionOptions{Kind: models.EventDice, MinPlayers: &low})
	require.NoError(t, err)
	require.Len(t, dist.Events, 2)
	assert.InDelta(t, 50.0, dist.Events[0].Percent(1), 1e-9)
	assert.Equal(t, []int{1, 2, 3, 7}, dist.Positions)
}

func TestBalanceQuantiles(t *testing.T) {
	src := newFakeSource()
	src.balance = []models.BalanceRow{
		{PromoDate: day(6), PlayerID: "a", IsPayer: true, EnergyEOP: ptr(10)},
		{PromoDate: day(6), PlayerID: "b", IsPayer: false, EnergyEOP: ptr(20)},
		{PromoDate: day(6), PlayerID: "c", IsPayer: true, EnergyEOP: ptr(30)},
		{PromoDate: day(6), PlayerID: "d", IsPayer: false, EnergyEOP: ptr(40)},
		{PromoDate: day(7), PlayerID: "a", IsPayer: true},
	}
	svc := New(WithSource(src))
	ctx := context.Background()

	all, err := svc.BalanceQuantiles(ctx, BalanceOptions{Thresholds: []float64{0.5}})
	require.NoError(t, err)
	require.Len(t, all.Points, 1, "days without values are skipped")
	assert.Equal(t, models.MetricEnergyEOP, all.Metric)
	assert.InDelta(t, 25.0, all.Points[0].Quantiles[0].Value, 1e-9)

	payers, err := svc.BalanceQuantiles(ctx, BalanceOptions{
		Metric:     models.MetricEnergyEOP,
		Payer:      models.PayerOnly,
		Thresholds: []float64{0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, payers.Points[0].Players)
	assert.InDelta(t, 20.0, payers.Points[0].Quantiles[0].Value, 1e-9)
}

func TestCampaigns(t *testing.T) {
	src := newFakeSource()
	src.plan = []models.PlanEntry{
		{PromoDate: day(1), MainStory: "Pirates"},
		{PromoDate: day(2), MainStory: "Pirates"},
		{PromoDate: day(3), MainStory: "Atlantis"},
	}

	r, err := New(WithSource(src)).Campaigns(context.Background(), CampaignOptions{Debuts: true})
	require.NoError(t, err)
	require.Len(t, r.Starts, 2)
	assert.Equal(t, "Atlantis", r.Starts[1].Story)
	assert.Len(t, r.Debuts, 2)
}

func TestExtractsAreCached(t *testing.T) {
	src := newFakeSource()
	src.progression[models.EventDice] = diceRows()
	c := testCache(t)
	ctx := context.Background()

	first, err := New(WithSource(src), WithCache(c)).Percentiles(ctx, PercentileOptions{Kind: models.EventDice})
	require.NoError(t, err)
	second, err := New(WithSource(src), WithCache(c)).Percentiles(ctx, PercentileOptions{Kind: models.EventDice})
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls["dice_progression"])
	assert.Equal(t, first, second)
}

func TestFingerprintChangeRefetches(t *testing.T) {
	src := &fingerprintSource{
		fakeSource: newFakeSource(),
		hashes:     map[string]string{source.DatasetPlan: "v1"},
	}
	svc := New(WithSource(src), WithCache(testCache(t)))
	ctx := context.Background()

	_, err := svc.Campaigns(ctx, CampaignOptions{})
	require.NoError(t, err)
	_, err = svc.Campaigns(ctx, CampaignOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls[source.DatasetPlan])

	src.hashes[source.DatasetPlan] = "v2"
	_, err = svc.Campaigns(ctx, CampaignOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls[source.DatasetPlan])
}

func TestFingerprintFailureBypassesCache(t *testing.T) {
	src := &fingerprintSource{fakeSource: newFakeSource(), hashes: map[string]string{}}
	svc := New(WithSource(src), WithCache(testCache(t)))
	ctx := context.Background()

	for range 2 {
		_, err := svc.Campaigns(ctx, CampaignOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, src.calls[source.DatasetPlan])
}

func TestLoadErrors(t *testing.T) {
	_, err := New().Campaigns(context.Background(), CampaignOptions{})
	assert.ErrorIs(t, err, ErrNoSource)

	src := newFakeSource()
	src.fail[source.DatasetBalance] = source.ErrNotFound
	_, err = New(WithSource(src)).BalanceQuantiles(context.Background(), BalanceOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrNotFound)
	assert.Contains(t, err.Error(), "loading player_balance")

	_, err = New(WithSource(src)).Percentiles(context.Background(), PercentileOptions{Kind: "raffle"})
	assert.ErrorIs(t, err, source.ErrUnknownEvent)
}

func TestWarm(t *testing.T) {
	src := newFakeSource()
	src.fail["puzzle_progression"] = errors.New("timeout")
	svc := New(WithSource(src), WithCache(testCache(t)))

	var seen []string
	err := svc.Warm(context.Background(), func(dataset string, _ error) {
		seen = append(seen, dataset)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "puzzle_progression")
	assert.Equal(t, Datasets(), seen)

	for _, d := range Datasets() {
		assert.Equal(t, 1, src.calls[d], d)
	}

	delete(src.fail, "puzzle_progression")
	require.NoError(t, svc.Warm(context.Background(), nil))
	assert.Equal(t, 2, src.calls["puzzle_progression"])
	assert.Equal(t, 1, src.calls["dice_progression"], "served from cache")
}

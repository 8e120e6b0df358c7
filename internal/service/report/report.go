// Package report loads extracts through the cache and runs the economy
// analyzers over them.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/cache"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/analyzer/balance"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/analyzer/campaign"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/analyzer/progression"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/config"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/source"
)

// ErrNoSource is returned when a report runs without a data source.
var ErrNoSource = errors.New("no data source configured")

// Service orchestrates extract loading and analysis.
type Service struct {
	config  *config.Config
	source  source.Source
	cache   *cache.Cache
	workers int
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithSource sets the backend rows are loaded from.
func WithSource(src source.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithCache caches extracts between runs.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithWorkers spreads per-event percentile selection over n goroutines,
// overriding analysis.workers.
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.workers = n
	}
}

// New creates a report service. Without WithCache nothing is cached.
func New(opts ...Option) *Service {
	s := &Service{workers: -1}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.DefaultConfig()
	}
	if s.cache == nil {
		s.cache, _ = cache.New("", 0, false)
	}
	if s.workers < 0 {
		s.workers = s.config.Analysis.Workers
	}
	return s
}

// PercentileOptions configures a weighted percentile report.
type PercentileOptions struct {
	Kind       models.EventKind
	Thresholds []float64 // empty uses analysis.percentiles
	Window     models.DateRange
	MaxLevel   int      // puzzle only; zero keeps every level
	Configs    []string // puzzle only; empty keeps every config
}

// Percentiles returns the weighted last-position percentiles per event.
func (s *Service) Percentiles(ctx context.Context, opts PercentileOptions) (*models.PercentileSeries, error) {
	rows, err := s.progression(ctx, opts.Kind)
	if err != nil {
		return nil, err
	}
	rows = progression.FilterConfigs(rows, opts.MaxLevel, opts.Configs)

	a := progression.NewPercentileAnalyzer(
		progression.WithKind(opts.Kind),
		progression.WithThresholds(s.thresholds(opts.Thresholds)),
		progression.WithWindow(opts.Window),
		progression.WithWorkers(s.workers),
	)
	return a.Analyze(ctx, rows)
}

// DistributionOptions configures a last-position distribution report.
type DistributionOptions struct {
	Kind       models.EventKind
	MinPlayers *int64 // nil uses analysis.min_event_players
	Window     models.DateRange
	MaxLevel   int
	Configs    []string
}

// Distribution returns the share of players by last position per event.
func (s *Service) Distribution(ctx context.Context, opts DistributionOptions) (*models.Distribution, error) {
	rows, err := s.progression(ctx, opts.Kind)
	if err != nil {
		return nil, err
	}
	rows = progression.FilterConfigs(rows, opts.MaxLevel, opts.Configs)

	minPlayers := s.config.Analysis.MinEventPlayers
	if opts.MinPlayers != nil {
		minPlayers = *opts.MinPlayers
	}

	a := progression.NewDistributionAnalyzer(
		progression.WithDistributionKind(opts.Kind),
		progression.WithMinPlayers(minPlayers),
		progression.WithDistributionWindow(opts.Window),
	)
	return a.Analyze(ctx, rows)
}

// PuzzleCatalog lists puzzle configs grouped by the max level reached.
func (s *Service) PuzzleCatalog(ctx context.Context) (map[int][]string, error) {
	rows, err := s.progression(ctx, models.EventPuzzle)
	if err != nil {
		return nil, err
	}
	catalog := make(map[int][]string)
	for _, level := range progression.AvailableLevels(rows) {
		catalog[level] = progression.ConfigsWithMaxLevel(rows, level)
	}
	return catalog, nil
}

// BalanceOptions configures a balance quantile report.
type BalanceOptions struct {
	Metric     models.Metric
	Payer      models.PayerFilter
	Thresholds []float64
	Window     models.DateRange
}

// BalanceQuantiles returns per-day quantiles of a player balance metric.
func (s *Service) BalanceQuantiles(ctx context.Context, opts BalanceOptions) (*models.QuantileSeries, error) {
	rows, err := s.balance(ctx)
	if err != nil {
		return nil, err
	}

	var analyzerOpts []balance.Option
	if opts.Metric != "" {
		analyzerOpts = append(analyzerOpts, balance.WithMetric(opts.Metric))
	}
	if opts.Payer != "" {
		analyzerOpts = append(analyzerOpts, balance.WithPayer(opts.Payer))
	}
	analyzerOpts = append(analyzerOpts,
		balance.WithThresholds(s.thresholds(opts.Thresholds)),
		balance.WithWindow(opts.Window),
	)
	return balance.New(analyzerOpts...).Analyze(ctx, rows)
}

// CampaignOptions configures a campaign marker report.
type CampaignOptions struct {
	Window models.DateRange
	Debuts bool
}

// Campaigns returns campaign starts and, optionally, story debuts.
func (s *Service) Campaigns(ctx context.Context, opts CampaignOptions) (*models.CampaignReport, error) {
	plan, err := s.plan(ctx)
	if err != nil {
		return nil, err
	}
	a := campaign.New(campaign.WithWindow(opts.Window), campaign.WithDebuts(opts.Debuts))
	return a.Analyze(ctx, plan)
}

// Datasets lists every dataset Warm loads.
func Datasets() []string {
	datasets := make([]string, 0, len(models.EventKinds)+2)
	for _, kind := range models.EventKinds {
		d, _ := source.ProgressionDataset(kind)
		datasets = append(datasets, d)
	}
	return append(datasets, source.DatasetBalance, source.DatasetPlan)
}

// Warm loads every dataset so later reports are served from the cache.
// It keeps going after a failed dataset and returns all failures joined.
// onProgress, when set, is called once per dataset.
func (s *Service) Warm(ctx context.Context, onProgress func(dataset string, err error)) error {
	var errs []error
	report := func(dataset string, err error) {
		if err != nil {
			errs = append(errs, err)
		}
		if onProgress != nil {
			onProgress(dataset, err)
		}
	}

	for _, kind := range models.EventKinds {
		d, _ := source.ProgressionDataset(kind)
		_, err := s.progression(ctx, kind)
		report(d, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	_, err := s.balance(ctx)
	report(source.DatasetBalance, err)
	_, err = s.plan(ctx)
	report(source.DatasetPlan, err)

	return errors.Join(errs...)
}

func (s *Service) thresholds(qs []float64) []float64 {
	if len(qs) > 0 {
		return qs
	}
	return s.config.Analysis.Percentiles
}

func (s *Service) progression(ctx context.Context, kind models.EventKind) ([]models.ProgressionRow, error) {
	dataset, err := source.ProgressionDataset(kind)
	if err != nil {
		return nil, err
	}
	return load(ctx, s, dataset, func(ctx context.Context) ([]models.ProgressionRow, error) {
		return s.source.Progression(ctx, kind)
	})
}

func (s *Service) balance(ctx context.Context) ([]models.BalanceRow, error) {
	return load(ctx, s, source.DatasetBalance, func(ctx context.Context) ([]models.BalanceRow, error) {
		return s.source.Balance(ctx)
	})
}

func (s *Service) plan(ctx context.Context) ([]models.PlanEntry, error) {
	return load(ctx, s, source.DatasetPlan, func(ctx context.Context) ([]models.PlanEntry, error) {
		return s.source.Plan(ctx)
	})
}

// load serves a dataset from the cache or fetches and caches it. Sources
// that can fingerprint their data tie the entry to that fingerprint; when
// fingerprinting fails the cache is bypassed.
func load[T any](ctx context.Context, s *Service, dataset string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}

	key := cache.Key("extract", s.source.Name(), dataset)
	hash, cacheable := s.fingerprint(dataset)

	var rows []T
	if cacheable && s.cache.Load(key, hash, &rows) {
		return rows, nil
	}

	start := time.Now()
	rows, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", dataset, err)
	}
	log.Debug().Str("dataset", dataset).Int("rows", len(rows)).Dur("took", time.Since(start)).Msg("extract loaded")

	if !cacheable {
		return rows, nil
	}
	if err := s.cache.Store(key, hash, rows); err != nil {
		log.Warn().Err(err).Str("dataset", dataset).Msg("failed to cache extract")
	}
	return rows, nil
}

func (s *Service) fingerprint(dataset string) (string, bool) {
	fp, ok := s.source.(source.Fingerprinter)
	if !ok {
		return "", true
	}
	hash, err := fp.Fingerprint(dataset)
	if err != nil {
		log.Debug().Err(err).Str("dataset", dataset).Msg("no fingerprint, bypassing cache")
		return "", false
	}
	return hash, true
}

package source

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
)

// WarehouseConfig holds warehouse connection settings.
type WarehouseConfig struct {
	DSN             string
	Schema          string
	EventsSchema    string
	LookbackDays    int
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

// DefaultWarehouseConfig returns reasonable defaults for warehouse access.
func DefaultWarehouseConfig() WarehouseConfig {
	return WarehouseConfig{
		Schema:          "dwh",
		EventsSchema:    "base",
		LookbackDays:    191,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		QueryTimeout:    10 * time.Minute,
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Validate checks the settings that are spliced into queries.
func (c WarehouseConfig) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("warehouse DSN is required")
	}
	for _, schema := range []string{c.Schema, c.EventsSchema} {
		if !identifierPattern.MatchString(schema) {
			return fmt.Errorf("invalid schema name %q", schema)
		}
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("lookback days must be positive (got %d)", c.LookbackDays)
	}
	return nil
}

// WarehouseSource runs extraction queries against a PostgreSQL-compatible
// warehouse.
type WarehouseSource struct {
	db     *sqlx.DB
	config WarehouseConfig
}

var _ Source = (*WarehouseSource)(nil)

// NewWarehouseSource connects to the warehouse and verifies the connection.
func NewWarehouseSource(ctx context.Context, config WarehouseConfig) (*WarehouseSource, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	return newWarehouseSource(db, config), nil
}

func newWarehouseSource(db *sqlx.DB, config WarehouseConfig) *WarehouseSource {
	if config.QueryTimeout <= 0 {
		config.QueryTimeout = DefaultWarehouseConfig().QueryTimeout
	}
	return &WarehouseSource{db: db, config: config}
}

// Name implements Source.
func (s *WarehouseSource) Name() string {
	return fmt.Sprintf("warehouse:%s:%dd", s.config.Schema, s.config.LookbackDays)
}

// Close implements Source.
func (s *WarehouseSource) Close() error {
	return s.db.Close()
}

// Progression implements Source.
func (s *WarehouseSource) Progression(ctx context.Context, kind models.EventKind) ([]models.ProgressionRow, error) {
	query, ok := warehouseProgressionQueries[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
	}
	dataset, _ := ProgressionDataset(kind)

	var rows []models.ProgressionRow
	if err := s.selectRows(ctx, &rows, dataset, query, s.config.LookbackDays); err != nil {
		return nil, err
	}
	return rows, nil
}

// Balance implements Source.
func (s *WarehouseSource) Balance(ctx context.Context) ([]models.BalanceRow, error) {
	var rows []models.BalanceRow
	if err := s.selectRows(ctx, &rows, DatasetBalance, warehouseBalanceQuery, s.config.LookbackDays); err != nil {
		return nil, err
	}
	return rows, nil
}

// Plan implements Source.
func (s *WarehouseSource) Plan(ctx context.Context) ([]models.PlanEntry, error) {
	var rows []models.PlanEntry
	if err := s.selectRows(ctx, &rows, DatasetPlan, warehousePlanQuery); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *WarehouseSource) selectRows(ctx context.Context, dest any, dataset, query string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	sql := fmt.Sprintf(query, s.config.Schema, s.config.EventsSchema)

	start := time.Now()
	if err := s.db.SelectContext(ctx, dest, sql, args...); err != nil {
		return fmt.Errorf("failed to query %s: %w", dataset, err)
	}
	log.Debug().Str("source", s.Name()).Str("dataset", dataset).Dur("took", time.Since(start)).Msg("warehouse query")
	return nil
}

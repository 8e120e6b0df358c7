package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/internal/cache"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
)

// FileSource reads Parquet or CSV extracts from a directory through an
// in-memory DuckDB. For every dataset it prefers <name>.parquet and falls
// back to <name>.csv.
type FileSource struct {
	dir     string
	db      *sqlx.DB
	timeout time.Duration
}

var (
	_ Source        = (*FileSource)(nil)
	_ Fingerprinter = (*FileSource)(nil)
)

// FileOption configures a FileSource.
type FileOption func(*FileSource)

// WithFileTimeout bounds every extract query.
func WithFileTimeout(d time.Duration) FileOption {
	return func(s *FileSource) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewFileSource opens an in-memory DuckDB reading extracts from dir.
func NewFileSource(dir string, opts ...FileOption) (*FileSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("data dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data dir %s is not a directory", dir)
	}

	db, err := sqlx.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	s := &FileSource{dir: dir, db: db, timeout: 5 * time.Minute}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name implements Source.
func (s *FileSource) Name() string {
	return "files:" + s.dir
}

// Close implements Source.
func (s *FileSource) Close() error {
	return s.db.Close()
}

// Fingerprint implements Fingerprinter with a BLAKE3 hash of the extract file.
func (s *FileSource) Fingerprint(dataset string) (string, error) {
	path, _, err := s.resolve(dataset)
	if err != nil {
		return "", err
	}
	return cache.HashFile(path)
}

// resolve finds the extract for a dataset and returns its DuckDB reader call.
func (s *FileSource) resolve(dataset string) (string, string, error) {
	for _, ext := range []string{".parquet", ".csv"} {
		path := filepath.Join(s.dir, dataset+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if ext == ".parquet" {
			return path, fmt.Sprintf("read_parquet(%s)", quote(path)), nil
		}
		return path, fmt.Sprintf("read_csv_auto(%s, normalize_names = true)", quote(path)), nil
	}
	return "", "", fmt.Errorf("%w: %s in %s", ErrNotFound, dataset, s.dir)
}

// quote renders a SQL string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Progression implements Source. Each player counts once per event (and
// config), at the furthest position reached.
func (s *FileSource) Progression(ctx context.Context, kind models.EventKind) ([]models.ProgressionRow, error) {
	schema, ok := progressionSchemas[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
	}
	_, reader, err := s.resolve(schema.dataset)
	if err != nil {
		return nil, err
	}

	configExpr, configFilter := "''", ""
	if schema.configCol != "" {
		configExpr = fmt.Sprintf("CAST(%s AS VARCHAR)", schema.configCol)
		configFilter = fmt.Sprintf("AND %s IS NOT NULL", schema.configCol)
	}

	query := fmt.Sprintf(`
		WITH per_player AS (
			SELECT
				CAST(player_id AS VARCHAR) AS player_id,
				CAST(CAST(%[2]s AS DATE) AS TIMESTAMP) AS event_start,
				%[4]s AS config_name,
				MAX(TRY_CAST(%[3]s AS BIGINT)) AS last_position
			FROM %[1]s
			WHERE player_id IS NOT NULL
				AND %[2]s IS NOT NULL
				AND TRY_CAST(%[3]s AS BIGINT) IS NOT NULL
				%[5]s
			GROUP BY 1, 2, 3
		)
		SELECT event_start, last_position, config_name, COUNT(DISTINCT player_id) AS unique_players
		FROM per_player
		GROUP BY 1, 2, 3
		ORDER BY 1, 2, 3`,
		reader, schema.eventCol, schema.positionCol, configExpr, configFilter)

	var rows []models.ProgressionRow
	if err := s.selectRows(ctx, &rows, schema.dataset, query); err != nil {
		return nil, err
	}
	return rows, nil
}

// Balance implements Source.
func (s *FileSource) Balance(ctx context.Context) ([]models.BalanceRow, error) {
	_, reader, err := s.resolve(DatasetBalance)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			CAST(CAST(promo_date AS DATE) AS TIMESTAMP) AS promo_date,
			CAST(player_id AS VARCHAR) AS player_id,
			COALESCE(TRY_CAST(is_payer AS BOOLEAN), false) AS is_payer,
			TRY_CAST(energy_balance_bop AS DOUBLE) AS energy_balance_bop,
			TRY_CAST(energy_balance_eop AS DOUBLE) AS energy_balance_eop,
			TRY_CAST(total_energy_out AS DOUBLE) AS total_energy_out
		FROM %s
		WHERE promo_date IS NOT NULL AND player_id IS NOT NULL
		ORDER BY 1, 2`, reader)

	var rows []models.BalanceRow
	if err := s.selectRows(ctx, &rows, DatasetBalance, query); err != nil {
		return nil, err
	}
	return rows, nil
}

// Plan implements Source. The plan is a spreadsheet export whose
// "Promo Date" and "Main Story" headers normalize to promo_date and main_story.
func (s *FileSource) Plan(ctx context.Context) ([]models.PlanEntry, error) {
	_, reader, err := s.resolve(DatasetPlan)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			CAST(TRY_CAST(promo_date AS DATE) AS TIMESTAMP) AS promo_date,
			TRIM(COALESCE(CAST(main_story AS VARCHAR), '')) AS main_story
		FROM %s
		WHERE TRY_CAST(promo_date AS DATE) IS NOT NULL
		ORDER BY 1`, reader)

	var rows []models.PlanEntry
	if err := s.selectRows(ctx, &rows, DatasetPlan, query); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *FileSource) selectRows(ctx context.Context, dest any, dataset, query string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.db.SelectContext(ctx, dest, query); err != nil {
		return fmt.Errorf("failed to read %s: %w", dataset, err)
	}
	log.Debug().Str("source", s.Name()).Str("dataset", dataset).Dur("took", time.Since(start)).Msg("extract read")
	return nil
}

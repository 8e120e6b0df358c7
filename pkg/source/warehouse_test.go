package source

import (
	"fmt"
	"strings"
	"testing"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestWarehouseConfigValidate(t *testing.T) {
	cfg := DefaultWarehouseConfig()
	assert.Error(t, cfg.Validate(), "DSN required")

	cfg.DSN = "postgres://analytics@localhost/economy"
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.Schema = "dwh; DROP TABLE x"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.LookbackDays = 0
	assert.Error(t, bad.Validate())

	qualified := cfg
	qualified.Schema = "fish_of_fortune_prod.dwh"
	assert.NoError(t, qualified.Validate())
}

func TestWarehouseQueriesRender(t *testing.T) {
	queries := []string{warehouseBalanceQuery}
	for _, kind := range models.EventKinds {
		q, ok := warehouseProgressionQueries[kind]
		assert.True(t, ok, "query for %s", kind)
		queries = append(queries, q)
	}

	for _, q := range queries {
		sql := fmt.Sprintf(q, "dwh", "base")
		assert.NotContains(t, sql, "%!")
		assert.NotContains(t, sql, "%[")
		assert.Contains(t, sql, "$1")
		assert.True(t, strings.Contains(sql, "dwh."), "modelled schema substituted")
	}
}

func TestWarehousePlanQueryReadsWholePlan(t *testing.T) {
	sql := fmt.Sprintf(warehousePlanQuery, "dwh", "base")
	assert.Contains(t, sql, "dwh.monetization_plan")
	assert.NotContains(t, sql, "$1", "plan is not limited to the lookback window")
	assert.NotContains(t, sql, "WHERE")
}

func TestProgressionDataset(t *testing.T) {
	name, err := ProgressionDataset(models.EventPuzzle)
	assert.NoError(t, err)
	assert.Equal(t, "puzzle_progression", name)

	_, err = ProgressionDataset("trail")
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

package source

import "github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"

// Warehouse queries. %[1]s is the modelled schema, %[2]s the raw events
// schema. $1 is the lookback window in days for every query except the
// plan, which is read whole so story debuts keep their real first day.

const testUsersFilter = `player_id NOT IN (
	SELECT player_id FROM %[1]s.dim_test_users WHERE is_player_tests = 1
)`

var warehouseProgressionQueries = map[models.EventKind]string{
	models.EventMissionBar: `
		WITH progression AS (
			SELECT player_id, calendar_id, MAX(bar_id) AS last_position
			FROM %[1]s.fact_missionbar_progression
			WHERE event_timestamp >= CURRENT_DATE - $1 * INTERVAL '1 day'
				AND event_name = 'MissionBar_Bar_Claimed'
				AND ` + testUsersFilter + `
			GROUP BY player_id, calendar_id
		),
		calendar AS (
			SELECT DISTINCT ON (calendar_id) calendar_id, CAST(starts_at AS DATE) AS event_start
			FROM %[1]s.v_dim_calendar_last_state
			WHERE event_name = 'MissionBar'
				AND starts_at >= CURRENT_DATE - $1 * INTERVAL '1 day'
				AND starts_at < CURRENT_TIMESTAMP
			ORDER BY calendar_id, starts_at DESC
		),
		per_player AS (
			SELECT p.player_id, c.event_start, MAX(p.last_position) AS last_position
			FROM progression p
			JOIN calendar c ON p.calendar_id = c.calendar_id
			GROUP BY p.player_id, c.event_start
		)
		SELECT CAST(event_start AS TIMESTAMP) AS event_start, last_position,
			'' AS config_name, COUNT(DISTINCT player_id) AS unique_players
		FROM per_player
		GROUP BY 1, 2, 3
		ORDER BY 1, 2`,

	models.EventDice: `
		WITH calendar AS (
			SELECT calendar_id, starts_at
			FROM %[1]s.v_dim_calendar_last_state
			WHERE event_name ILIKE '%%ProgressingMiniGame%%'
				AND alternative_group_name_internal ILIKE '%%dice%%'
				AND starts_at >= CURRENT_DATE - $1 * INTERVAL '1 day'
				AND starts_at < CURRENT_TIMESTAMP
				AND CAST(include_segment_groups AS TEXT) NOT ILIKE '%%DSI_0-1%%'
				AND CAST(include_segment_groups AS TEXT) NOT ILIKE '%%DSI_2-3%%'
		),
		levels AS (
			SELECT player_id, calendar_id,
				CASE WHEN minigame_level_number = 1 THEN 7 ELSE minigame_level_number - 1 END AS level
			FROM %[2]s.prs_events
			WHERE event_name = 'Minigame_Levelup'
				AND minigame_type ILIKE 'dice'
				AND minigame_config_display_name NOT ILIKE '%%dsi%%'
				AND event_date >= CURRENT_DATE - $1 * INTERVAL '1 day'
				AND event_date < CURRENT_TIMESTAMP
				AND ` + testUsersFilter + `
		),
		per_player AS (
			SELECT l.player_id, CAST(c.starts_at AS DATE) AS event_start, MAX(l.level) AS last_position
			FROM levels l
			JOIN calendar c ON l.calendar_id = c.calendar_id
			GROUP BY 1, 2
		)
		SELECT CAST(event_start AS TIMESTAMP) AS event_start, last_position,
			'' AS config_name, COUNT(DISTINCT player_id) AS unique_players
		FROM per_player
		GROUP BY 1, 2, 3
		ORDER BY 1, 2`,

	models.EventPuzzle: `
		WITH calendar AS (
			SELECT calendar_id, starts_at
			FROM %[1]s.v_dim_calendar_last_state
			WHERE event_name ILIKE '%%Puzzle%%'
				AND starts_at >= CURRENT_DATE - $1 * INTERVAL '1 day'
				AND starts_at < CURRENT_DATE
		),
		per_player AS (
			SELECT player_id, calendar_id, puzzle_config_display_name,
				MAX(puzzle_level_number) - 1 AS levels_completed
			FROM %[2]s.prs_events
			WHERE event_name = 'Puzzle_Levelup'
				AND event_date >= CURRENT_DATE - $1 * INTERVAL '1 day'
				AND event_date < CURRENT_DATE
				AND puzzle_config_display_name IS NOT NULL
				AND ` + testUsersFilter + `
			GROUP BY 1, 2, 3
		)
		SELECT CAST(CAST(c.starts_at AS DATE) AS TIMESTAMP) AS event_start,
			p.levels_completed AS last_position,
			p.puzzle_config_display_name AS config_name,
			COUNT(DISTINCT p.player_id) AS unique_players
		FROM per_player p
		JOIN calendar c ON p.calendar_id = c.calendar_id
		GROUP BY 1, 2, 3
		ORDER BY 1, 2, 3`,
}

const warehouseBalanceQuery = `
	SELECT
		CAST(CAST(max_event_timestamp AS DATE) AS TIMESTAMP) AS promo_date,
		CAST(player_id AS TEXT) AS player_id,
		COALESCE(is_payer = 1, false) AS is_payer,
		CAST(energy_balance_bop AS DOUBLE PRECISION) AS energy_balance_bop,
		CAST(energy_balance_eop AS DOUBLE PRECISION) AS energy_balance_eop,
		CAST(total_energy_out AS DOUBLE PRECISION) AS total_energy_out
	FROM %[1]s.fact_daily_activities
	WHERE event_date >= CURRENT_DATE - $1 * INTERVAL '1 day'
		AND event_date < CURRENT_DATE - 1
		AND ` + testUsersFilter + `
	ORDER BY 1, 2`

const warehousePlanQuery = `
	SELECT CAST(promo_date AS TIMESTAMP) AS promo_date, TRIM(COALESCE(main_story, '')) AS main_story
	FROM %[1]s.monetization_plan
	ORDER BY 1`

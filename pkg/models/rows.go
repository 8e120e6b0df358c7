package models

import "time"

// ProgressionRow is the number of unique players whose last reached
// position in one event instance was Position.
type ProgressionRow struct {
	Event    time.Time `json:"event" db:"event_start"`
	Position int       `json:"position" db:"last_position"`
	Players  int64     `json:"players" db:"unique_players"`
	// Config is only populated for puzzle events.
	Config string `json:"config,omitempty" db:"config_name"`
}

// BalanceRow is one player's energy balance for one promo day.
// Nil metrics are missing and skipped by quantile computations.
type BalanceRow struct {
	PromoDate time.Time `json:"promo_date" db:"promo_date"`
	PlayerID  string    `json:"player_id" db:"player_id"`
	IsPayer   bool      `json:"is_payer" db:"is_payer"`
	EnergyBOP *float64  `json:"energy_balance_bop,omitempty" db:"energy_balance_bop"`
	EnergyEOP *float64  `json:"energy_balance_eop,omitempty" db:"energy_balance_eop"`
	EnergyOut *float64  `json:"total_energy_out,omitempty" db:"total_energy_out"`
}

// Value returns the row's value for m, or false when missing.
func (r BalanceRow) Value(m Metric) (float64, bool) {
	var v *float64
	switch m {
	case MetricEnergyBOP:
		v = r.EnergyBOP
	case MetricEnergyEOP:
		v = r.EnergyEOP
	case MetricEnergyOut:
		v = r.EnergyOut
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// PlanEntry is one day of the monetization plan.
type PlanEntry struct {
	PromoDate time.Time `json:"promo_date" db:"promo_date"`
	MainStory string    `json:"main_story" db:"main_story"`
}

package models

import (
	"fmt"
	"strings"
	"time"
)

// EventKind identifies a progression event family.
type EventKind string

const (
	EventMissionBar EventKind = "missionbar"
	EventDice       EventKind = "dice"
	EventPuzzle     EventKind = "puzzle"
)

// EventKinds lists every supported event family.
var EventKinds = []EventKind{EventMissionBar, EventDice, EventPuzzle}

// ParseEventKind converts a string to an EventKind.
func ParseEventKind(s string) (EventKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "missionbar", "mb", "mission_bar":
		return EventMissionBar, nil
	case "dice":
		return EventDice, nil
	case "puzzle":
		return EventPuzzle, nil
	}
	return "", fmt.Errorf("unknown event %q (want missionbar, dice or puzzle)", s)
}

// PayerFilter selects players by payer status.
type PayerFilter string

const (
	PayerAll      PayerFilter = "all"
	PayerOnly     PayerFilter = "payer"
	PayerNonPayer PayerFilter = "nonpayer"
)

// ParsePayerFilter converts a string to a PayerFilter. "1" and "0" are
// accepted for payer and non-payer.
func ParsePayerFilter(s string) (PayerFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return PayerAll, nil
	case "payer", "payers", "1":
		return PayerOnly, nil
	case "nonpayer", "non-payer", "nonpayers", "0":
		return PayerNonPayer, nil
	}
	return "", fmt.Errorf("unknown payer filter %q (want all, payer or nonpayer)", s)
}

// Match reports whether a player with the given payer status passes the filter.
func (p PayerFilter) Match(isPayer bool) bool {
	switch p {
	case PayerOnly:
		return isPayer
	case PayerNonPayer:
		return !isPayer
	default:
		return true
	}
}

// Metric names a per-player balance column.
type Metric string

const (
	MetricEnergyBOP Metric = "energy_balance_bop"
	MetricEnergyEOP Metric = "energy_balance_eop"
	MetricEnergyOut Metric = "total_energy_out"
)

// Metrics lists every supported balance metric.
var Metrics = []Metric{MetricEnergyBOP, MetricEnergyEOP, MetricEnergyOut}

// ParseMetric converts a string to a Metric.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Metrics {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// DateLayout is the layout for dates on the command line and in reports.
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive day window. A zero bound is open.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseDateRange parses YYYY-MM-DD bounds. Empty strings leave a bound open.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	var err error
	if start != "" {
		if r.Start, err = time.Parse(DateLayout, start); err != nil {
			return DateRange{}, fmt.Errorf("invalid start date %q: %w", start, err)
		}
	}
	if end != "" {
		if r.End, err = time.Parse(DateLayout, end); err != nil {
			return DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
		}
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return DateRange{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return r, nil
}

// Contains reports whether t's calendar day falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	if !r.Start.IsZero() && d.Before(Day(r.Start)) {
		return false
	}
	if !r.End.IsZero() && d.After(Day(r.End)) {
		return false
	}
	return true
}

// String renders the range for report titles.
func (r DateRange) String() string {
	start, end := "…", "…"
	if !r.Start.IsZero() {
		start = r.Start.Format(DateLayout)
	}
	if !r.End.IsZero() {
		end = r.End.Format(DateLayout)
	}
	return start + " to " + end
}

// Title returns the display name used in report headings.
func (k EventKind) Title() string {
	switch k {
	case EventMissionBar:
		return "MissionBar"
	case EventDice:
		return "Dice"
	case EventPuzzle:
		return "Puzzle"
	}
	return string(k)
}

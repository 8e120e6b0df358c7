package output

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/percentile"
)

// PercentileTable lays out a weighted percentile series with one row per
// event and one column per threshold.
func PercentileTable(s models.PercentileSeries) *Table {
	headers := []string{"Event", "Players"}
	for _, q := range s.Thresholds {
		headers = append(headers, percentile.Label(q))
	}

	rows := make([][]string, 0, len(s.Points))
	for _, p := range s.Points {
		row := []string{p.Event.Format(models.DateLayout), strconv.FormatInt(p.Players, 10)}
		for _, tv := range p.Percentiles {
			row = append(row, strconv.Itoa(tv.Value))
		}
		rows = append(rows, row)
	}

	var footer []string
	if len(rows) > 0 {
		footer = append([]string{"Events", strconv.Itoa(len(rows))}, make([]string, len(s.Thresholds))...)
	}

	title := fmt.Sprintf("%s weighted last-position percentiles (%s)", s.Kind.Title(), s.Window)
	return NewTable(title, headers, rows, footer, s)
}

// DistributionTable pivots a distribution into one row per event and one
// column per last position, each cell the percentage of the event's players.
func DistributionTable(d models.Distribution) *Table {
	headers := []string{"Event", "Players"}
	for _, pos := range d.Positions {
		headers = append(headers, strconv.Itoa(pos))
	}

	rows := make([][]string, 0, len(d.Events))
	for _, e := range d.Events {
		row := []string{e.Event.Format(models.DateLayout), strconv.FormatInt(e.Total, 10)}
		for _, pos := range d.Positions {
			row = append(row, formatPercent(e.Percent(pos)))
		}
		rows = append(rows, row)
	}

	title := fmt.Sprintf("%s last-position distribution (events with more than %d players)", d.Kind.Title(), d.MinPlayers)
	return NewTable(title, headers, rows, nil, d)
}

// QuantileTable lays out per-day balance quantiles with one column per
// threshold.
func QuantileTable(s models.QuantileSeries) *Table {
	headers := []string{"Date", "Players", "Mean", "Std dev"}
	for _, q := range s.Thresholds {
		headers = append(headers, "p"+percentile.ShortLabel(q))
	}

	rows := make([][]string, 0, len(s.Points))
	for _, p := range s.Points {
		row := []string{
			p.Date.Format(models.DateLayout),
			strconv.Itoa(p.Players),
			formatFloat(p.Mean),
			formatFloat(p.StdDev),
		}
		for _, qv := range p.Quantiles {
			row = append(row, formatFloat(qv.Value))
		}
		rows = append(rows, row)
	}

	title := fmt.Sprintf("%s quantiles, %s players (%s)", s.Metric, s.Payer, s.Window)
	return NewTable(title, headers, rows, nil, s)
}

// CampaignSections renders campaign starts and, when present, story debuts.
func CampaignSections(r models.CampaignReport) *Report {
	starts := make([][]string, 0, len(r.Starts))
	for _, s := range r.Starts {
		starts = append(starts, []string{s.Date.Format(models.DateLayout), s.Story})
	}
	sections := []Renderable{
		NewTable("Campaign starts", []string{"Date", "Main story"}, starts, nil, r.Starts),
	}

	if len(r.Debuts) > 0 {
		debuts := make([][]string, 0, len(r.Debuts))
		for _, d := range r.Debuts {
			debuts = append(debuts, []string{d.Date.Format(models.DateLayout), d.Label})
		}
		sections = append(sections, NewTable("Story debuts", []string{"Date", "Stories"}, debuts, nil, r.Debuts))
	}

	return &Report{
		Title:    fmt.Sprintf("Campaigns (%s)", r.Window),
		Sections: sections,
		Data:     r,
	}
}

// CatalogReport lists puzzle configs grouped by the highest level any
// player reached, lowest level first.
func CatalogReport(catalog map[int][]string) *Report {
	levels := slices.Sorted(maps.Keys(catalog))
	sections := make([]Renderable, 0, len(levels))
	for _, level := range levels {
		sections = append(sections, &Section{
			Title: fmt.Sprintf("Max level %d", level),
			Items: catalog[level],
		})
	}
	return &Report{
		Title:    "Puzzle configs by max level reached",
		Sections: sections,
		Data:     catalog,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatPercent(p float64) string {
	if p == 0 {
		return "-"
	}
	s := strconv.FormatFloat(p, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + "%"
}

// Package campaign derives campaign markers from the monetization plan.
package campaign

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/analyzer"
	"github.com/guylamdan00/fof-macro-economy-analysis-oct25/pkg/models"
)

// DebutSeparator joins stories that first appear on the same day.
const DebutSeparator = " • "

// Analyzer builds campaign start and story debut markers.
type Analyzer struct {
	window models.DateRange
	debuts bool
}

var _ analyzer.RowAnalyzer[models.PlanEntry, *models.CampaignReport] = (*Analyzer)(nil)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWindow restricts markers to a date window.
func WithWindow(window models.DateRange) Option {
	return func(a *Analyzer) {
		a.window = window
	}
}

// WithDebuts also reports story first appearances.
func WithDebuts(enabled bool) Option {
	return func(a *Analyzer) {
		a.debuts = enabled
	}
}

// New creates a campaign analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns the markers that fall inside the window.
func (a *Analyzer) Analyze(ctx context.Context, plan []models.PlanEntry) (*models.CampaignReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &models.CampaignReport{Window: a.window}
	for _, s := range Starts(plan) {
		if a.window.Contains(s.Date) {
			report.Starts = append(report.Starts, s)
		}
	}
	if a.debuts {
		for _, d := range FirstAppearances(plan) {
			if a.window.Contains(d.Date) {
				report.Debuts = append(report.Debuts, d)
			}
		}
	}
	return report, nil
}

// Starts returns the days whose main story is set and differs from the
// previous plan day's. Only the first entry per day counts.
func Starts(plan []models.PlanEntry) []models.CampaignStart {
	seen := make(map[time.Time]bool)
	days := make([]models.PlanEntry, 0, len(plan))
	for _, e := range plan {
		d := models.Day(e.PromoDate)
		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, models.PlanEntry{PromoDate: d, MainStory: strings.TrimSpace(e.MainStory)})
	}
	slices.SortStableFunc(days, func(x, y models.PlanEntry) int {
		return x.PromoDate.Compare(y.PromoDate)
	})

	var starts []models.CampaignStart
	prev := ""
	for _, e := range days {
		if e.MainStory != "" && e.MainStory != prev {
			starts = append(starts, models.CampaignStart{Date: e.PromoDate, Story: e.MainStory})
		}
		prev = e.MainStory
	}
	return starts
}

// FirstAppearances returns, per day, the stories seen for the first time in
// the whole plan, sorted by day and then story.
func FirstAppearances(plan []models.PlanEntry) []models.StoryDebut {
	first := make(map[string]time.Time)
	for _, e := range plan {
		story := strings.TrimSpace(e.MainStory)
		if story == "" {
			continue
		}
		d := models.Day(e.PromoDate)
		if cur, ok := first[story]; !ok || d.Before(cur) {
			first[story] = d
		}
	}

	byDay := make(map[time.Time][]string)
	for story, d := range first {
		byDay[d] = append(byDay[d], story)
	}

	debuts := make([]models.StoryDebut, 0, len(byDay))
	for _, d := range slices.SortedFunc(maps.Keys(byDay), func(x, y time.Time) int { return x.Compare(y) }) {
		stories := byDay[d]
		slices.Sort(stories)
		debuts = append(debuts, models.StoryDebut{
			Date:    d,
			Stories: stories,
			Label:   strings.Join(stories, DebutSeparator),
		})
	}
	return debuts
}

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunSummary describes one completed report run.
type RunSummary struct {
	RunID        string        `json:"run_id"`
	From         time.Time     `json:"from"`
	To           time.Time     `json:"to"`
	Rows         int           `json:"rows"`
	Regions      int           `json:"regions"`
	WeekOverWeek ComparisonRow `json:"week_over_week"`
	NationalRate float64       `json:"national_rate_per_10000"`
	Artifacts    []string      `json:"artifacts"`
	GeneratedAt  time.Time     `json:"generated_at"`
}

// NewRunSummary stamps a summary with a fresh run ID and the current time.
func NewRunSummary(records []DailyRecord, week WeekComparison, rates PopulationComparison, artifacts []string) RunSummary {
	from, to, _ := Span(records)
	return RunSummary{
		RunID:        uuid.NewString(),
		From:         from,
		To:           to,
		Rows:         len(records),
		Regions:      len(ByRegion(records)),
		WeekOverWeek: week.National,
		NationalRate: rates.NationalRate,
		Artifacts:    artifacts,
		GeneratedAt:  clock.Now().UTC(),
	}
}

// Description is the one-line period summary printed at the end of a run.
func (s RunSummary) Description() string {
	return fmt.Sprintf("From %s to %s", s.From.Format(time.DateOnly), s.To.Format(time.DateOnly))
}

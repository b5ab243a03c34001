package pipeline

import (
	"github.com/jotavaladouro/covid19/internal/domain"
	"github.com/jotavaladouro/covid19/internal/render"
)

const (
	referenceLabel = "Mean Spain"
	quadrantTitle  = "CCAA comparison. % Variation hospitalized last week vs Hospitalized by 10000"
)

// renderCharts draws the nine dashboard charts in publish order.
func (p *Pipeline) renderCharts(records []domain.DailyRecord, week domain.WeekComparison, rates domain.PopulationComparison) error {
	a := p.cfg.Artifacts
	filter := domain.SpikeFilter{Enabled: p.cfg.SpikeSuppression, Threshold: p.cfg.SpikeThreshold}

	regionName := domain.DisplayName(p.cfg.DesignatedRegion)
	region := domain.SeriesOf(domain.ForRegion(records, p.cfg.DesignatedRegion))
	if len(region) == 0 {
		p.logger.Warn("designated region has no rows", "region", p.cfg.DesignatedRegion)
	}
	national := domain.National(records)

	byRegion := domain.ByRegion(records)
	counts := make([]render.Panel, len(byRegion))
	changes := make([]render.Panel, len(byRegion))
	for i, rs := range byRegion {
		name := domain.DisplayName(rs.Region)
		counts[i] = render.Panel{Title: name, Points: render.FromSeries(rs.Series)}
		changes[i] = render.Panel{Title: name, Points: render.FromChanges(domain.Variation(rs.Series, filter))}
	}

	r := p.stages.Renderer
	steps := []func() error{
		func() error {
			return r.Line(a.HospitalizedRegion, "Hospitalized "+regionName, render.FromSeries(region))
		},
		func() error {
			return r.Line(a.HospitalizedNational, "Hospitalized "+domain.NationalName, render.FromSeries(national))
		},
		func() error {
			return r.Line(a.VariationNational, "Variation hospitalized by covid19 "+domain.NationalName,
				render.FromChanges(domain.Variation(national, filter)))
		},
		func() error {
			return r.Line(a.VariationRegion, "Variation hospitalized by covid19 "+regionName,
				render.FromChanges(domain.Variation(region, filter)))
		},
		func() error { return r.Grid(a.VariationByRegion, "Variation by CA", changes) },
		func() error { return r.Grid(a.HospitalizedByRegion, "Hospitalized by CA", counts) },
		func() error {
			return r.Bars(a.HospitalizedByPopulation, "Hospitalized by 10000 persons",
				rateBars(rates), rates.NationalRate, referenceLabel)
		},
		func() error {
			return r.Bars(a.VariationWeekly, "Weekly variation hospitalized (%)",
				weeklyBars(week), percentOrZero(week.National.PercentDiff), referenceLabel)
		},
		func() error {
			return r.Quadrant(a.Quadrants, quadrantTitle, quadrantPoints(week, rates),
				"variation (%)", "hospitalized by 10000", rates.NationalRate)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	p.logger.Info("charts rendered", "count", len(steps), "dir", p.cfg.WorkDir)
	return nil
}

func rateBars(rates domain.PopulationComparison) []render.Bar {
	bars := make([]render.Bar, len(rates.Rows))
	for i, row := range rates.Rows {
		bars[i] = render.Bar{Label: row.Name, Value: row.RatePer10000, Defined: true}
	}
	return bars
}

// weeklyBars keeps a slot for regions whose percentage is undefined.
func weeklyBars(week domain.WeekComparison) []render.Bar {
	bars := make([]render.Bar, len(week.Rows))
	for i, row := range week.Rows {
		bars[i] = render.Bar{Label: row.Name, Value: percentOrZero(row.PercentDiff), Defined: row.PercentDiff != nil}
	}
	return bars
}

// quadrantPoints pairs each region's weekly percentage with its population
// rate. Regions missing either value are left out.
func quadrantPoints(week domain.WeekComparison, rates domain.PopulationComparison) []render.Labeled {
	rate := make(map[string]float64, len(rates.Rows))
	for _, row := range rates.Rows {
		rate[row.Region] = row.RatePer10000
	}
	var pts []render.Labeled
	for _, row := range week.Rows {
		y, ok := rate[row.Region]
		if !ok || row.PercentDiff == nil {
			continue
		}
		pts = append(pts, render.Labeled{Label: row.Name, X: *row.PercentDiff, Y: y})
	}
	return pts
}

func percentOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

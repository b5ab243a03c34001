package domain

import (
	"errors"
	"time"
)

// ErrNoRecords is returned by comparisons given an empty record set.
var ErrNoRecords = errors.New("no records")

// WeekComparison is the result of [WeekOverWeek].
type WeekComparison struct {
	Latest   time.Time
	Prior    time.Time
	Rows     []ComparisonRow
	National ComparisonRow
}

// WeekOverWeek compares the latest date in records with the date days
// earlier. Only regions present on both dates are compared. The national row
// sums those regions on each date before differencing.
func WeekOverWeek(records []DailyRecord, days int) (WeekComparison, error) {
	_, latest, ok := Span(records)
	if !ok {
		return WeekComparison{}, ErrNoRecords
	}
	prior := latest.AddDate(0, 0, -days)

	order, current := totalsOn(records, latest)
	_, previous := totalsOn(records, prior)

	wc := WeekComparison{Latest: latest, Prior: prior}
	var sumCurrent, sumPrior int
	for _, code := range order {
		before, ok := previous[code]
		if !ok {
			continue
		}
		wc.Rows = append(wc.Rows, compare(code, DisplayName(code), current[code], before))
		sumCurrent += current[code]
		sumPrior += before
	}
	wc.National = compare(NationalCode, NationalName, sumCurrent, sumPrior)
	return wc, nil
}

func compare(code, name string, current, prior int) ComparisonRow {
	row := ComparisonRow{
		Region:       code,
		Name:         name,
		Current:      current,
		Prior:        prior,
		AbsoluteDiff: current - prior,
	}
	if prior != 0 {
		pct := float64(row.AbsoluteDiff) * 100 / float64(prior)
		row.PercentDiff = &pct
	}
	return row
}

// PopulationComparison is the result of [PopulationRates].
type PopulationComparison struct {
	Date         time.Time
	Rows         []PopulationRateRow
	NationalRate float64
}

// PopulationRates joins the latest counts with the population table and
// normalizes them per 10,000 inhabitants. Regions without a population row
// are left out. The national rate is the joined counts' sum over the joined
// populations' sum.
func PopulationRates(records []DailyRecord, populations []RegionPopulation) (PopulationComparison, error) {
	_, latest, ok := Span(records)
	if !ok {
		return PopulationComparison{}, ErrNoRecords
	}

	pops := make(map[string]int, len(populations))
	for _, p := range populations {
		if _, dup := pops[p.Region]; !dup {
			pops[p.Region] = p.Total
		}
	}

	order, totals := totalsOn(records, latest)
	pc := PopulationComparison{Date: latest}
	var sumCount, sumPop int
	for _, code := range order {
		pop, ok := pops[code]
		if !ok || pop <= 0 {
			continue
		}
		count := totals[code]
		pc.Rows = append(pc.Rows, PopulationRateRow{
			Region:       code,
			Name:         DisplayName(code),
			Hospitalized: count,
			Population:   pop,
			RatePer10000: ratePer10000(count, pop),
		})
		sumCount += count
		sumPop += pop
	}
	if sumPop > 0 {
		pc.NationalRate = ratePer10000(sumCount, sumPop)
	}
	for i := range pc.Rows {
		pc.Rows[i].DeltaVsNational = pc.Rows[i].RatePer10000 - pc.NationalRate
	}
	return pc, nil
}

func ratePer10000(count, population int) float64 {
	return float64(count) * 10000 / float64(population)
}

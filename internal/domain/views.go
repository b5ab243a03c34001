package domain

import (
	"slices"
	"time"
)

// National sums every region per date, ascending by date.
func National(records []DailyRecord) Series {
	sums := make(map[time.Time]int)
	for _, r := range records {
		sums[r.Date] += r.Hospitalized
	}

	out := make(Series, 0, len(sums))
	for d, v := range sums {
		out = append(out, Point{Date: d, Value: v})
	}
	slices.SortFunc(out, func(a, b Point) int { return a.Date.Compare(b.Date) })
	return out
}

// ForRegion returns the rows tagged with code, in source order.
func ForRegion(records []DailyRecord, code string) []DailyRecord {
	var out []DailyRecord
	for _, r := range records {
		if r.Region == code {
			out = append(out, r)
		}
	}
	return out
}

// SeriesOf converts rows of a single region into a series ordered by date.
func SeriesOf(records []DailyRecord) Series {
	out := make(Series, len(records))
	for i, r := range records {
		out[i] = Point{Date: r.Date, Value: r.Hospitalized}
	}
	sortByDate(out)
	return out
}

// ByRegion splits rows into one series per region. Regions keep their
// first-appearance order and each series is ordered by date.
func ByRegion(records []DailyRecord) []RegionSeries {
	var out []RegionSeries
	pos := make(map[string]int)
	for _, r := range records {
		i, ok := pos[r.Region]
		if !ok {
			i = len(out)
			pos[r.Region] = i
			out = append(out, RegionSeries{Region: r.Region})
		}
		out[i].Series = append(out[i].Series, Point{Date: r.Date, Value: r.Hospitalized})
	}
	for i := range out {
		sortByDate(out[i].Series)
	}
	return out
}

// sortByDate is stable so rows sharing a date keep source order.
func sortByDate(s Series) {
	slices.SortStableFunc(s, func(a, b Point) int { return a.Date.Compare(b.Date) })
}

// Span returns the earliest and latest dates present. ok is false for no rows.
func Span(records []DailyRecord) (from, to time.Time, ok bool) {
	if len(records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	from, to = records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(from) {
			from = r.Date
		}
		if r.Date.After(to) {
			to = r.Date
		}
	}
	return from, to, true
}

// totalsOn sums each region's count on date d, regions in first-appearance order.
func totalsOn(records []DailyRecord, d time.Time) ([]string, map[string]int) {
	var order []string
	totals := make(map[string]int)
	for _, r := range records {
		if !r.Date.Equal(d) {
			continue
		}
		if _, ok := totals[r.Region]; !ok {
			order = append(order, r.Region)
		}
		totals[r.Region] += r.Hospitalized
	}
	return order, totals
}

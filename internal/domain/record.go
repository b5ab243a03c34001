package domain

import "time"

// NationalCode tags comparison rows that aggregate every region.
const NationalCode = "ES"

// NationalName is the display name for [NationalCode].
const NationalName = "Spain"

// DailyRecord is one cleaned row of the source snapshot.
type DailyRecord struct {
	Region       string    `json:"region"`
	Date         time.Time `json:"date"`
	Hospitalized int       `json:"hospitalized"`
}

// RegionPopulation is one resolved row of the population reference table.
type RegionPopulation struct {
	Region      string `json:"region"`
	Description string `json:"description"`
	Total       int    `json:"total"`
}

// Point is a single dated value.
type Point struct {
	Date  time.Time
	Value int
}

// Series is a date-ordered list of points.
type Series []Point

// RegionSeries pairs a region code with its series.
type RegionSeries struct {
	Region string
	Series Series
}

// Change is one entry of a first-difference series. Defined is false where
// no prior value exists.
type Change struct {
	Date    time.Time
	Value   int
	Defined bool
}

// ComparisonRow compares a region's count on two dates.
type ComparisonRow struct {
	Region       string   `json:"region"`
	Name         string   `json:"name"`
	Current      int      `json:"current"`
	Prior        int      `json:"prior"`
	AbsoluteDiff int      `json:"absolute_diff"`
	PercentDiff  *float64 `json:"percent_diff"` // nil when Prior is zero
}

// PopulationRateRow normalizes a region's latest count by its population.
type PopulationRateRow struct {
	Region          string  `json:"region"`
	Name            string  `json:"name"`
	Hospitalized    int     `json:"hospitalized"`
	Population      int     `json:"population"`
	RatePer10000    float64 `json:"rate_per_10000"`
	DeltaVsNational float64 `json:"delta_vs_national"`
}

// Package report prints the comparison tables and writes them to a workbook.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/jotavaladouro/covid19/internal/domain"
)

// Report gathers what the console summary and the workbook show.
type Report struct {
	From  time.Time
	To    time.Time
	Week  domain.WeekComparison
	Rates domain.PopulationComparison
}

// New builds a Report for records.
func New(records []domain.DailyRecord, week domain.WeekComparison, rates domain.PopulationComparison) Report {
	from, to, _ := domain.Span(records)
	return Report{From: from, To: to, Week: week, Rates: rates}
}

// Description is the one-line period summary.
func (r Report) Description() string {
	return fmt.Sprintf("From %s to %s", r.From.Format(time.DateOnly), r.To.Format(time.DateOnly))
}

var (
	weekHeader = []string{"Region", "Name", "Current", "Prior", "Diff", "Diff %"}
	rateHeader = []string{"Region", "Name", "Hospitalized", "Population", "Per 10000", "Vs Spain"}
)

// PrintSummary writes the period line and both comparison tables to w.
func PrintSummary(w io.Writer, r Report) error {
	heading := color.New(color.FgCyan, color.Bold)

	if _, err := heading.Fprintln(w, r.Description()); err != nil {
		return err
	}

	heading.Fprintf(w, "\nWeek over week (%s vs %s)\n", r.Week.Latest.Format(time.DateOnly), r.Week.Prior.Format(time.DateOnly))
	if err := renderTable(w, weekHeader, weekRows(r.Week)); err != nil {
		return fmt.Errorf("week table: %w", err)
	}

	heading.Fprintf(w, "\nHospitalized per 10000 persons (%s)\n", r.Rates.Date.Format(time.DateOnly))
	if err := renderTable(w, rateHeader, rateRows(r.Rates)); err != nil {
		return fmt.Errorf("population table: %w", err)
	}
	_, err := fmt.Fprintf(w, "Spain: %s per 10000\n", formatFloat(r.Rates.NationalRate))
	return err
}

func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignRight},
			},
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{Borders: tw.BorderNone}),
	)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// weekRows lists every region followed by the national row.
func weekRows(wc domain.WeekComparison) [][]string {
	rows := make([][]string, 0, len(wc.Rows)+1)
	for _, row := range append(append([]domain.ComparisonRow{}, wc.Rows...), wc.National) {
		rows = append(rows, []string{
			row.Region,
			row.Name,
			strconv.Itoa(row.Current),
			strconv.Itoa(row.Prior),
			strconv.Itoa(row.AbsoluteDiff),
			formatPercent(row.PercentDiff),
		})
	}
	return rows
}

func rateRows(pc domain.PopulationComparison) [][]string {
	rows := make([][]string, 0, len(pc.Rows))
	for _, row := range pc.Rows {
		rows = append(rows, []string{
			row.Region,
			row.Name,
			strconv.Itoa(row.Hospitalized),
			strconv.Itoa(row.Population),
			formatFloat(row.RatePer10000),
			formatFloat(row.DeltaVsNational),
		})
	}
	return rows
}

func formatPercent(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return formatFloat(*p)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

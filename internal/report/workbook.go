package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jotavaladouro/covid19/internal/domain"
)

const (
	summarySheet = "Summary"
	weekSheet    = "WeekOverWeek"
	rateSheet    = "Population"
)

// WriteWorkbook saves the report as an xlsx file at path with one sheet
// per table plus a summary sheet.
func WriteWorkbook(path string, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	summary := [][]any{
		{"From", r.From.Format(time.DateOnly)},
		{"To", r.To.Format(time.DateOnly)},
		{"Latest", r.Week.Latest.Format(time.DateOnly)},
		{"Prior", r.Week.Prior.Format(time.DateOnly)},
		{"Spain hospitalized", r.Week.National.Current},
		{"Spain weekly diff", r.Week.National.AbsoluteDiff},
		{"Spain weekly diff %", percentCell(r.Week.National.PercentDiff)},
		{"Spain per 10000", r.Rates.NationalRate},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}

	week := [][]any{toAny(weekHeader)}
	for _, row := range append(append([]domain.ComparisonRow{}, r.Week.Rows...), r.Week.National) {
		week = append(week, []any{row.Region, row.Name, row.Current, row.Prior, row.AbsoluteDiff, percentCell(row.PercentDiff)})
	}
	if err := addSheet(f, weekSheet, week); err != nil {
		return err
	}

	rates := [][]any{toAny(rateHeader)}
	for _, row := range r.Rates.Rows {
		rates = append(rates, []any{row.Region, row.Name, row.Hospitalized, row.Population, row.RatePer10000, row.DeltaVsNational})
	}
	if err := addSheet(f, rateSheet, rates); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func addSheet(f *excelize.File, sheet string, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "F", 18); err != nil {
		return fmt.Errorf("%s column width: %w", sheet, err)
	}
	return nil
}

// percentCell leaves the cell empty when the percentage is undefined.
func percentCell(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

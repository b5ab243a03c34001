package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// DateLayout is the day/month/year layout of the snapshot's date column.
// Single-digit days and months are accepted.
const DateLayout = "2/1/2006"

// ErrEmptySnapshot is returned when a snapshot has no header line.
var ErrEmptySnapshot = errors.New("snapshot is empty")

// LoadOptions controls how a snapshot is cleaned.
type LoadOptions struct {
	RegionColumn       string
	DateColumn         string
	HospitalizedColumn string

	// FooterRows trailing non-empty lines are notes, not data.
	FooterRows int

	ExcludedRegions []string
}

// LoadStats counts what the loader did with each data row.
type LoadStats struct {
	Rows     int // rows kept
	Filled   int // empty counts replaced with zero
	Dropped  int // rows missing a region or a date
	Excluded int // rows of an excluded region
}

// ParseSnapshot decodes a Windows-1252 snapshot and returns its cleaned rows
// in source order.
func ParseSnapshot(r io.Reader, opts LoadOptions) ([]DailyRecord, LoadStats, error) {
	var stats LoadStats

	rows, err := readDelimited(r, opts.FooterRows)
	if err != nil {
		return nil, stats, err
	}

	idx, err := columnIndex(rows[0], opts.RegionColumn, opts.DateColumn, opts.HospitalizedColumn)
	if err != nil {
		return nil, stats, err
	}
	regionIdx, dateIdx, countIdx := idx[0], idx[1], idx[2]

	excluded := make(map[string]struct{}, len(opts.ExcludedRegions))
	for _, code := range opts.ExcludedRegions {
		excluded[strings.ToUpper(strings.TrimSpace(code))] = struct{}{}
	}

	records := make([]DailyRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		region := strings.TrimSpace(field(row, regionIdx))
		date := strings.TrimSpace(field(row, dateIdx))
		count := strings.TrimSpace(field(row, countIdx))

		if region == "" || date == "" {
			stats.Dropped++
			continue
		}
		if _, ok := excluded[strings.ToUpper(region)]; ok {
			stats.Excluded++
			continue
		}
		if count == "" {
			stats.Filled++
		}

		d, err := time.Parse(DateLayout, date)
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: parse date %q: %w", line, date, err)
		}
		n, err := parseCount(count)
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", line, err)
		}

		records = append(records, DailyRecord{Region: region, Date: d, Hospitalized: n})
	}
	stats.Rows = len(records)

	return records, stats, nil
}

// PopulationOptions names the population table's columns.
type PopulationOptions struct {
	RegionColumn string
	TotalColumn  string
}

// ParsePopulation decodes the Windows-1252 population table. Rows whose
// description does not resolve to a region code, or whose total is not
// positive, are skipped and counted. The first row seen for a region wins.
func ParsePopulation(r io.Reader, opts PopulationOptions) ([]RegionPopulation, int, error) {
	rows, err := readDelimited(r, 0)
	if err != nil {
		return nil, 0, err
	}

	idx, err := columnIndex(rows[0], opts.RegionColumn, opts.TotalColumn)
	if err != nil {
		return nil, 0, err
	}

	var (
		out     []RegionPopulation
		skipped int
		seen    = make(map[string]struct{})
	)
	for i, row := range rows[1:] {
		desc := strings.TrimSpace(field(row, idx[0]))
		code, ok := RegionCodeFromDescription(desc)
		if !ok {
			skipped++
			continue
		}
		if _, dup := seen[code]; dup {
			skipped++
			continue
		}

		raw := strings.ReplaceAll(strings.TrimSpace(field(row, idx[1])), ".", "")
		total, err := strconv.Atoi(raw)
		if err != nil {
			return nil, skipped, fmt.Errorf("line %d: parse total %q: %w", i+2, raw, err)
		}
		if total <= 0 {
			skipped++
			continue
		}

		seen[code] = struct{}{}
		out = append(out, RegionPopulation{Region: code, Description: desc, Total: total})
	}
	return out, skipped, nil
}

// readDelimited decodes r, drops trailing footer lines, and splits the rest
// on whichever of ';' or ',' the header uses most.
func readDelimited(r io.Reader, footerRows int) ([][]string, error) {
	raw, err := io.ReadAll(charmap.Windows1252.NewDecoder().Reader(r))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if footerRows > len(lines) {
		footerRows = len(lines)
	}
	lines = lines[:len(lines)-footerRows]
	if len(lines) == 0 {
		return nil, ErrEmptySnapshot
	}

	// A UTF-8 byte order mark decodes to "ï»¿" under Windows-1252.
	lines[0] = strings.TrimPrefix(strings.TrimPrefix(lines[0], "ï»¿"), "\ufeff")

	cr := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	cr.Comma = detectDelimiter(lines[0])
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySnapshot
	}
	return rows, nil
}

func detectDelimiter(header string) rune {
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

// columnIndex resolves each wanted header name to its position.
func columnIndex(header []string, names ...string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}

	idx := make([]int, len(names))
	for i, name := range names {
		p, ok := pos[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		idx[i] = p
	}
	return idx, nil
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// parseCount reads a hospitalization count. Empty means zero. Whole-valued
// decimals such as "12.0" are accepted.
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("parse count %q: not a whole number", s)
		}
		n = int(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("parse count %q: negative", s)
	}
	return n, nil
}

package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"

	"github.com/jotavaladouro/covid19/internal/domain"
)

var snapshotHeader = []string{"Region", "Name", "Rows", "First", "Last", "Latest"}

// PrintSnapshot describes a cleaned snapshot: what the loader kept and
// dropped, then one line per region.
func PrintSnapshot(w io.Writer, records []domain.DailyRecord, stats domain.LoadStats) error {
	from, to, _ := domain.Span(records)
	heading := color.New(color.FgCyan, color.Bold)
	if _, err := heading.Fprintf(w, "From %s to %s\n", from.Format(time.DateOnly), to.Format(time.DateOnly)); err != nil {
		return err
	}
	fmt.Fprintf(w, "rows %d, filled %d, dropped %d, excluded %d\n\n",
		stats.Rows, stats.Filled, stats.Dropped, stats.Excluded)

	regions := domain.ByRegion(records)
	rows := make([][]string, 0, len(regions))
	for _, rs := range regions {
		first, last := rs.Series[0], rs.Series[len(rs.Series)-1]
		rows = append(rows, []string{
			rs.Region,
			domain.DisplayName(rs.Region),
			strconv.Itoa(len(rs.Series)),
			first.Date.Format(time.DateOnly),
			last.Date.Format(time.DateOnly),
			strconv.Itoa(last.Value),
		})
	}
	return renderTable(w, snapshotHeader, rows)
}

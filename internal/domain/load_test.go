package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const snapshotFooter = "NOTA: El objetivo de los datos que se publican en esta web es saber el número de casos acumulados.\n" +
	"* Los datos de hospitalizados de Andalucía no son acumulados.\n"

func testLoadOptions() LoadOptions {
	return LoadOptions{
		RegionColumn:       "CCAA",
		DateColumn:         "FECHA",
		HospitalizedColumn: "Hospitalizados",
		FooterRows:         2,
	}
}

// cp1252 encodes s the way the published files are encoded.
func cp1252(t *testing.T, s string) *strings.Reader {
	t.Helper()
	enc, err := charmap.Windows1252.NewEncoder().String(s)
	require.NoError(t, err)
	return strings.NewReader(enc)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseSnapshot(t *testing.T) {
	t.Run("comma separated with footer", func(t *testing.T) {
		in := "CCAA,FECHA,CASOS,Hospitalizados,UCI\n" +
			"AN,20/2/2020,0,,0\n" +
			"GA,20/2/2020,1,3,0\n" +
			"AN,21/02/2020,2,5,1\n" +
			snapshotFooter

		records, stats, err := ParseSnapshot(cp1252(t, in), testLoadOptions())
		require.NoError(t, err)

		assert.Equal(t, []DailyRecord{
			{Region: "AN", Date: date(2020, time.February, 20), Hospitalized: 0},
			{Region: "GA", Date: date(2020, time.February, 20), Hospitalized: 3},
			{Region: "AN", Date: date(2020, time.February, 21), Hospitalized: 5},
		}, records)
		assert.Equal(t, LoadStats{Rows: 3, Filled: 1}, stats)
	})

	t.Run("semicolon separated", func(t *testing.T) {
		in := "CCAA;FECHA;Hospitalizados\nMD;1/3/2020;10\n"
		opts := testLoadOptions()
		opts.FooterRows = 0

		records, _, err := ParseSnapshot(cp1252(t, in), opts)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 10, records[0].Hospitalized)
	})

	t.Run("trailing blank lines do not count as footer", func(t *testing.T) {
		in := "CCAA,FECHA,Hospitalizados\r\nGA,1/3/2020,1\r\n" + snapshotFooter + "\r\n\r\n"

		records, _, err := ParseSnapshot(cp1252(t, in), testLoadOptions())
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("rows missing region or date are dropped", func(t *testing.T) {
		in := "CCAA,FECHA,Hospitalizados\n,1/3/2020,4\nGA,,4\nGA,1/3/2020,4\n" + snapshotFooter

		records, stats, err := ParseSnapshot(cp1252(t, in), testLoadOptions())
		require.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, 2, stats.Dropped)
	})

	t.Run("excluded regions never appear", func(t *testing.T) {
		in := "CCAA,FECHA,Hospitalizados\nCE,1/3/2020,1\nGA,1/3/2020,2\nml,1/3/2020,bad\n" + snapshotFooter
		opts := testLoadOptions()
		opts.ExcludedRegions = []string{"CE", "ML"}

		records, stats, err := ParseSnapshot(cp1252(t, in), opts)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "GA", records[0].Region)
		assert.Equal(t, 2, stats.Excluded)
	})

	t.Run("utf-8 byte order mark on header", func(t *testing.T) {
		in := "\xEF\xBB\xBFCCAA,FECHA,Hospitalizados\nGA,1/3/2020,2\n"
		opts := testLoadOptions()
		opts.FooterRows = 0

		records, _, err := ParseSnapshot(strings.NewReader(in), opts)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("whole-valued decimal count", func(t *testing.T) {
		in := "CCAA,FECHA,Hospitalizados\nGA,1/3/2020,12.0\n"
		opts := testLoadOptions()
		opts.FooterRows = 0

		records, _, err := ParseSnapshot(cp1252(t, in), opts)
		require.NoError(t, err)
		assert.Equal(t, 12, records[0].Hospitalized)
	})
}

func TestParseSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"missing column", "CCAA,FECHA,Casos\nGA,1/3/2020,1\n", `missing column "Hospitalizados"`},
		{"malformed date", "CCAA,FECHA,Hospitalizados\nGA,2020-03-01,1\n", "line 2: parse date"},
		{"negative count", "CCAA,FECHA,Hospitalizados\nGA,1/3/2020,-3\n", "negative"},
		{"non-numeric count", "CCAA,FECHA,Hospitalizados\nGA,1/3/2020,n/a\n", "not a whole number"},
		{"empty", "", "snapshot is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testLoadOptions()
			opts.FooterRows = 0

			_, _, err := ParseSnapshot(cp1252(t, tt.input), opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseSnapshot_FooterLargerThanFile(t *testing.T) {
	opts := testLoadOptions()
	opts.FooterRows = 5

	_, _, err := ParseSnapshot(cp1252(t, "CCAA,FECHA,Hospitalizados\n"), opts)
	require.ErrorIs(t, err, ErrEmptySnapshot)
}

func TestParsePopulation(t *testing.T) {
	in := "Comunidades y Ciudades Autónomas;Periodo;Total\n" +
		"Total Nacional;2019;47.026.208\n" +
		"01 Andalucía;2019;8.414.240\n" +
		"09 Cataluña;2019;7.675.217\n" +
		"13 Madrid, Comunidad de;2019;6.663.394\n" +
		"13 Madrid, Comunidad de;2018;6.578.079\n" +
		"12 Galicia;2019;2.699.499\n"
	opts := PopulationOptions{RegionColumn: "Comunidades y Ciudades Autónomas", TotalColumn: "Total"}

	pops, skipped, err := ParsePopulation(cp1252(t, in), opts)
	require.NoError(t, err)

	assert.Equal(t, []RegionPopulation{
		{Region: "AN", Description: "01 Andalucía", Total: 8414240},
		{Region: "CT", Description: "09 Cataluña", Total: 7675217},
		{Region: "MD", Description: "13 Madrid, Comunidad de", Total: 6663394},
		{Region: "GA", Description: "12 Galicia", Total: 2699499},
	}, pops)
	assert.Equal(t, 2, skipped)
}

func TestParsePopulation_BadTotal(t *testing.T) {
	in := "Comunidades y Ciudades Autónomas;Total\n12 Galicia;unknown\n"
	opts := PopulationOptions{RegionColumn: "Comunidades y Ciudades Autónomas", TotalColumn: "Total"}

	_, _, err := ParsePopulation(cp1252(t, in), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse total")
}

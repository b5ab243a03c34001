package render

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jotavaladouro/covid19/internal/domain"
	"github.com/jotavaladouro/covid19/internal/observability"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func newTestRenderer(t *testing.T) (*Renderer, *observability.Metrics, string) {
	t.Helper()
	dir := t.TempDir()
	m := observability.NewMetricsForTesting()
	r := New(dir, domain.DefaultCalendarEvents(), m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return r, m, dir
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), len(pngSignature))
	assert.True(t, bytes.HasPrefix(data, pngSignature), "not a PNG: %s", path)
}

func day(d int) time.Time {
	return time.Date(2020, time.March, d, 0, 0, 0, 0, time.UTC)
}

func samplePoints() Points {
	var pts Points
	for d := 1; d <= 20; d++ {
		pts = append(pts, Point{Date: day(d), Value: float64(d * 10), Defined: true})
	}
	return pts
}

func TestFromChanges_KeepsGaps(t *testing.T) {
	pts := FromChanges([]domain.Change{
		{Date: day(1)},
		{Date: day(2), Value: 5, Defined: true},
	})
	require.Len(t, pts, 2)
	assert.False(t, pts[0].Defined)
	assert.True(t, pts[1].Defined)
	assert.Equal(t, 5.0, pts[1].Value)
}

func TestSegments_SplitAtUndefined(t *testing.T) {
	pts := Points{
		{Date: day(1)},
		{Date: day(2), Value: 1, Defined: true},
		{Date: day(3), Value: 2, Defined: true},
		{Date: day(4)},
		{Date: day(5), Value: 3, Defined: true},
	}
	segs := segments(pts)
	require.Len(t, segs, 2)
	assert.Len(t, segs[0], 2)
	assert.Len(t, segs[1], 1)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Castilla-La Man", truncate("Castilla-La Mancha", 15))
	assert.Equal(t, "Andalucía", truncate("Andalucía", 15))
}

func TestLine(t *testing.T) {
	r, m, dir := newTestRenderer(t)

	require.NoError(t, r.Line("Hospitalized_sp.png", "Hospitalized Spain", samplePoints()))

	assertPNG(t, filepath.Join(dir, "Hospitalized_sp.png"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartsRendered.WithLabelValues("line")))
}

func TestLine_AllUndefined(t *testing.T) {
	r, _, dir := newTestRenderer(t)

	require.NoError(t, r.Line("empty.png", "Empty", Points{{Date: day(1)}}))
	assertPNG(t, filepath.Join(dir, "empty.png"))
}

func TestGrid_OddPanelCount(t *testing.T) {
	r, m, dir := newTestRenderer(t)
	panels := []Panel{
		{Title: "Andalucía", Points: samplePoints()},
		{Title: "Castilla-La Mancha", Points: samplePoints()},
		{Title: "Galicia", Points: samplePoints()},
	}

	require.NoError(t, r.Grid("Hospitalized_by_CA.png", "Hospitalized by CA", panels))

	assertPNG(t, filepath.Join(dir, "Hospitalized_by_CA.png"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartsRendered.WithLabelValues("grid")))
}

func TestGrid_NoPanels(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	require.Error(t, r.Grid("x.png", "x", nil))
}

func TestBars(t *testing.T) {
	r, m, dir := newTestRenderer(t)
	bars := []Bar{
		{Label: "Madrid", Value: 12.5, Defined: true},
		{Label: "Galicia", Value: -3, Defined: true},
		{Label: "Ceuta"},
	}

	require.NoError(t, r.Bars("Hospitalized_by_10000.png", "Hospitalized by 10000 persons", bars, 4.2, "Mean Spain"))

	assertPNG(t, filepath.Join(dir, "Hospitalized_by_10000.png"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartsRendered.WithLabelValues("bars")))
}

func TestBars_Empty(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	require.Error(t, r.Bars("x.png", "x", nil, 0, "ref"))
}

func TestQuadrant(t *testing.T) {
	r, m, dir := newTestRenderer(t)
	pts := []Labeled{
		{Label: "Madrid", X: -12, Y: 30},
		{Label: "Galicia", X: 8, Y: 4},
	}

	require.NoError(t, r.Quadrant("Quadrants.png", "Quadrants", pts, "Weekly variation (%)", "Hospitalized by 10000 persons", 10))

	assertPNG(t, filepath.Join(dir, "Quadrants.png"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartsRendered.WithLabelValues("quadrant")))
}

func TestSave_MissingDirectory(t *testing.T) {
	m := observability.NewMetricsForTesting()
	r := New(filepath.Join(t.TempDir(), "missing"), nil, m, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := r.Line("a.png", "a", samplePoints())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save a.png")
}

// Package render draws the report charts as PNG files using gonum/plot.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/jotavaladouro/covid19/internal/domain"
	"github.com/jotavaladouro/covid19/internal/observability"
)

const (
	lineWidth      = 6.4 * vg.Inch
	lineHeight     = 4.8 * vg.Inch
	barsWidth      = 8 * vg.Inch
	barsHeight     = 5 * vg.Inch
	quadrantSide   = 10 * vg.Inch
	gridColumns    = 2
	gridWidth      = 8 * vg.Inch
	gridRowHeight  = 2.4 * vg.Inch
	gridTitleSpace = 0.6 * vg.Inch
	panelTitleMax  = 15
	dateFormat     = "2006-01-02"
)

var (
	seriesColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	pointColor  = color.RGBA{R: 0xff, A: 0xff}
	ruleColor   = color.RGBA{A: 0xff}
)

// Point is one dated value. Undefined points leave a gap in the line.
type Point struct {
	Date    time.Time
	Value   float64
	Defined bool
}

// Points is a dated series ready to plot.
type Points []Point

// FromSeries converts a count series; every point is defined.
func FromSeries(s domain.Series) Points {
	out := make(Points, len(s))
	for i, p := range s {
		out[i] = Point{Date: p.Date, Value: float64(p.Value), Defined: true}
	}
	return out
}

// FromChanges converts a variation series, keeping undefined entries as gaps.
func FromChanges(cs []domain.Change) Points {
	out := make(Points, len(cs))
	for i, c := range cs {
		out[i] = Point{Date: c.Date, Value: float64(c.Value), Defined: c.Defined}
	}
	return out
}

// Panel is one small chart in a grid.
type Panel struct {
	Title  string
	Points Points
}

// Bar is one labelled bar. Undefined bars keep their slot but draw nothing.
type Bar struct {
	Label   string
	Value   float64
	Defined bool
}

// Labeled is a named point on a scatter chart.
type Labeled struct {
	Label string
	X, Y  float64
}

// Renderer writes charts into a directory.
type Renderer struct {
	dir     string
	events  []domain.CalendarEvent
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a Renderer that writes into dir and marks events on every
// time chart.
func New(dir string, events []domain.CalendarEvent, metrics *observability.Metrics, logger *slog.Logger) *Renderer {
	return &Renderer{dir: dir, events: events, metrics: metrics, logger: logger}
}

// Line draws a single time series with calendar markers and a legend
// naming each marker once.
func (r *Renderer) Line(name, title string, pts Points) error {
	p := newTimePlot(title)
	if err := addSegments(p, pts); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	r.addEvents(p, true)
	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(lineWidth, lineHeight, filepath.Join(r.dir, name)); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	r.rendered(name, "line")
	return nil
}

// Grid draws one panel per series, two per row, under a shared title.
// Panel titles are cut to 15 characters.
func (r *Renderer) Grid(name, title string, panels []Panel) error {
	if len(panels) == 0 {
		return fmt.Errorf("%s: no panels", name)
	}
	rows := (len(panels) + gridColumns - 1) / gridColumns
	plots := make([][]*plot.Plot, rows)
	for i := range plots {
		plots[i] = make([]*plot.Plot, gridColumns)
	}
	for i, panel := range panels {
		p := newTimePlot(truncate(panel.Title, panelTitleMax))
		p.X.Tick.Label.Font.Size = vg.Points(7)
		p.Y.Tick.Label.Font.Size = vg.Points(7)
		if err := addSegments(p, panel.Points); err != nil {
			return fmt.Errorf("%s: panel %q: %w", name, panel.Title, err)
		}
		r.addEvents(p, false)
		plots[i/gridColumns][i%gridColumns] = p
	}

	img := vgimg.New(gridWidth, vg.Length(rows)*gridRowHeight+gridTitleSpace)
	dc := draw.New(img)

	sty := plot.New().Title.TextStyle
	sty.Font.Size = vg.Points(16)
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YTop
	dc.FillText(sty, vg.Point{X: dc.Center().X, Y: dc.Max.Y - vg.Millimeter*3}, title)

	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      gridColumns,
		PadTop:    gridTitleSpace,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i, p := range plots[j] {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}

	if err := writePNG(img, filepath.Join(r.dir, name)); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	r.rendered(name, "grid")
	return nil
}

// Bars draws one bar per label with a horizontal reference line named in
// the legend.
func (r *Renderer) Bars(name, title string, bars []Bar, reference float64, referenceLabel string) error {
	if len(bars) == 0 {
		return fmt.Errorf("%s: no bars", name)
	}
	values := make(plotter.Values, len(bars))
	labels := make([]string, len(bars))
	for i, b := range bars {
		labels[i] = b.Label
		if b.Defined && !math.IsNaN(b.Value) && !math.IsInf(b.Value, 0) {
			values[i] = b.Value
		}
	}

	p := plot.New()
	p.Title.Text = title
	rotateTickLabels(p)

	bc, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	bc.Color = seriesColor
	bc.LineStyle.Width = 0
	p.Add(bc)
	p.NominalX(labels...)

	ref := &rule{at: reference, style: draw.LineStyle{Color: ruleColor, Width: vg.Points(1)}}
	p.Add(ref)
	p.Legend.Add(referenceLabel, ref)
	p.Legend.Top = true

	if err := p.Save(barsWidth, barsHeight, filepath.Join(r.dir, name)); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	r.rendered(name, "bars")
	return nil
}

// Quadrant draws labelled points with rules crossing at x=0 and y=yCenter.
func (r *Renderer) Quadrant(name, title string, pts []Labeled, xLabel, yLabel string, yCenter float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	cross := draw.LineStyle{Color: ruleColor, Width: vg.Points(0.8)}
	p.Add(&rule{vertical: true, at: 0, style: cross}, &rule{at: yCenter, style: cross})

	if len(pts) > 0 {
		xys := make(plotter.XYs, len(pts))
		names := make([]string, len(pts))
		for i, pt := range pts {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
			names[i] = pt.Label
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		sc.GlyphStyle.Color = pointColor
		sc.GlyphStyle.Radius = vg.Points(3)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}

		lb, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: names})
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		lb.Offset = vg.Point{X: vg.Points(4), Y: vg.Points(2)}
		p.Add(sc, lb)
	}

	if err := p.Save(quadrantSide, quadrantSide, filepath.Join(r.dir, name)); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	r.rendered(name, "quadrant")
	return nil
}

func (r *Renderer) addEvents(p *plot.Plot, legend bool) {
	seen := make(map[string]bool)
	for _, ev := range r.events {
		m := &rule{vertical: true, at: unixDate(ev.Date), style: draw.LineStyle{Color: ev.Color, Width: vg.Points(1)}}
		p.Add(m)
		if legend && !seen[ev.Label] {
			p.Legend.Add(ev.Label, m)
			seen[ev.Label] = true
		}
	}
}

func (r *Renderer) rendered(name, kind string) {
	r.metrics.ChartsRendered.WithLabelValues(kind).Inc()
	r.logger.Debug("chart rendered", "artifact", name, "kind", kind)
}

func newTimePlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Tick.Marker = plot.TimeTicks{Format: dateFormat}
	rotateTickLabels(p)
	return p
}

func rotateTickLabels(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

// addSegments adds one line per run of defined points.
func addSegments(p *plot.Plot, pts Points) error {
	for _, seg := range segments(pts) {
		l, err := plotter.NewLine(seg)
		if err != nil {
			return err
		}
		l.LineStyle.Color = seriesColor
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
	}
	return nil
}

func segments(pts Points) []plotter.XYs {
	var (
		out []plotter.XYs
		cur plotter.XYs
	)
	for _, pt := range pts {
		if !pt.Defined || math.IsNaN(pt.Value) || math.IsInf(pt.Value, 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: unixDate(pt.Date), Y: pt.Value})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func unixDate(t time.Time) float64 {
	return float64(t.Unix())
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}

func writePNG(img *vgimg.Canvas, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return errors.Join(err, f.Close())
	}
	return f.Close()
}

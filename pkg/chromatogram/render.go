package chromatogram

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Options are the rendering parameters. Zero fields fall back to the
// defaults below.
type Options struct {
	DPI    int
	Width  float64 // inches
	Height float64 // inches
}

const (
	DefaultDPI    = 200
	DefaultWidth  = 16.0
	DefaultHeight = 4.0

	// labelStep: only every labelStep-th base call gets a text label, so
	// long traces stay readable.
	labelStep = 50
)

func (o Options) withDefaults() Options {
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

var baseColors = map[string]drawing.Color{
	"A": {R: 0x00, G: 0x80, B: 0x00, A: 0xff},
	"C": drawing.ColorBlue,
	"G": drawing.ColorBlack,
	"T": drawing.ColorRed,
}

var (
	guideColor = drawing.Color{R: 0x80, G: 0x80, B: 0x80, A: 0x20}
	labelColor = drawing.Color{R: 0x50, G: 0x50, B: 0x50, A: 0xa0}
)

// Render draws one intensity curve per channel over the display window and
// writes a PNG to outPath, creating parent directories as needed. When base
// positions are known each call gets a faint vertical guide and every 50th
// one a small base-letter label near the top.
func Render(td *TraceData, title, outPath string, opt Options) error {
	opt = opt.withDefaults()

	length := td.Length()
	start, end := td.Window()
	if end-start < 1 {
		return &RenderError{Path: outPath, Err: fmt.Errorf("trace too short: %d samples", length)}
	}

	span := end - start + 1
	xs := make([]float64, span)
	for i := range xs {
		xs[i] = float64(start + i)
	}

	var peak int
	series := make([]chart.Series, 0, len(td.ChannelOrder)+1)
	for _, base := range td.ChannelOrder {
		trace := td.Traces[base]
		ys := make([]float64, span)
		for i := 0; i < span; i++ {
			if idx := start + i; idx < len(trace) {
				ys[i] = float64(trace[idx])
				if trace[idx] > peak {
					peak = trace[idx]
				}
			}
		}
		st := chart.Style{StrokeWidth: 0.5}
		if col, ok := baseColors[base]; ok {
			st.StrokeColor = col
		}
		series = append(series, chart.ContinuousSeries{
			Name:    base,
			XValues: xs,
			YValues: ys,
			Style:   st,
		})
	}

	var guides []chart.GridLine
	var labels []chart.Value2
	if len(td.Positions) > 0 && td.Seq != "" {
		n := min(len(td.Positions), len(td.Seq))
		for i := 0; i < n; i++ {
			pos := td.Positions[i]
			if pos < 0 || pos >= length || pos < start || pos > end {
				continue
			}
			guides = append(guides, chart.GridLine{
				Value: float64(pos),
				Style: chart.Style{StrokeColor: guideColor, StrokeWidth: 0.3},
			})
			if i%labelStep == 0 {
				labels = append(labels, chart.Value2{
					XValue: float64(pos),
					YValue: float64(peak) * 0.95,
					Label:  string(td.Seq[i]),
				})
			}
		}
	}
	if len(labels) > 0 {
		series = append(series, chart.AnnotationSeries{
			Annotations: labels,
			Style: chart.Style{
				StrokeColor: drawing.ColorTransparent,
				FillColor:   drawing.ColorTransparent,
				FontSize:    6,
				FontColor:   labelColor,
			},
		})
	}

	xAxis := chart.XAxis{
		Name:  "Trace index",
		Range: &chart.ContinuousRange{Min: float64(start), Max: float64(end)},
	}
	if len(guides) > 0 {
		xAxis.GridLines = guides
		xAxis.GridMajorStyle = chart.Style{StrokeColor: guideColor, StrokeWidth: 0.3}
	}

	yAxis := chart.YAxis{Name: "Signal intensity"}
	if peak == 0 {
		// an all-zero window would give the chart a zero y-delta
		yAxis.Range = &chart.ContinuousRange{Min: 0, Max: 1}
	}

	ch := chart.Chart{
		Title:  title,
		Width:  int(opt.Width * float64(opt.DPI)),
		Height: int(opt.Height * float64(opt.DPI)),
		DPI:    float64(opt.DPI),
		XAxis:  xAxis,
		YAxis:  yAxis,
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &RenderError{Path: outPath, Err: err}
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		return &RenderError{Path: outPath, Err: err}
	}
	if err := ch.Render(chart.PNG, out); err != nil {
		out.Close()
		return &RenderError{Path: outPath, Err: err}
	}
	if err := out.Close(); err != nil {
		return &RenderError{Path: outPath, Err: err}
	}
	return nil
}

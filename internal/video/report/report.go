// Package report renders the phase timings of an extraction run as a PNG
// bar chart (gonum/plot) or an HTML page (go-echarts).
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/motionfeat/internal/monitoring"
)

// ErrNoTimings is returned when there is nothing to plot.
var ErrNoTimings = errors.New("no phase timings recorded")

// Summary is the run context printed in chart titles.
type Summary struct {
	Title   string
	Frames  int
	Patches int
}

func (s Summary) subtitle() string {
	return fmt.Sprintf("frames=%d patches=%d", s.Frames, s.Patches)
}

func split(timings []monitoring.PhaseTiming) ([]string, []float64) {
	names := make([]string, len(timings))
	secs := make([]float64, len(timings))
	for i, t := range timings {
		names[i] = t.Name()
		secs[i] = t.Elapsed.Seconds()
	}
	return names, secs
}

// WritePNG writes a bar chart of the per-phase seconds to w.
func WritePNG(w io.Writer, s Summary, timings []monitoring.PhaseTiming) error {
	if len(timings) == 0 {
		return ErrNoTimings
	}
	names, secs := split(timings)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%s)", s.Title, s.subtitle())
	p.Y.Label.Text = "Time (s)"

	bars, err := plotter.NewBarChart(plotter.Values(secs), vg.Points(18))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = 0.6
	p.X.Tick.Label.XAlign = -1

	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// WriteHTML writes an interactive bar chart of the per-phase seconds to w.
func WriteHTML(w io.Writer, s Summary, timings []monitoring.PhaseTiming) error {
	if len(timings) == 0 {
		return ErrNoTimings
	}
	names, secs := split(timings)
	data := make([]opts.BarData, len(secs))
	for i, v := range secs {
		data[i] = opts.BarData{Value: v}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: s.Title, Width: "100%", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: s.Title, Subtitle: s.subtitle()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "seconds"}),
	)
	bar.SetXAxis(names).
		AddSeries("time", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.AddCharts(bar)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

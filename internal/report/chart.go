package report

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/laneguide/internal/clearance"
	"github.com/banshee-data/laneguide/internal/fsutil"
)

var (
	colorGood      = color.RGBA{R: 34, G: 197, B: 94, A: 255}
	colorOnLine    = color.RGBA{R: 239, G: 68, B: 68, A: 255}
	colorThreshold = color.RGBA{R: 59, G: 130, B: 246, A: 255}
)

// TimelinePlot plots measured clearance over time, on-line frames in red,
// with the threshold as a dashed line.
func TimelinePlot(records []clearance.Record, threshold int, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Clearance (px)"

	good := make(plotter.XYs, 0, len(records))
	onLine := make(plotter.XYs, 0)
	end := 0.0
	for _, r := range records {
		end = max(end, r.TimestampSec)
		if !r.Measurement.Measured {
			continue
		}
		pt := plotter.XY{X: r.TimestampSec, Y: float64(r.Measurement.ClearancePx)}
		if r.Measurement.OnLine() {
			onLine = append(onLine, pt)
		} else {
			good = append(good, pt)
		}
	}
	if end == 0 {
		end = 1
	}

	thr, err := plotter.NewLine(plotter.XYs{{X: 0, Y: float64(threshold)}, {X: end, Y: float64(threshold)}})
	if err != nil {
		return nil, err
	}
	thr.Color = colorThreshold
	thr.Width = vg.Points(1)
	thr.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(thr)
	p.Legend.Add(fmt.Sprintf("threshold %dpx", threshold), thr)

	for _, series := range []struct {
		name string
		pts  plotter.XYs
		c    color.Color
	}{
		{"good", good, colorGood},
		{"on line", onLine, colorOnLine},
	} {
		if len(series.pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(series.pts)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = series.c
		sc.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(sc)
		p.Legend.Add(series.name, sc)
	}
	p.Y.Min = 0
	return p, nil
}

// WritePNG renders the timeline plot as a 14x6 inch PNG.
func WritePNG(w io.Writer, records []clearance.Record, threshold int, title string) error {
	p, err := TimelinePlot(records, threshold, title)
	if err != nil {
		return fmt.Errorf("build plot: %w", err)
	}
	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// TimelineChart builds an interactive line chart of clearance per frame.
// NO LANE frames are gaps.
func TimelineChart(records []clearance.Record, threshold int, title, subtitle string) *charts.Line {
	x := make([]string, 0, len(records))
	ys := make([]opts.LineData, 0, len(records))
	thr := make([]opts.LineData, 0, len(records))
	for _, r := range records {
		x = append(x, fmt.Sprintf("%.3f", r.TimestampSec))
		if r.Measurement.Measured {
			ys = append(ys, opts.LineData{Value: r.Measurement.ClearancePx})
		} else {
			ys = append(ys, opts.LineData{Value: nil})
		}
		thr = append(thr, opts.LineData{Value: threshold})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Lane Clearance", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Clearance (px)", NameLocation: "middle", NameGap: 40}),
	)
	line.SetXAxis(x).
		AddSeries("clearance_px", ys).
		AddSeries("threshold", thr)
	return line
}

// RenderHTML writes a standalone HTML page with the timeline chart.
func RenderHTML(w io.Writer, records []clearance.Record, threshold int, title, subtitle string) error {
	var buf bytes.Buffer
	if err := TimelineChart(records, threshold, title, subtitle).Render(&buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// SaveArtifacts writes the optional PNG plot and HTML chart to fsys. Empty
// paths are skipped.
func SaveArtifacts(fsys fsutil.FileSystem, pngPath, htmlPath string, records []clearance.Record, threshold int, title string) error {
	write := func(path string, render func(io.Writer) error) error {
		if path == "" {
			return nil
		}
		f, err := fsys.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := render(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		return f.Close()
	}

	if err := write(pngPath, func(w io.Writer) error {
		return WritePNG(w, records, threshold, title)
	}); err != nil {
		return err
	}
	return write(htmlPath, func(w io.Writer) error {
		return RenderHTML(w, records, threshold, title, fmt.Sprintf("frames=%d threshold=%dpx", len(records), threshold))
	})
}

package report

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"reviewml/pkg/experiment"
)

const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch
)

// PlotAccuracy draws test accuracy against sample size, one line per bucket.
// sizes holds the sample size of each step; failed cells are left out.
func PlotAccuracy(rows []experiment.ResultRow, sizes []int, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Sample size"
	p.Y.Label.Text = "Test accuracy"
	p.Y.Min, p.Y.Max = 0, 1
	p.Legend.Top = false
	p.Legend.Left = false
	p.Add(plotter.NewGrid())

	byBucket := map[int]plotter.XYs{}
	k := 0
	for _, r := range rows {
		k = max(k, r.Bucket)
		if math.IsNaN(r.Accuracy) || r.Step < 1 || r.Step > len(sizes) {
			continue
		}
		byBucket[r.Bucket] = append(byBucket[r.Bucket], plotter.XY{X: float64(sizes[r.Step-1]), Y: r.Accuracy})
	}
	for b := 1; b <= k; b++ {
		pts := byBucket[b]
		if len(pts) == 0 {
			continue
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("bucket %d line: %w", b, err)
		}
		l.Color = plotutil.Color(b - 1)
		l.Dashes = plotutil.Dashes(b - 1)
		l.Width = vg.Points(1.5)
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("bucket %d points: %w", b, err)
		}
		s.Color = l.Color
		s.Shape = plotutil.Shape(b - 1)
		p.Add(l, s)
		p.Legend.Add(fmt.Sprintf("bucket %d", b), l, s)
	}
	return p, nil
}

// SavePlot writes p to path; the format follows the file extension.
func SavePlot(p *plot.Plot, path string) error {
	return p.Save(plotWidth, plotHeight, path)
}

// WritePNG renders p as PNG to w.
func WritePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

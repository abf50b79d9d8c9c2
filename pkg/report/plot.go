package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/chazu/rvegen/pkg/rve"
)

var (
	lineColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	targetColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch
)

// PlotConvergence draws the accumulated volume fraction after each
// accepted inclusion, with the target as a dashed line. The image format
// follows the extension of path (png, svg, pdf...).
func PlotConvergence(res *rve.Result, target float64, path string) error {
	if len(res.History) == 0 {
		return ErrEmptyResult
	}

	pts := make(plotter.XYs, len(res.History))
	for i, vf := range res.History {
		pts[i] = plotter.XY{X: float64(i + 1), Y: vf}
	}

	p := plot.New()
	p.Title.Text = "Volume fraction convergence"
	p.X.Label.Text = "Inclusions"
	p.Y.Label.Text = "Volume fraction"
	p.X.Min = 0
	p.Y.Min = 0

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("report: convergence line: %w", err)
	}
	line.Color = lineColor
	line.Width = vg.Points(1)

	goal := plotter.NewFunction(func(float64) float64 { return target })
	goal.Color = targetColor
	goal.Width = vg.Points(1)
	goal.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(line, goal)
	p.Legend.Add("achieved", line)
	p.Legend.Add("target", goal)
	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

// PlotRadii draws a histogram of the inclusion radii with the given
// number of bins.
func PlotRadii(res *rve.Result, bins int, path string) error {
	if len(res.Inclusions) == 0 {
		return ErrEmptyResult
	}
	if bins <= 0 {
		return fmt.Errorf("report: bins must be positive, got %d", bins)
	}

	radii := make(plotter.Values, len(res.Inclusions))
	for i, sp := range res.Inclusions {
		radii[i] = sp.Radius
	}

	p := plot.New()
	p.Title.Text = "Inclusion radii"
	p.X.Label.Text = "Radius"
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(radii, bins)
	if err != nil {
		return fmt.Errorf("report: radius histogram: %w", err)
	}
	h.FillColor = lineColor
	p.Add(h)

	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

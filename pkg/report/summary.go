// Package report summarizes a finished placement run and renders its
// convergence and radius distribution as plots.
package report

import (
	"errors"
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/chazu/rvegen/pkg/geom"
	"github.com/chazu/rvegen/pkg/rve"
)

// ErrEmptyResult is returned when a plot is requested for a run without
// inclusions.
var ErrEmptyResult = errors.New("report: result has no inclusions")

// Summary holds descriptive statistics of a run.
type Summary struct {
	Inclusions int
	Partial    int // inclusions cut by the domain boundary
	Placements int

	RadiusMean   float64
	RadiusStdDev float64
	RadiusMin    float64
	RadiusMax    float64

	Target    float64
	Achieved  float64
	Overshoot float64 // Achieved - Target
}

// Summarize computes the statistics of res against the requested target.
func Summarize(res *rve.Result, target float64) Summary {
	s := Summary{
		Inclusions: len(res.Inclusions),
		Placements: res.Placements,
		Target:     target,
		Achieved:   res.VolumeFraction,
		Overshoot:  res.VolumeFraction - target,
	}
	if len(res.Inclusions) == 0 {
		return s
	}

	radii := make([]float64, len(res.Inclusions))
	for i, sp := range res.Inclusions {
		radii[i] = sp.Radius
		if geom.Classify(res.Domain, sp) == geom.Partial {
			s.Partial++
		}
	}
	s.RadiusMin = floats.Min(radii)
	s.RadiusMax = floats.Max(radii)
	if len(radii) > 1 {
		s.RadiusMean, s.RadiusStdDev = stat.MeanStdDev(radii, nil)
	} else {
		s.RadiusMean = radii[0]
	}
	return s
}

// AcceptanceRate is the share of drawn centers that became inclusions.
func (s Summary) AcceptanceRate() float64 {
	if s.Placements == 0 {
		return 0
	}
	return float64(s.Inclusions) / float64(s.Placements)
}

// LogValue implements slog.LogValuer.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("inclusions", s.Inclusions),
		slog.Int("partial", s.Partial),
		slog.Int("placements", s.Placements),
		slog.Float64("acceptance_rate", s.AcceptanceRate()),
		slog.Float64("radius_mean", s.RadiusMean),
		slog.Float64("radius_stddev", s.RadiusStdDev),
		slog.Float64("radius_min", s.RadiusMin),
		slog.Float64("radius_max", s.RadiusMax),
		slog.Float64("target", s.Target),
		slog.Float64("achieved", s.Achieved),
		slog.Float64("overshoot", s.Overshoot),
	)
}

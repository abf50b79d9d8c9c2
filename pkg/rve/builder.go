package rve

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/chazu/rvegen/pkg/geom"
	"github.com/chazu/rvegen/pkg/intersect"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

// placementStream selects the PCG stream for placement decisions.
const placementStream = 0

// Result is the outcome of a successful run.
type Result struct {
	Domain     geom.Box
	Inclusions []geom.Sphere // in acceptance order

	// VolumeFraction is the accumulated fraction. It is at least the
	// target and may overshoot it by the last inclusion's contribution.
	VolumeFraction float64

	// History[i] is the accumulated fraction after accepting Inclusions[i].
	History []float64

	// Placements counts every center drawn, including rejected ones.
	Placements int
}

// Builder runs random sequential addition for one Config.
type Builder struct {
	cfg    Config
	logger *slog.Logger
}

// NewBuilder returns a builder for cfg.
func NewBuilder(cfg Config) *Builder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{cfg: cfg, logger: logger}
}

// Config returns the configuration the builder runs with.
func (b *Builder) Config() Config {
	return b.cfg
}

// run holds the mutable state of a single Generate call.
type run struct {
	cfg       Config
	src       rand.Source
	estimator *intersect.Estimator
	result    *Result
}

// Generate places inclusions until the accumulated volume fraction reaches
// the target. It fails with a *PlacementError as soon as one inclusion
// cannot be placed; no partial result is returned.
func (b *Builder) Generate() (*Result, error) {
	cfg := b.cfg
	domainVolume := cfg.Domain.Volume()

	r := &run{
		cfg:       cfg,
		src:       rand.NewPCG(cfg.Seed, placementStream),
		estimator: intersect.NewEstimator(cfg.IntegrationPoints, cfg.Seed),
		result:    &Result{Domain: cfg.Domain},
	}
	radii := distuv.Uniform{Min: cfg.RadiusMin, Max: cfg.RadiusMax, Src: r.src}

	b.logger.Info("rve generation started",
		"target", cfg.TargetVolumeFraction,
		"radius_min", cfg.RadiusMin,
		"radius_max", cfg.RadiusMax,
		"seed", cfg.Seed,
		"integration_points", r.estimator.Samples(),
	)

	res := r.result
	for res.VolumeFraction < cfg.TargetVolumeFraction {
		sphere, err := r.fit(radii.Rand())
		if err != nil {
			b.logger.Warn("rve generation failed", "error", err)
			return nil, err
		}
		res.Inclusions = append(res.Inclusions, sphere)

		v, pos, err := r.estimator.ClippedVolume(cfg.Domain, sphere)
		if err != nil {
			return nil, fmt.Errorf("rve: inclusion %d: %w", len(res.Inclusions)-1, err)
		}
		if pos == geom.Outside {
			return nil, fmt.Errorf("rve: inclusion %d at %v: %w", len(res.Inclusions)-1, sphere.Center, ErrOutsideAccepted)
		}
		res.VolumeFraction += v / domainVolume
		res.History = append(res.History, res.VolumeFraction)

		b.logger.Debug("inclusion accepted",
			"index", len(res.Inclusions)-1,
			"radius", sphere.Radius,
			"position", pos.String(),
			"volume_fraction", res.VolumeFraction,
		)
	}

	b.logger.Info("rve generation finished",
		"inclusions", len(res.Inclusions),
		"volume_fraction", res.VolumeFraction,
		"placements", res.Placements,
	)
	return res, nil
}

// fit draws positions for a sphere of the given radius until it collides
// with no accepted inclusion, giving up after the retry budget.
func (r *run) fit(radius float64) (geom.Sphere, error) {
	region := r.cfg.Domain.Expand(0.5 * radius)
	candidate := r.place(geom.NewSphere(r3.Vec{}, radius), region)

	for t := 0; t < r.cfg.TriesPerInclusion; t++ {
		if !r.collides(candidate) {
			return candidate, nil
		}
		candidate = r.place(candidate, region)
	}
	return geom.Sphere{}, &PlacementError{
		Radius:         radius,
		VolumeFraction: r.result.VolumeFraction,
		Target:         r.cfg.TargetVolumeFraction,
		Tries:          r.cfg.TriesPerInclusion,
		Accepted:       len(r.result.Inclusions),
	}
}

// place returns s at a fresh uniform center in region, redrawn until the
// sphere is not entirely outside the domain.
func (r *run) place(s geom.Sphere, region geom.Box) geom.Sphere {
	x := distuv.Uniform{Min: region.Min.X, Max: region.Max.X, Src: r.src}
	y := distuv.Uniform{Min: region.Min.Y, Max: region.Max.Y, Src: r.src}
	z := distuv.Uniform{Min: region.Min.Z, Max: region.Max.Z, Src: r.src}
	for {
		r.result.Placements++
		s = s.WithCenter(r3.Vec{X: x.Rand(), Y: y.Rand(), Z: z.Rand()})
		if r.estimator.Classify(r.cfg.Domain, s) != geom.Outside {
			return s
		}
	}
}

func (r *run) collides(s geom.Sphere) bool {
	for _, other := range r.result.Inclusions {
		if s.CollidesWith(other) {
			return true
		}
	}
	return false
}

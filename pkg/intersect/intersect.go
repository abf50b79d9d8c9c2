// Package intersect estimates the volume shared by a sphere and a box.
// Spheres fully inside or outside the box are handled analytically;
// spheres crossing the boundary are integrated by Monte Carlo sampling
// over the sphere's bounding cube.
package intersect

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/chazu/rvegen/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultSamples is the number of Monte Carlo points drawn per estimate.
const DefaultSamples = 1_000_000

// estimatorStream selects the PCG stream used by estimators so that an
// estimator seeded with the same value as the placement engine still draws
// an independent sequence.
const estimatorStream = 0x9e3779b97f4a7c15

// ErrTooFewSamples is returned when no sample landed inside the sphere.
var ErrTooFewSamples = errors.New("too few integration points")

// DegenerateError reports an estimate that could not be formed because no
// sample fell inside the sphere. It unwraps to ErrTooFewSamples.
type DegenerateError struct {
	Samples int64
	Radius  float64
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("intersect: %d samples, none inside sphere of radius %g: %v",
		e.Samples, e.Radius, ErrTooFewSamples)
}

func (e *DegenerateError) Unwrap() error { return ErrTooFewSamples }

// Estimator classifies spheres against boxes and estimates their
// intersection volume. It owns its own random stream and is not safe for
// concurrent use.
type Estimator struct {
	samples int64
	rng     *rand.Rand
}

// NewEstimator returns an estimator drawing samples points per estimate
// from a stream seeded with seed.
func NewEstimator(samples int64, seed uint64) *Estimator {
	return &Estimator{
		samples: samples,
		rng:     rand.New(rand.NewPCG(seed, estimatorStream)),
	}
}

// Samples returns the number of points drawn per estimate.
func (e *Estimator) Samples() int64 {
	return e.samples
}

// Classify returns the position of s relative to b.
func (e *Estimator) Classify(b geom.Box, s geom.Sphere) geom.Position {
	return geom.Classify(b, s)
}

// EstimateVolume estimates the volume of b ∩ s.
//
// Points are drawn uniformly in the bounding cube of s. The estimate is
// the fraction of in-sphere points that also lie in b, scaled by the
// analytic sphere volume, so the cube volume never enters the result.
func (e *Estimator) EstimateVolume(b geom.Box, s geom.Sphere) (float64, error) {
	diameter := 2 * s.Radius
	origin := s.Bounds().Min

	var inSphere, inBoth int64
	for i := int64(0); i < e.samples; i++ {
		p := r3.Vec{
			X: origin.X + e.rng.Float64()*diameter,
			Y: origin.Y + e.rng.Float64()*diameter,
			Z: origin.Z + e.rng.Float64()*diameter,
		}
		if !s.IsPointInside(p) {
			continue
		}
		inSphere++
		if b.IsPointInside(p) {
			inBoth++
		}
	}

	if inSphere == 0 {
		return 0, &DegenerateError{Samples: e.samples, Radius: s.Radius}
	}
	return float64(inBoth) * s.Volume() / float64(inSphere), nil
}

// ClippedVolume returns the volume of s that lies within b together with
// the classification used to obtain it. Only partially intersecting
// spheres are sampled.
func (e *Estimator) ClippedVolume(b geom.Box, s geom.Sphere) (float64, geom.Position, error) {
	pos := geom.Classify(b, s)
	switch pos {
	case geom.Inside:
		return s.Volume(), pos, nil
	case geom.Outside:
		return 0, pos, nil
	}
	v, err := e.EstimateVolume(b, s)
	if err != nil {
		return 0, pos, err
	}
	return v, pos, nil
}

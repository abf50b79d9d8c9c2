package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sphere is a spherical inclusion. It is a value type: moving a candidate
// means constructing a new Sphere with WithCenter.
type Sphere struct {
	Center r3.Vec  `json:"center" yaml:"center"`
	Radius float64 `json:"radius" yaml:"radius"`
}

// NewSphere returns a sphere with the given center and radius.
func NewSphere(center r3.Vec, radius float64) Sphere {
	return Sphere{Center: center, Radius: radius}
}

// RadiusFromVolume returns the radius of the sphere with volume v.
func RadiusFromVolume(v float64) float64 {
	return math.Cbrt(3.0 / 4.0 * v / math.Pi)
}

// WithCenter returns a copy of s moved to center c.
func (s Sphere) WithCenter(c r3.Vec) Sphere {
	return Sphere{Center: c, Radius: s.Radius}
}

// Volume returns 4/3·π·r³.
func (s Sphere) Volume() float64 {
	return 4.0 * math.Pi * s.Radius * s.Radius * s.Radius / 3.0
}

// CollidesWith reports whether the distance between the centers is at most
// the sum of the radii. Touching spheres collide.
func (s Sphere) CollidesWith(other Sphere) bool {
	return r3.Norm(r3.Sub(other.Center, s.Center)) <= s.Radius+other.Radius
}

// IsPointInside reports whether p lies in the closed ball.
func (s Sphere) IsPointInside(p r3.Vec) bool {
	return r3.Norm(r3.Sub(p, s.Center)) <= s.Radius
}

// SignedDistance returns the distance from p to the surface, negative inside.
func (s Sphere) SignedDistance(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, s.Center)) - s.Radius
}

// Bounds returns the axis-aligned cube enclosing the sphere.
func (s Sphere) Bounds() Box {
	r := r3.Vec{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return Box{Min: r3.Sub(s.Center, r), Max: r3.Add(s.Center, r)}
}

// Package kernel defines the abstract solid-modeling interface used to
// preview an RVE. Implementations provide primitives and boolean
// operations behind this interface so the phase construction in
// tessellate does not depend on a particular backend.
package kernel

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/rvegen/pkg/geom"
)

// Solid is an opaque handle to a kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() geom.Box

	// Distance returns the signed distance from p to the surface,
	// negative inside.
	Distance(p r3.Vec) float64
}

// Kernel is the abstract solid-modeling interface.
type Kernel interface {
	// Primitives, placed in world coordinates.
	Box(b geom.Box) Solid
	Sphere(s geom.Sphere) Solid

	// Boolean operations
	Union(solids ...Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// STLWriter is implemented by kernels that can export a mesh as STL.
type STLWriter interface {
	WriteSTL(m *Mesh, path string) error
}

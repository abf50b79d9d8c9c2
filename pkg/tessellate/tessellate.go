// Package tessellate builds the two material phases of an RVE as kernel
// solids and produces one triangle mesh per phase. The solids mirror the
// CSG the Gmsh script performs: each sphere clipped to the domain box,
// and the box with every sphere removed.
package tessellate

import (
	"fmt"

	"github.com/chazu/rvegen/pkg/geom"
	"github.com/chazu/rvegen/pkg/kernel"
	"github.com/chazu/rvegen/pkg/rve"
)

// Phase names used for mesh names.
const (
	PhaseMatrix     = "matrix"
	PhaseInclusions = "inclusions"
)

// Phases returns the matrix (box minus spheres) and the inclusion phase
// (box intersected with the union of spheres). inclusions is nil when the
// list is empty, in which case matrix is the bare box.
func Phases(k kernel.Kernel, domain geom.Box, spheres []geom.Sphere) (matrix, inclusions kernel.Solid) {
	box := k.Box(domain)
	if len(spheres) == 0 {
		return box, nil
	}

	solids := make([]kernel.Solid, len(spheres))
	for i, s := range spheres {
		solids[i] = k.Sphere(s)
	}
	union := k.Union(solids...)

	return k.Difference(box, union), k.Intersection(box, union)
}

// Tessellate meshes both phases of res. The tessellator is read-only and
// never mutates the result.
func Tessellate(res *rve.Result, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if res == nil {
		return nil, nil
	}

	matrix, inclusions := Phases(k, res.Domain, res.Inclusions)

	var meshes []*kernel.Mesh
	for _, phase := range []struct {
		name  string
		solid kernel.Solid
	}{
		{PhaseMatrix, matrix},
		{PhaseInclusions, inclusions},
	} {
		if phase.solid == nil {
			continue
		}
		mesh, err := k.ToMesh(phase.solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", phase.name, err)
		}
		mesh.Name = phase.name
		meshes = append(meshes, mesh)
	}

	return meshes, nil
}

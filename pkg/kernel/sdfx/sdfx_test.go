package sdfx

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/rvegen/pkg/geom"
	"github.com/chazu/rvegen/pkg/kernel"
)

func box(minX, minY, minZ, maxX, maxY, maxZ float64) geom.Box {
	return geom.NewBox(r3.Vec{X: minX, Y: minY, Z: minZ}, r3.Vec{X: maxX, Y: maxY, Z: maxZ})
}

func TestNewDefaultCells(t *testing.T) {
	if got := New(0).Cells(); got != DefaultMeshCells {
		t.Errorf("New(0).Cells() = %d, want %d", got, DefaultMeshCells)
	}
	if got := New(32).Cells(); got != 32 {
		t.Errorf("New(32).Cells() = %d, want 32", got)
	}
}

func TestBox(t *testing.T) {
	k := New(0)
	mesh, err := k.ToMesh(k.Box(box(0, 0, 0, 4, 2, 1)))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
}

func TestBoxPlacedByMinCorner(t *testing.T) {
	k := New(0)
	want := box(-1, 2, 10, 1, 3, 14)
	bb := k.Box(want).BoundingBox()

	const tol = 0.01
	for _, c := range []struct {
		name      string
		got, want r3.Vec
	}{
		{"min", bb.Min, want.Min},
		{"max", bb.Max, want.Max},
	} {
		if r3.Norm(r3.Sub(c.got, c.want)) > tol {
			t.Errorf("bounding box %s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestSphereDistanceMatchesGeometry(t *testing.T) {
	k := New(0)
	sp := geom.NewSphere(r3.Vec{X: 1, Y: -2, Z: 0.5}, 0.75)
	s := k.Sphere(sp)

	points := []r3.Vec{
		sp.Center,
		{X: 1.75, Y: -2, Z: 0.5},
		{X: 3, Y: 0, Z: 0},
		{X: 0.5, Y: -2.25, Z: 0.25},
	}
	for _, p := range points {
		if got, want := s.Distance(p), sp.SignedDistance(p); math.Abs(got-want) > 1e-9 {
			t.Errorf("Distance(%v) = %v, want %v", p, got, want)
		}
	}
}

func TestBoxDistanceSign(t *testing.T) {
	k := New(0)
	s := k.Box(box(0, 0, 0, 1, 1, 1))
	if d := s.Distance(r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}); d >= 0 {
		t.Errorf("center distance = %v, want negative", d)
	}
	if d := s.Distance(r3.Vec{X: 2, Y: 0.5, Z: 0.5}); math.Abs(d-1) > 1e-9 {
		t.Errorf("distance outside +x face = %v, want 1", d)
	}
}

func TestBoxMeshVolume(t *testing.T) {
	k := New(0)
	b := box(-1, -1, -1, 1, 1, 1)
	mesh, err := k.ToMesh(k.Box(b))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if got, want := mesh.Volume(), b.Volume(); math.Abs(got-want)/want > 0.05 {
		t.Errorf("mesh volume = %v, want ~%v", got, want)
	}
}

func TestSphereMeshVolume(t *testing.T) {
	k := New(0)
	sp := geom.NewSphere(r3.Vec{}, 1)
	mesh, err := k.ToMesh(k.Sphere(sp))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if got, want := mesh.Volume(), sp.Volume(); math.Abs(got-want)/want > 0.05 {
		t.Errorf("mesh volume = %v, want ~%v", got, want)
	}
}

func TestDifference(t *testing.T) {
	k := New(0)
	b := k.Box(box(-1, -1, -1, 1, 1, 1))
	hole := k.Sphere(geom.NewSphere(r3.Vec{}, 0.5))

	diff := k.Difference(b, hole)
	if d := diff.Distance(r3.Vec{}); d <= 0 {
		t.Errorf("distance at removed center = %v, want positive", d)
	}
	if d := diff.Distance(r3.Vec{X: 0.8, Y: 0.8, Z: 0.8}); d >= 0 {
		t.Errorf("distance in remaining corner = %v, want negative", d)
	}
}

func TestIntersection(t *testing.T) {
	k := New(0)
	b := k.Box(box(0, 0, 0, 1, 1, 1))
	sp := k.Sphere(geom.NewSphere(r3.Vec{}, 1))

	inter := k.Intersection(b, sp)
	if d := inter.Distance(r3.Vec{X: 0.2, Y: 0.2, Z: 0.2}); d >= 0 {
		t.Errorf("distance inside octant = %v, want negative", d)
	}
	if d := inter.Distance(r3.Vec{X: -0.2, Y: 0.2, Z: 0.2}); d <= 0 {
		t.Errorf("distance outside box = %v, want positive", d)
	}
	if d := inter.Distance(r3.Vec{X: 0.9, Y: 0.9, Z: 0.9}); d <= 0 {
		t.Errorf("distance outside sphere = %v, want positive", d)
	}
}

func TestUnion(t *testing.T) {
	k := New(0)
	a := k.Sphere(geom.NewSphere(r3.Vec{X: -2}, 0.5))
	b := k.Sphere(geom.NewSphere(r3.Vec{X: 2}, 0.5))
	c := k.Sphere(geom.NewSphere(r3.Vec{Y: 2}, 0.5))

	u := k.Union(a, b, c)
	for _, p := range []r3.Vec{{X: -2}, {X: 2}, {Y: 2}} {
		if d := u.Distance(p); d >= 0 {
			t.Errorf("distance at %v = %v, want negative", p, d)
		}
	}
	if d := u.Distance(r3.Vec{}); d <= 0 {
		t.Errorf("distance between spheres = %v, want positive", d)
	}
	if k.Union(a) != a {
		t.Error("single-solid union should return its argument")
	}
}

func TestWriteSTL(t *testing.T) {
	k := New(16)
	mesh, err := k.ToMesh(k.Sphere(geom.NewSphere(r3.Vec{}, 1)))
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}
	path := filepath.Join(t.TempDir(), "sphere.stl")
	if err := k.WriteSTL(mesh, path); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	// Larger than the 84 byte binary STL header.
	if info.Size() <= 84 {
		t.Errorf("stl size = %d, want triangles after the header", info.Size())
	}
}

func TestWriteSTLErrors(t *testing.T) {
	k := New(16)
	mesh, err := k.ToMesh(k.Sphere(geom.NewSphere(r3.Vec{}, 1)))
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}

	t.Run("path is a directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "sub")
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := k.WriteSTL(mesh, dir); err == nil {
			t.Error("expected error writing over a directory")
		}
	})

	t.Run("missing parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "absent", "sphere.stl")
		if err := k.WriteSTL(mesh, path); err == nil {
			t.Error("expected error for missing parent directory")
		}
	})

	t.Run("empty mesh", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.stl")
		if err := k.WriteSTL(&kernel.Mesh{}, path); err == nil {
			t.Error("expected error for empty mesh")
		}
	})
}

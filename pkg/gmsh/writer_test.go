package gmsh

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/rvegen/pkg/geom"
)

func sampleWriter() *Writer {
	domain := geom.NewBox(r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 1, Y: 1, Z: 1})
	inclusions := []geom.Sphere{
		geom.NewSphere(r3.Vec{X: -0.8, Y: -0.8, Z: -0.8}, 0.35),
		geom.NewSphere(r3.Vec{X: 0.5, Y: -0.9, Z: -0.8}, 0.3),
		geom.NewSphere(r3.Vec{X: 0.8, Y: 0.5, Z: -0.5}, 0.45),
	}
	return NewWriter(domain, inclusions, 0)
}

func render(t *testing.T, w *Writer) string {
	t.Helper()
	var buf bytes.Buffer
	n, err := w.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo reported %d bytes, wrote %d", n, buf.Len())
	}
	return buf.String()
}

func TestWriteParameters(t *testing.T) {
	out := render(t, sampleWriter())

	for _, want := range []string{
		"xmin = { -1, -1, -1 };\n",
		"xmax = { 1, 1, 1 };\n",
		"numInclusions = 3;\n",
		"xIncl = { -0.8, 0.5, 0.8 };\n",
		"yIncl = { -0.8, -0.9, 0.5 };\n",
		"zIncl = { -0.8, -0.8, -0.5 };\n",
		"rIncl = { 0.35, 0.3, 0.45 };\n",
		"numCircleDiscretizationPoints = 12;\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestWriteBoilerplate(t *testing.T) {
	out := render(t, sampleWriter())

	for _, want := range []string{
		"SetFactory(\"OpenCASCADE\");\n",
		"Mesh.MshFileVersion = 2.2;\n",
		"Geometry.OCCBooleanPreserveNumbering = 1;\n",
		"Box(1) = {xmin[0], xmin[1], xmin[2], xmax[0]-xmin[0], xmax[1]-xmin[1], xmax[2]-xmin[2]};\n",
		"  Sphere(tempID) = {xIncl[i], yIncl[i], zIncl[i], rIncl[i]};\n",
		"  BooleanIntersection(id) = { Volume{tempID}; Delete; }{ Volume{1}; };\n",
		"Physical Volume(inclusions) = {2:numInclusions+1};\n",
		"volumes() = BooleanFragments{ Volume{1}; Delete; }{ Volume{2:numInclusions+1}; Delete; };\n",
		"Physical Volume(matrix) = volumes(#volumes()-1);",
		"Mesh.MeshSizeFromCurvature = numCircleDiscretizationPoints;",
		"// The physical volume tags of the original spheres are retained during BooleanFragments.\n",
		"// However, the physical volume tag of the outside box must be set (actually I am not sure that it would not be retained as well, but tutorial16.geo did it this way).\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.HasSuffix(out, "//Coherence Mesh;\n") {
		t.Errorf("output should end with the coherence comment, got tail %q", out[len(out)-40:])
	}
}

func TestVolumeFractionHeader(t *testing.T) {
	tests := []struct {
		name   string
		vf     float64
		prefix string
	}{
		{"unset", 0, "// *****"},
		{"negative", -1, "// *****"},
		{"positive", 0.3021, "// Volume fraction = 0.3021\n// *****"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := sampleWriter()
			w.VolumeFraction = tt.vf
			out := render(t, w)
			if !strings.HasPrefix(out, tt.prefix) {
				t.Errorf("output starts with %q, want prefix %q", out[:40], tt.prefix)
			}
		})
	}
}

func TestWriteEmptyInclusions(t *testing.T) {
	w := sampleWriter()
	w.Inclusions = nil
	out := render(t, w)

	for _, want := range []string{
		"numInclusions = 0;\n",
		"xIncl = { };\n",
		"rIncl = { };\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestCircleDiscretizationOverride(t *testing.T) {
	w := sampleWriter()
	w.CircleDiscretizationPoints = 24
	out := render(t, w)
	if !strings.Contains(out, "numCircleDiscretizationPoints = 24;\n") {
		t.Error("override not written")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{-1, "-1"},
		{0.1, "0.1"},
		{1.0 / 3.0, "0.3333333333333333"},
		{1e-7, "1e-07"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rve.geo")
	w := sampleWriter()
	if err := w.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != render(t, w) {
		t.Error("file contents differ from WriteTo output")
	}
}

func TestWriteFileBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "rve.geo")
	if err := sampleWriter().WriteFile(path); err == nil {
		t.Error("expected error for missing directory")
	}
}

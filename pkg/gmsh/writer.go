// Package gmsh writes an RVE as a Gmsh .geo script. The script declares
// the domain and inclusion parameters, then asks Gmsh's OpenCASCADE
// kernel to clip every sphere to the domain box and fragment the box into
// a conformal two-material mesh (matrix and inclusions).
package gmsh

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/chazu/rvegen/pkg/geom"
)

// DefaultCircleDiscretizationPoints is the number of line segments Gmsh
// uses to approximate a full circle when sizing the mesh by curvature.
const DefaultCircleDiscretizationPoints = 12

// Writer renders one RVE. Inclusions are written in slice order.
type Writer struct {
	Domain     geom.Box
	Inclusions []geom.Sphere

	// VolumeFraction is written as a header comment when positive.
	VolumeFraction float64

	CircleDiscretizationPoints int
}

// NewWriter returns a writer with the default mesh resolution.
func NewWriter(domain geom.Box, inclusions []geom.Sphere, volumeFraction float64) *Writer {
	return &Writer{
		Domain:                     domain,
		Inclusions:                 inclusions,
		VolumeFraction:             volumeFraction,
		CircleDiscretizationPoints: DefaultCircleDiscretizationPoints,
	}
}

// WriteFile writes the script to path, replacing any existing file.
func (w *Writer) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gmsh: %w", err)
	}
	if _, err := w.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("gmsh: %w", err)
	}
	return nil
}

// WriteTo renders the script into dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	var buf bytes.Buffer
	if err := script.Execute(&buf, w.data()); err != nil {
		return 0, fmt.Errorf("gmsh: render script: %w", err)
	}
	n, err := buf.WriteTo(dst)
	if err != nil {
		return n, fmt.Errorf("gmsh: %w", err)
	}
	return n, nil
}

// scriptData is the template view of a Writer.
type scriptData struct {
	VolumeFraction             float64
	Min, Max                   [3]float64
	NumInclusions              int
	X, Y, Z, R                 []float64
	CircleDiscretizationPoints int
}

func (w *Writer) data() scriptData {
	d := scriptData{
		VolumeFraction:             w.VolumeFraction,
		Min:                        [3]float64{w.Domain.Min.X, w.Domain.Min.Y, w.Domain.Min.Z},
		Max:                        [3]float64{w.Domain.Max.X, w.Domain.Max.Y, w.Domain.Max.Z},
		NumInclusions:              len(w.Inclusions),
		CircleDiscretizationPoints: w.CircleDiscretizationPoints,
	}
	for _, s := range w.Inclusions {
		d.X = append(d.X, s.Center.X)
		d.Y = append(d.Y, s.Center.Y)
		d.Z = append(d.Z, s.Center.Z)
		d.R = append(d.R, s.Radius)
	}
	return d
}

// formatNumber writes the shortest decimal that round-trips.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatList renders a Gmsh list literal, e.g. "{ 0.1, 0.2 }".
func formatList(vs []float64) string {
	if len(vs) == 0 {
		return "{ }"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatNumber(v)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

var script = template.Must(template.New("geo").Funcs(template.FuncMap{
	"num":  formatNumber,
	"list": formatList,
}).Parse(scriptTemplate))

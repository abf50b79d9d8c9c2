package geom

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Face indexes the six entries returned by Box.SignedFaceDistances.
type Face int

const (
	FaceMinX Face = iota
	FaceMaxX
	FaceMinY
	FaceMaxY
	FaceMinZ
	FaceMaxZ
)

func (f Face) String() string {
	switch f {
	case FaceMinX:
		return "-x"
	case FaceMaxX:
		return "+x"
	case FaceMinY:
		return "-y"
	case FaceMaxY:
		return "+y"
	case FaceMinZ:
		return "-z"
	case FaceMaxZ:
		return "+z"
	default:
		return "unknown"
	}
}

// Box is an axis-aligned box with Min[i] <= Max[i] on every axis.
type Box struct {
	Min r3.Vec `json:"min" yaml:"min"`
	Max r3.Vec `json:"max" yaml:"max"`
}

// NewBox returns the box spanning min and max.
func NewBox(min, max r3.Vec) Box {
	return Box{Min: min, Max: max}
}

// Validate reports an error if Min exceeds Max on any axis.
func (b Box) Validate() error {
	mins, maxs := components(b.Min), components(b.Max)
	for i := range mins {
		if mins[i] > maxs[i] {
			return fmt.Errorf("box: min %s %.6g exceeds max %.6g", axisName(i), mins[i], maxs[i])
		}
	}
	return nil
}

// Size returns the edge lengths.
func (b Box) Size() r3.Vec {
	return r3.Sub(b.Max, b.Min)
}

// Center returns the midpoint of the box.
func (b Box) Center() r3.Vec {
	return r3.Add(b.Min, r3.Scale(0.5, b.Size()))
}

// Volume returns the product of the edge lengths.
func (b Box) Volume() float64 {
	s := b.Size()
	return s.X * s.Y * s.Z
}

// Expand returns b grown outward by d on every face.
func (b Box) Expand(d float64) Box {
	v := r3.Vec{X: d, Y: d, Z: d}
	return Box{Min: r3.Sub(b.Min, v), Max: r3.Add(b.Max, v)}
}

// IsPointInside reports whether p lies within the box, bounds included.
func (b Box) IsPointInside(p r3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// SignedFaceDistances returns the signed distance of p from each face,
// indexed by Face. A positive value means p is outside that face.
func (b Box) SignedFaceDistances(p r3.Vec) [6]float64 {
	return [6]float64{
		FaceMinX: b.Min.X - p.X,
		FaceMaxX: p.X - b.Max.X,
		FaceMinY: b.Min.Y - p.Y,
		FaceMaxY: p.Y - b.Max.Y,
		FaceMinZ: b.Min.Z - p.Z,
		FaceMaxZ: p.Z - b.Max.Z,
	}
}

func components(v r3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func axisName(i int) string {
	return [3]string{"x", "y", "z"}[i]
}

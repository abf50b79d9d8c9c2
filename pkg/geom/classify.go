package geom

import "math"

// Position is the relation of a sphere to a box.
type Position int

const (
	Inside Position = iota
	Outside
	Partial
)

func (p Position) String() string {
	switch p {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	case Partial:
		return "partial"
	default:
		return "unknown"
	}
}

// Classify determines whether s lies fully inside b, fully outside b, or
// crosses its boundary.
//
// Each axis is classified independently from the two face distances of
// that axis. An outside axis means the sphere cannot touch the box, so
// Outside takes precedence over Partial, which takes precedence over Inside.
func Classify(b Box, s Sphere) Position {
	d := b.SignedFaceDistances(s.Center)
	var partial bool
	for axis := 0; axis < 3; axis++ {
		switch classifyAxis(d[2*axis], d[2*axis+1], s.Radius) {
		case Outside:
			return Outside
		case Partial:
			partial = true
		}
	}
	if partial {
		return Partial
	}
	return Inside
}

// classifyAxis classifies a sphere against the slab between the min and
// max faces of one axis:
//
//	------min-------max-------
func classifyAxis(distMin, distMax, r float64) Position {
	switch {
	case distMin > 0: // center before min
		if r <= distMin {
			return Outside
		}
		return Partial
	case distMax > 0: // center after max
		if r <= distMax {
			return Outside
		}
		return Partial
	default:
		if r <= math.Abs(distMin) && r <= math.Abs(distMax) {
			return Inside
		}
		return Partial
	}
}

// IsInside is a strict containment test derived from the face distances:
// the center is inside every face and no face is closer than the radius.
func IsInside(b Box, s Sphere) bool {
	for _, d := range b.SignedFaceDistances(s.Center) {
		if d > 0 {
			return false
		}
		if math.Abs(d) < s.Radius {
			return false
		}
	}
	return true
}

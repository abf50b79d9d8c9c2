// Package geom defines the geometric primitives of an RVE: spherical
// inclusions, the axis-aligned domain box, and the exact classification
// of a sphere against a box (inside, outside or partially intersecting).
package geom

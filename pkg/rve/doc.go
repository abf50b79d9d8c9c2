// Package rve generates Representative Volume Elements: an axis-aligned
// domain populated with non-overlapping spherical inclusions by random
// sequential addition until a target volume fraction is reached.
//
// Inclusions may stick out of the domain by up to half their radius. The
// volume fraction counts only the part of each inclusion inside the
// domain; partially clipped inclusions are measured by Monte Carlo
// integration (see package intersect).
//
// A run is single-threaded and fully determined by its Config.
package rve

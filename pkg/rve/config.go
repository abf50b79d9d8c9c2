package rve

import (
	"log/slog"

	"github.com/chazu/rvegen/pkg/geom"
	"github.com/chazu/rvegen/pkg/intersect"
)

const (
	// DefaultIntegrationPoints is the Monte Carlo sample count per
	// partially clipped inclusion.
	DefaultIntegrationPoints = intersect.DefaultSamples

	// DefaultTriesPerInclusion bounds the collision retries for a single
	// inclusion before the run fails.
	DefaultTriesPerInclusion = 100

	// DefaultSeed makes runs reproducible when no seed is given.
	DefaultSeed = 13
)

// Config holds every input of a placement run. It is validated by the
// caller (see package config); the builder assumes sane values.
type Config struct {
	Domain               geom.Box
	RadiusMin            float64
	RadiusMax            float64
	TargetVolumeFraction float64
	IntegrationPoints    int64
	TriesPerInclusion    int
	Seed                 uint64

	// Logger receives progress records. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config for the given domain, radius range and
// target fraction with default sample count, retry budget and seed.
func DefaultConfig(domain geom.Box, radiusMin, radiusMax, target float64) Config {
	return Config{
		Domain:               domain,
		RadiusMin:            radiusMin,
		RadiusMax:            radiusMax,
		TargetVolumeFraction: target,
		IntegrationPoints:    DefaultIntegrationPoints,
		TriesPerInclusion:    DefaultTriesPerInclusion,
		Seed:                 DefaultSeed,
	}
}

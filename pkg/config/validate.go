package config

import (
	"fmt"
	"math"

	"github.com/chazu/rvegen/pkg/kernel/sdfx"
)

// Advisory thresholds.
const (
	// jammingFraction is the saturation coverage of random sequential
	// addition of equal spheres. Targets above it rarely complete.
	jammingFraction = 0.38

	// minSamples is the sample count below which clipped-volume estimates
	// get noisy.
	minSamples = 10_000
)

// ValidationSeverity indicates whether a finding blocks a run or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks the run
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Field    string             // yaml key of the offending parameter
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Field, e.Message)
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Err joins the blocking errors into one error, or returns nil.
func (r ValidationResult) Err() error {
	switch len(r.Errors) {
	case 0:
		return nil
	case 1:
		return r.Errors[0]
	default:
		return fmt.Errorf("%w (and %d more)", r.Errors[0], len(r.Errors)-1)
	}
}

// Validate checks p. Errors must be fixed before a run; warnings flag
// parameters that are legal but likely to fail or give poor estimates.
// Validate never mutates p.
func (p *Params) Validate() ValidationResult {
	var res ValidationResult
	res.Errors = append(res.Errors, p.validateDomain()...)
	res.Errors = append(res.Errors, p.validateRadii()...)
	res.Errors = append(res.Errors, p.validateRun()...)
	if res.OK() {
		res.Warnings = p.advise()
	}
	return res
}

func errorf(field, format string, args ...any) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

func warnf(field, format string, args ...any) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

func (p *Params) validateDomain() []ValidationError {
	var errs []ValidationError
	if len(p.Domain.Min) != 3 {
		errs = append(errs, errorf("domain.min", "need 3 coordinates, got %d", len(p.Domain.Min)))
	}
	if len(p.Domain.Max) != 3 {
		errs = append(errs, errorf("domain.max", "need 3 coordinates, got %d", len(p.Domain.Max)))
	}
	if len(errs) > 0 {
		return errs
	}
	for i, axis := range []string{"x", "y", "z"} {
		lo, hi := p.Domain.Min[i], p.Domain.Max[i]
		if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
			errs = append(errs, errorf("domain", "%s bounds must be finite", axis))
			continue
		}
		if lo > hi {
			errs = append(errs, errorf("domain", "%s min %g exceeds max %g", axis, lo, hi))
		}
		if lo == hi {
			errs = append(errs, errorf("domain", "%s extent is zero", axis))
		}
	}
	return errs
}

func (p *Params) validateRadii() []ValidationError {
	var errs []ValidationError
	if !(p.RadiusMin > 0) {
		errs = append(errs, errorf("radius_min", "must be positive, got %g", p.RadiusMin))
	}
	if !(p.RadiusMax > 0) {
		errs = append(errs, errorf("radius_max", "must be positive, got %g", p.RadiusMax))
	}
	if p.RadiusMin > p.RadiusMax {
		errs = append(errs, errorf("radius_min", "%g exceeds radius_max %g", p.RadiusMin, p.RadiusMax))
	}
	return errs
}

func (p *Params) validateRun() []ValidationError {
	var errs []ValidationError
	if !(p.TargetVolumeFraction > 0 && p.TargetVolumeFraction < 1) {
		errs = append(errs, errorf("target_volume_fraction", "must be in (0, 1), got %g", p.TargetVolumeFraction))
	}
	if p.IntegrationPoints <= 0 {
		errs = append(errs, errorf("integration_points", "must be positive, got %d", p.IntegrationPoints))
	}
	if p.TriesPerInclusion <= 0 {
		errs = append(errs, errorf("tries_per_inclusion", "must be positive, got %d", p.TriesPerInclusion))
	}
	if p.Mesh.CircleDiscretizationPoints <= 0 {
		errs = append(errs, errorf("mesh.circle_discretization_points", "must be positive, got %d", p.Mesh.CircleDiscretizationPoints))
	}
	return errs
}

// advise runs the advisory checks. It assumes the blocking checks passed.
func (p *Params) advise() []ValidationError {
	var warns []ValidationError
	if p.TargetVolumeFraction > jammingFraction {
		warns = append(warns, warnf("target_volume_fraction",
			"%g is above the random sequential addition limit of about %g; the run will likely exhaust its retries",
			p.TargetVolumeFraction, jammingFraction))
	}
	size := p.Domain.Box().Size()
	shortest := math.Min(size.X, math.Min(size.Y, size.Z))
	if p.RadiusMax > shortest/2 {
		warns = append(warns, warnf("radius_max",
			"%g is larger than half the shortest domain edge (%g)", p.RadiusMax, shortest))
	}
	if p.IntegrationPoints < minSamples {
		warns = append(warns, warnf("integration_points",
			"%d samples give noisy clipped-volume estimates; use at least %d", p.IntegrationPoints, minSamples))
	}
	if p.Mesh.PreviewCells < 0 {
		warns = append(warns, warnf("mesh.preview_cells",
			"negative value %d falls back to %d", p.Mesh.PreviewCells, sdfx.DefaultMeshCells))
	}
	return warns
}

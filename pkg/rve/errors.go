package rve

import (
	"errors"
	"fmt"
)

// ErrPlacementExhausted means an inclusion could not be placed without
// collisions within the retry budget. The configuration is infeasible at
// the requested packing density.
var ErrPlacementExhausted = errors.New("could not fit inclusion")

// ErrOutsideAccepted signals a defect: an accepted inclusion was
// classified as lying entirely outside the domain.
var ErrOutsideAccepted = errors.New("accepted inclusion lies outside the domain")

// PlacementError carries the state of a run that exhausted its retry
// budget. It unwraps to ErrPlacementExhausted.
type PlacementError struct {
	Radius         float64 // radius of the inclusion that did not fit
	VolumeFraction float64 // accumulated fraction when the run stopped
	Target         float64
	Tries          int
	Accepted       int // inclusions placed before the failure
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("rve: could not fit sphere with radius=%g after %d tries: volume fraction %g of target %g (%d inclusions placed)",
		e.Radius, e.Tries, e.VolumeFraction, e.Target, e.Accepted)
}

func (e *PlacementError) Unwrap() error { return ErrPlacementExhausted }

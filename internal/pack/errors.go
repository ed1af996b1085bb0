package pack

import "errors"

// Sentinel errors for packing.
//
// ErrAnnotationCount is the only fatal mid-pack condition: marking a
// speaker change on a segment with several annotations would mismark the
// boundary and silently corrupt the downstream training signal, so the
// whole batch is rejected instead.
var (
	// ErrAnnotationCount indicates a change symbol was requested for a
	// merge base that does not have exactly one annotation.
	ErrAnnotationCount = errors.New("change symbol requires exactly one annotation per merge base")

	// ErrInvalidGap indicates a negative gap duration.
	ErrInvalidGap = errors.New("gap must not be negative")

	// ErrInvalidDurationFactor indicates a non-positive duration factor.
	ErrInvalidDurationFactor = errors.New("duration factor must be positive")

	// ErrInvalidMaxDuration indicates a negative max duration.
	ErrInvalidMaxDuration = errors.New("max duration must not be negative")
)

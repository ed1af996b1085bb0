package segment

import "errors"

// Sentinel errors for segment validation.
// Wrap with context at call site using fmt.Errorf and %w.
var (
	// ErrEmptyID indicates a segment or annotation without a stable identity.
	ErrEmptyID = errors.New("segment has empty id")

	// ErrNegativeDuration indicates a negative segment or annotation duration.
	ErrNegativeDuration = errors.New("negative duration")

	// ErrAnnotationOutOfBounds indicates an annotation extending past the
	// end of its segment.
	ErrAnnotationOutOfBounds = errors.New("annotation out of segment bounds")
)

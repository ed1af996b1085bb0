package segment

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-cutpack/internal/format"
)

// Annotation is a transcript span attached to a Segment: a piece of text
// with timing relative to the segment start and optional metadata.
type Annotation struct {
	ID       string        // Stable identity, unique within a collection.
	Start    time.Duration // Offset from the segment start.
	Duration time.Duration // Length of the annotated span.
	Text     string        // Free-text transcript.
	Language string        // Optional ISO 639-1 code (e.g. "en", "pt-br").
	Speaker  string        // Optional speaker label.
}

// End returns the offset at which the annotated span stops.
func (a Annotation) End() time.Duration {
	return a.Start + a.Duration
}

// Segment is a time-bounded span of audio plus zero or more annotations.
// It is the atomic packing unit.
//
// Segments are immutable by convention: PadTo and Append return new
// values and never modify the receiver. Composites built during packing
// are ordinary Segments; downstream consumers treat them identically.
type Segment struct {
	ID          string        // Stable identity, unique within a collection.
	Duration    time.Duration // Total span, including any trailing silence.
	Annotations []Annotation
}

// String returns a human-readable representation for logging.
func (s Segment) String() string {
	return fmt.Sprintf("segment %s: %s, %d annotation(s)",
		s.ID, format.Seconds(s.Duration), len(s.Annotations))
}

// Clone returns a deep copy of the segment. The returned value shares no
// annotation storage with the receiver.
func (s Segment) Clone() Segment {
	out := s
	if s.Annotations != nil {
		out.Annotations = make([]Annotation, len(s.Annotations))
		copy(out.Annotations, s.Annotations)
	}
	return out
}

// PadTo returns a copy of the segment extended with trailing silence so
// that its duration equals total. Annotations are unchanged: silence
// carries no text. Returns the segment as-is when total does not exceed
// the current duration.
func (s Segment) PadTo(total time.Duration) Segment {
	if total <= s.Duration {
		return s
	}
	out := s.Clone()
	out.Duration = total
	return out
}

// Append returns a composite segment: the receiver followed by other.
// The other segment's annotations are time-shifted by the receiver's
// duration (which includes any trailing silence added by PadTo), so each
// annotation keeps its position in the composite audio. Annotation order
// is preserved: the receiver's annotations come first.
//
// The composite gets a fresh identity so it never collides with its
// constituents in a collection.
func (s Segment) Append(other Segment) Segment {
	annotations := make([]Annotation, 0, len(s.Annotations)+len(other.Annotations))
	annotations = append(annotations, s.Annotations...)
	for _, a := range other.Annotations {
		a.Start += s.Duration
		annotations = append(annotations, a)
	}
	return Segment{
		ID:          uuid.NewString(),
		Duration:    s.Duration + other.Duration,
		Annotations: annotations,
	}
}

// Validate checks the segment's structural invariants: non-empty identity,
// non-negative durations, and annotations contained within the segment span.
func (s Segment) Validate() error {
	if s.ID == "" {
		return ErrEmptyID
	}
	if s.Duration < 0 {
		return fmt.Errorf("segment %s: duration %v: %w", s.ID, s.Duration, ErrNegativeDuration)
	}
	for _, a := range s.Annotations {
		if a.Start < 0 || a.Duration < 0 {
			return fmt.Errorf("segment %s: annotation %s: %w", s.ID, a.ID, ErrNegativeDuration)
		}
		if a.End() > s.Duration {
			return fmt.Errorf("segment %s: annotation %s ends at %v beyond segment end %v: %w",
				s.ID, a.ID, a.End(), s.Duration, ErrAnnotationOutOfBounds)
		}
	}
	return nil
}

// FromSeconds converts a duration expressed in (possibly fractional)
// seconds to a time.Duration. Manifests and profiles use float seconds
// on the wire; everything in-process uses time.Duration. Rounded to the
// nearest nanosecond so wire values like 3.228 survive a round trip.
func FromSeconds(sec float64) time.Duration {
	return time.Duration(math.Round(sec * float64(time.Second)))
}

// ToSeconds converts a time.Duration to float seconds for serialization.
func ToSeconds(d time.Duration) float64 {
	return d.Seconds()
}

package pack

import (
	"time"

	"github.com/alnah/go-cutpack/internal/segment"
)

// Stats summarizes the padding cost of batching a collection of segments.
// A training batch pads every segment to the longest one, so the batch
// occupies Padded while only Content of it is real audio.
type Stats struct {
	Count   int           // Number of segments.
	Content time.Duration // Sum of segment durations (silence gaps included).
	Longest time.Duration // Duration of the longest segment.
	Padded  time.Duration // Longest * Count: what the padded batch occupies.
	Waste   time.Duration // Padded - Content: padding overhead.
}

// Utilization returns the fraction of the padded batch that is real
// content, in [0, 1]. An empty batch counts as fully utilized.
func (s Stats) Utilization() float64 {
	if s.Padded == 0 {
		return 1.0
	}
	return float64(s.Content) / float64(s.Padded)
}

// Measure computes padding stats for a batch of segments.
func Measure(segs []segment.Segment) Stats {
	var st Stats
	st.Count = len(segs)
	for _, s := range segs {
		st.Content += s.Duration
		if s.Duration > st.Longest {
			st.Longest = s.Duration
		}
	}
	st.Padded = st.Longest * time.Duration(st.Count)
	st.Waste = st.Padded - st.Content
	return st
}

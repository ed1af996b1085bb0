package pack

import (
	"math/rand"
	"sort"

	"github.com/alnah/go-cutpack/internal/segment"
)

// SortByDuration returns a new slice with the segments ordered by
// descending duration. Largest-first ordering lets long segments anchor
// composites while short ones fill the remaining space, which is what the
// greedy concatenation in Concat relies on.
//
// The sort is stable: equal durations keep their input order, so repeated
// runs over identical input produce identical output.
func SortByDuration(segs []segment.Segment) []segment.Segment {
	out := make([]segment.Segment, len(segs))
	copy(out, segs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Duration > out[j].Duration
	})
	return out
}

// Shuffle returns a new slice with the segments permuted by rng.
// A generator seeded with the same value always yields the same
// permutation for the same input length, keeping experiments reproducible.
// No segment is duplicated or dropped.
func Shuffle(segs []segment.Segment, rng *rand.Rand) []segment.Segment {
	out := make([]segment.Segment, len(segs))
	copy(out, segs)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

package pack

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/alnah/go-cutpack/internal/segment"
)

// Default packing parameters.
const (
	// DefaultGap is the silence inserted between concatenated segments.
	// One second is enough for a model to register separate utterances.
	DefaultGap = time.Second

	// DefaultDurationFactor caps composites at the duration of the longest
	// segment in the batch when no explicit max duration is given.
	DefaultDurationFactor = 1.0
)

// Packer merges short segments of a batch into longer composite segments,
// separated by inserted silence, so that the batch's padded length
// approaches its real content length.
//
// A Packer is not safe for concurrent use: it owns a pseudo-random source.
// Create one per goroutine (see the batch package).
type Packer struct {
	gap            time.Duration
	durationFactor float64
	maxDuration    time.Duration
	changeSymbol   string
	seed           *int64
	rng            *rand.Rand
}

// Option configures a Packer.
type Option func(*Packer)

// WithGap sets the nominal silence duration inserted between two
// concatenated segments. Default: 1s.
func WithGap(d time.Duration) Option {
	return func(p *Packer) {
		p.gap = d
	}
}

// WithDurationFactor sets the multiplier applied to the first ordered
// segment's duration when no explicit max duration is set. Default: 1.0.
func WithDurationFactor(f float64) Option {
	return func(p *Packer) {
		p.durationFactor = f
	}
}

// WithMaxDuration fixes the capacity ceiling for any single output
// segment. When set, the duration factor is ignored.
func WithMaxDuration(d time.Duration) Option {
	return func(p *Packer) {
		p.maxDuration = d
	}
}

// WithSeed switches ordering from descending-duration sort to a
// deterministic shuffle, and seeds the generator used for randomized gaps.
func WithSeed(seed int64) Option {
	return func(p *Packer) {
		p.seed = &seed
	}
}

// WithChangeSymbol sets the text token appended to a merge base's sole
// annotation, marking the utterance boundary for downstream models. It
// also switches the inserted gap from a fixed duration to a uniform draw
// in [0, gap). Every merge base must then have exactly one annotation;
// packing a batch that violates this fails with ErrAnnotationCount.
func WithChangeSymbol(symbol string) Option {
	return func(p *Packer) {
		p.changeSymbol = symbol
	}
}

// WithRand sets the pseudo-random source, overriding the seed-derived or
// time-seeded default. Intended for tests.
func WithRand(rng *rand.Rand) Option {
	return func(p *Packer) {
		p.rng = rng
	}
}

// NewPacker creates a Packer with the given options.
func NewPacker(opts ...Option) (*Packer, error) {
	p := &Packer{
		gap:            DefaultGap,
		durationFactor: DefaultDurationFactor,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.gap < 0 {
		return nil, fmt.Errorf("gap %v: %w", p.gap, ErrInvalidGap)
	}
	if p.durationFactor <= 0 {
		return nil, fmt.Errorf("duration factor %v: %w", p.durationFactor, ErrInvalidDurationFactor)
	}
	if p.maxDuration < 0 {
		return nil, fmt.Errorf("max duration %v: %w", p.maxDuration, ErrInvalidMaxDuration)
	}

	if p.rng == nil {
		if p.seed != nil {
			p.rng = rand.New(rand.NewSource(*p.seed))
		} else {
			p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}

	return p, nil
}

// Pack orders the batch and greedily concatenates it.
//
// Without a seed the segments are sorted by descending duration; with a
// seed they are shuffled deterministically. The capacity ceiling is the
// explicit max duration if set, otherwise the first ordered segment's
// duration times the duration factor. The input slice is never modified;
// unmerged segments are passed through unchanged.
func (p *Packer) Pack(segs []segment.Segment) ([]segment.Segment, error) {
	if len(segs) <= 1 {
		out := make([]segment.Segment, len(segs))
		copy(out, segs)
		return out, nil
	}

	var ordered []segment.Segment
	if p.seed != nil {
		ordered = Shuffle(segs, p.rng)
	} else {
		ordered = SortByDuration(segs)
	}

	maxDuration := p.maxDuration
	if maxDuration == 0 {
		maxDuration = time.Duration(float64(ordered[0].Duration) * p.durationFactor)
	}

	return Concat(ordered, p.gap, maxDuration, p.changeSymbol, p.rng)
}

// Concat greedily merges an ordered batch of segments to minimize padding.
//
// This is a greedy heuristic for a bin-packing problem, not an optimal
// solver: going from the back (the shortest remaining segment), it scans
// forward for the first segment with enough room left under maxDuration,
// pads that segment with gap silence, appends the shortest to it, and
// repeats until no candidate fits. Worst case O(n²) over the batch size.
//
// maxDuration 0 defaults to the first segment's duration. When
// changeSymbol is non-empty, the gap for each candidate attempt is drawn
// uniformly from [0, gap) using rng, and the symbol is appended to the
// merge base's sole annotation; a base with any other annotation count
// fails the batch with ErrAnnotationCount. rng may be nil when
// changeSymbol is empty.
//
// Each output element is either an input segment, unchanged, or a
// composite; an unmerged segment can exceed maxDuration only if it
// already did on input.
func Concat(segs []segment.Segment, gap, maxDuration time.Duration, changeSymbol string, rng *rand.Rand) ([]segment.Segment, error) {
	if gap < 0 {
		return nil, fmt.Errorf("gap %v: %w", gap, ErrInvalidGap)
	}

	out := make([]segment.Segment, len(segs))
	copy(out, segs)
	if len(out) <= 1 {
		// Nothing to pack.
		return out, nil
	}

	if maxDuration <= 0 {
		maxDuration = out[0].Duration
	}
	if changeSymbol != "" && rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// idx is a resume cursor held across restarts: positions before it
	// were already proven too full for an earlier shortest, and every
	// later shortest is no longer than that one, so rescanning the prefix
	// can never find a fit. This holds only while the working sequence
	// keeps non-increasing duration order ahead of merges, which the
	// orderer guarantees for the sorted mode and the reference semantics
	// accept for the shuffled mode.
	idx := 0
	for {
		merged := false
		shortest := out[len(out)-1]

		for ; idx < len(out)-1; idx++ {
			cut := out[idx]

			g := gap
			if changeSymbol != "" {
				// Fresh draw per candidate attempt: spacing varies even
				// across failed fits.
				g = time.Duration(rng.Float64() * float64(gap))
			}

			if cut.Duration+g+shortest.Duration > maxDuration {
				continue
			}

			if changeSymbol != "" {
				if len(cut.Annotations) != 1 {
					return nil, fmt.Errorf("segment %s has %d annotations: %w",
						cut.ID, len(cut.Annotations), ErrAnnotationCount)
				}
				cut = cut.Clone()
				cut.Annotations[0].Text += changeSymbol
			}

			// Absorb the shortest: pad the base with the gap's silence,
			// append, and drop the last element.
			out[idx] = cut.PadTo(cut.Duration + g).Append(shortest)
			out = out[:len(out)-1]
			merged = true
			break
		}

		if !merged {
			// No candidate in the forward scan fits the current shortest;
			// the pass is complete. This is an expected outcome, not an
			// error: remaining segments are returned unmerged.
			return out, nil
		}
	}
}

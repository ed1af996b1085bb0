// Package batch drives many independent packing runs, one per training
// batch. The packer itself is a pure in-memory function, so batches can be
// packed in parallel without shared state; this package bounds the
// concurrency and keeps results in input order.
package batch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-cutpack/internal/pack"
	"github.com/alnah/go-cutpack/internal/segment"
)

// DefaultParallel is the default number of concurrent packing workers.
// Packing is CPU-bound and batches are small, so a handful is plenty.
const DefaultParallel = 4

// Options configures a packing run over a set of batches.
type Options struct {
	Gap            time.Duration // Silence inserted between concatenated segments.
	DurationFactor float64       // Capacity multiplier when MaxDuration is unset; 0 means 1.0.
	MaxDuration    time.Duration // Explicit capacity ceiling; 0 derives it per batch.
	Seed           *int64        // Optional: shuffle ordering; batch i uses *Seed + i.
	ChangeSymbol   string        // Optional: utterance-boundary marker.
	MaxParallel    int           // Concurrent workers; values < 1 are clamped to 1.
	Logger         *zap.Logger   // Optional progress logging; nil disables it.
}

// Split partitions segments into contiguous batches of at most size
// elements. A size of 0 or less puts everything in a single batch.
// An empty input yields no batches.
func Split(segs []segment.Segment, size int) [][]segment.Segment {
	if len(segs) == 0 {
		return nil
	}
	if size <= 0 || size >= len(segs) {
		return [][]segment.Segment{segs}
	}

	batches := make([][]segment.Segment, 0, (len(segs)+size-1)/size)
	for start := 0; start < len(segs); start += size {
		end := min(start+size, len(segs))
		batches = append(batches, segs[start:end])
	}
	return batches
}

// PackAll packs every batch concurrently and returns the packed batches in
// the same order as the input. If any batch fails, the whole operation is
// aborted and the error is returned with the batch index.
//
// Each worker gets its own Packer: when a seed is given, batch i derives
// seed+i, so the output does not depend on worker scheduling.
func PackAll(ctx context.Context, batches [][]segment.Segment, opts Options) ([][]segment.Segment, error) {
	if len(batches) == 0 {
		return nil, nil
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxParallel := opts.MaxParallel
	if maxParallel < 1 {
		maxParallel = 1
	}

	results := make([][]segment.Segment, len(batches))
	// Semaphore channel for concurrency control.
	// Not closed explicitly: it's local to this function and will be GC'd.
	sem := make(chan struct{}, maxParallel)

	g, ctx := errgroup.WithContext(ctx)

	for i, segs := range batches {
		g.Go(func() error {
			// Acquire semaphore slot.
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()

			packer, err := newPacker(opts, i)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}

			before := pack.Measure(segs)
			packed, err := packer.Pack(segs)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			after := pack.Measure(packed)

			logger.Info("packed batch",
				zap.Int("batch", i),
				zap.Int("segments_in", before.Count),
				zap.Int("segments_out", after.Count),
				zap.Duration("waste_before", before.Waste),
				zap.Duration("waste_after", after.Waste),
				zap.Float64("utilization", after.Utilization()),
			)

			results[i] = packed
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// newPacker builds the per-batch Packer from shared options.
func newPacker(opts Options, batchIdx int) (*pack.Packer, error) {
	po := []pack.Option{pack.WithGap(opts.Gap)}
	if opts.DurationFactor > 0 {
		po = append(po, pack.WithDurationFactor(opts.DurationFactor))
	}
	if opts.MaxDuration > 0 {
		po = append(po, pack.WithMaxDuration(opts.MaxDuration))
	}
	if opts.Seed != nil {
		po = append(po, pack.WithSeed(*opts.Seed+int64(batchIdx)))
	}
	if opts.ChangeSymbol != "" {
		po = append(po, pack.WithChangeSymbol(opts.ChangeSymbol))
	}
	return pack.NewPacker(po...)
}

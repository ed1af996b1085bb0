package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-cutpack/internal/batch"
	"github.com/alnah/go-cutpack/internal/config"
	"github.com/alnah/go-cutpack/internal/format"
	"github.com/alnah/go-cutpack/internal/manifest"
	"github.com/alnah/go-cutpack/internal/pack"
	"github.com/alnah/go-cutpack/internal/segment"
)

// PackCmd creates the pack command.
// The env parameter provides injectable dependencies for testing.
func PackCmd(env *Env) *cobra.Command {
	var (
		input          string
		output         string
		profilePath    string
		gap            time.Duration
		durationFactor float64
		maxDuration    time.Duration
		seed           int64
		changeSymbol   string
		batchSize      int
		workers        int
	)

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Pack a segment manifest to minimize batch padding",
		Long: `Pack the segments of a JSONL manifest into composite segments.

Segments are grouped into batches, and within each batch short segments
are greedily concatenated onto longer ones (separated by inserted
silence) while staying under the capacity ceiling. This shrinks the
padding a training batch wastes when every example is padded to the
longest one.

Without --seed, each batch is packed in descending duration order; with
--seed, batches are shuffled deterministically for reproducible
experiments. Options left unset fall back to the profile file, then to
CUTPACK_* environment variables, then to defaults.

Manifests are JSON Lines (one segment per line); a .gz suffix on either
path enables gzip.`,
		Example: `  cutpack pack -i cuts.jsonl -o packed.jsonl
  cutpack pack -i cuts.jsonl.gz -o packed.jsonl.gz --gap 500ms --max-duration 30s
  cutpack pack -i cuts.jsonl -o packed.jsonl --seed 42 --batch-size 64 --workers 8
  cutpack pack -i cuts.jsonl -o packed.jsonl --change-symbol " <sc>"
  cutpack pack -i cuts.jsonl -o packed.jsonl --profile emilia.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prof, err := resolveProfile(cmd, env, profilePath, profileFlags{
				gap:            gap,
				durationFactor: durationFactor,
				maxDuration:    maxDuration,
				seed:           seed,
				changeSymbol:   changeSymbol,
				batchSize:      batchSize,
				workers:        workers,
			})
			if err != nil {
				return err
			}
			return runPack(cmd, env, input, output, prof)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input segment manifest (.jsonl or .jsonl.gz)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output manifest path")
	cmd.Flags().StringVar(&profilePath, "profile", "", "Packing profile YAML file (default: $CUTPACK_PROFILE)")
	cmd.Flags().DurationVar(&gap, "gap", pack.DefaultGap, "Silence inserted between concatenated segments")
	cmd.Flags().Float64Var(&durationFactor, "duration-factor", pack.DefaultDurationFactor, "Capacity multiplier on the longest segment when --max-duration is unset")
	cmd.Flags().DurationVar(&maxDuration, "max-duration", 0, "Explicit capacity ceiling per output segment (overrides --duration-factor)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Shuffle segments with this seed instead of sorting by duration")
	cmd.Flags().StringVar(&changeSymbol, "change-symbol", "", "Token appended to a merge base's annotation text (randomizes the gap)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Segments per batch (0 = whole manifest as one batch)")
	cmd.Flags().IntVar(&workers, "workers", batch.DefaultParallel, "Concurrent packing workers")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// profileFlags carries the flag values that can override a profile.
type profileFlags struct {
	gap            time.Duration
	durationFactor float64
	maxDuration    time.Duration
	seed           int64
	changeSymbol   string
	batchSize      int
	workers        int
}

// resolveProfile loads the profile and applies explicit flag overrides.
// Precedence: flags > profile file > environment > defaults. A flag
// counts as explicit only when the user set it (cobra's Changed), so
// flag defaults never clobber profile values.
func resolveProfile(cmd *cobra.Command, env *Env, profilePath string, f profileFlags) (config.Profile, error) {
	prof, err := config.Load(profilePath, env.Getenv)
	if err != nil {
		return prof, err
	}

	flags := cmd.Flags()
	if flags.Changed("gap") {
		prof.Gap = f.gap.Seconds()
	}
	if flags.Changed("duration-factor") {
		prof.DurationFactor = f.durationFactor
	}
	if flags.Changed("max-duration") {
		prof.MaxDuration = f.maxDuration.Seconds()
	}
	if flags.Changed("seed") {
		s := f.seed
		prof.Seed = &s
	}
	if flags.Changed("change-symbol") {
		prof.ChangeSymbol = f.changeSymbol
	}
	if flags.Changed("batch-size") {
		prof.BatchSize = f.batchSize
	}
	if flags.Changed("workers") {
		prof.Workers = f.workers
	}

	if err := prof.Validate(); err != nil {
		return prof, err
	}
	return prof, nil
}

// runPack executes the packing pipeline: read manifest, split into
// batches, pack them in parallel, write the packed manifest.
func runPack(cmd *cobra.Command, env *Env, input, output string, prof config.Profile) error {
	ctx := cmd.Context()

	segs, err := manifest.Read(input)
	if err != nil {
		return err
	}

	batches := batch.Split(segs, prof.BatchSize)
	before := aggregate(batches)

	packed, err := batch.PackAll(ctx, batches, batch.Options{
		Gap:            segment.FromSeconds(prof.Gap),
		DurationFactor: prof.DurationFactor,
		MaxDuration:    segment.FromSeconds(prof.MaxDuration),
		Seed:           prof.Seed,
		ChangeSymbol:   prof.ChangeSymbol,
		MaxParallel:    prof.Workers,
		Logger:         env.Logger,
	})
	if err != nil {
		return err
	}
	after := aggregate(packed)

	var out []segment.Segment
	for _, b := range packed {
		out = append(out, b...)
	}
	if err := manifest.Write(output, out); err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "Packed %d segments into %d across %d batch(es)\n",
		before.Count, after.Count, len(batches))
	fmt.Fprintf(env.Stdout, "Content %s, padding waste %s -> %s, utilization %s -> %s\n",
		format.Duration(before.Content),
		format.Seconds(before.Waste), format.Seconds(after.Waste),
		format.Percent(before.Utilization()), format.Percent(after.Utilization()))
	fmt.Fprintf(env.Stdout, "Wrote %s\n", output)

	return nil
}

// aggregate sums per-batch padding stats. Each batch is padded to its own
// longest segment, so the total is the sum of batch costs, not one global
// Measure over the flattened sequence.
func aggregate(batches [][]segment.Segment) pack.Stats {
	var total pack.Stats
	for _, b := range batches {
		st := pack.Measure(b)
		total.Count += st.Count
		total.Content += st.Content
		total.Padded += st.Padded
		total.Waste += st.Waste
		if st.Longest > total.Longest {
			total.Longest = st.Longest
		}
	}
	return total
}

package cli

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-cutpack/internal/format"
	"github.com/alnah/go-cutpack/internal/lang"
	"github.com/alnah/go-cutpack/internal/manifest"
	"github.com/alnah/go-cutpack/internal/pack"
	"github.com/alnah/go-cutpack/internal/segment"
)

// StatsCmd creates the stats command.
func StatsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <manifest>",
		Short: "Show padding and language stats for a segment manifest",
		Long: `Show how much compute a manifest wastes when batched naively:
segment count, real content duration, and the padding overhead of padding
every segment to the longest one, plus per-language content totals.

Run it on a manifest before and after packing to see the gain.`,
		Example: `  cutpack stats cuts.jsonl
  cutpack stats packed.jsonl.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(env, args[0])
		},
	}
	return cmd
}

// runStats prints padding and per-language stats for one manifest.
func runStats(env *Env, path string) error {
	segs, err := manifest.Read(path)
	if err != nil {
		return err
	}

	st := pack.Measure(segs)
	fmt.Fprintf(env.Stdout, "Manifest:     %s", path)
	if info, err := os.Stat(path); err == nil {
		fmt.Fprintf(env.Stdout, " (%s)", format.Size(info.Size()))
	}
	fmt.Fprintln(env.Stdout)
	fmt.Fprintf(env.Stdout, "Segments:     %d\n", st.Count)
	fmt.Fprintf(env.Stdout, "Content:      %s\n", format.Duration(st.Content))
	fmt.Fprintf(env.Stdout, "Longest:      %s\n", format.Seconds(st.Longest))
	fmt.Fprintf(env.Stdout, "Padded size:  %s\n", format.Duration(st.Padded))
	fmt.Fprintf(env.Stdout, "Waste:        %s\n", format.Duration(st.Waste))
	fmt.Fprintf(env.Stdout, "Utilization:  %s\n", format.Percent(st.Utilization()))

	byLang := languageTotals(segs)
	if len(byLang) > 0 {
		fmt.Fprintln(env.Stdout, "Languages:")
		codes := make([]string, 0, len(byLang))
		for code := range byLang {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			fmt.Fprintf(env.Stdout, "  %-10s %s\n", code, format.Duration(byLang[code]))
		}
	}

	return nil
}

// languageTotals sums annotated duration per base language code.
// Annotations without a language are grouped under "unknown".
func languageTotals(segs []segment.Segment) map[string]time.Duration {
	totals := make(map[string]time.Duration)
	for _, s := range segs {
		for _, a := range s.Annotations {
			code := lang.BaseCode(a.Language)
			if code == "" {
				code = "unknown"
			}
			totals[code] += a.Duration
		}
	}
	return totals
}

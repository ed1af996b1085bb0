package cli_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-cutpack/internal/cli"
	"github.com/alnah/go-cutpack/internal/manifest"
	"github.com/alnah/go-cutpack/internal/segment"
)

func TestStatsCmd_PrintsPaddingAndLanguages(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cuts.jsonl")
	segs := []segment.Segment{
		{
			ID:       "cut-a",
			Duration: 4 * time.Second,
			Annotations: []segment.Annotation{
				{ID: "a1", Start: 0, Duration: 4 * time.Second, Text: "vier", Language: "de"},
			},
		},
		{
			ID:       "cut-b",
			Duration: 2 * time.Second,
			Annotations: []segment.Annotation{
				{ID: "b1", Start: 0, Duration: time.Second, Text: "one", Language: "en"},
				{ID: "b2", Start: time.Second, Duration: time.Second, Text: "speech"},
			},
		},
	}
	if err := manifest.Write(path, segs); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	env, stdout := newTestEnv(t)
	if err := execute(cli.StatsCmd(env), path); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"Segments:     2",
		"Content:      00:06",
		"Longest:      4.000s",
		"Padded size:  00:08",
		"Waste:        00:02",
		"Utilization:  75.0%",
		"de",
		"en",
		"unknown",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStatsCmd_MissingManifest(t *testing.T) {
	t.Parallel()

	env, _ := newTestEnv(t)
	err := execute(cli.StatsCmd(env), filepath.Join(t.TempDir(), "nope.jsonl"))
	if !errors.Is(err, manifest.ErrFileNotFound) {
		t.Errorf("Execute() error = %v, want ErrFileNotFound", err)
	}
}

func TestStatsCmd_RejectsArgCount(t *testing.T) {
	t.Parallel()

	env, _ := newTestEnv(t)
	if err := execute(cli.StatsCmd(env)); err == nil {
		t.Error("Execute() with no args succeeded, want arg-count error")
	}
	if err := execute(cli.StatsCmd(env), "a.jsonl", "b.jsonl"); err == nil {
		t.Error("Execute() with two args succeeded, want arg-count error")
	}
}

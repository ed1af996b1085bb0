package cli_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-cutpack/internal/cli"
	"github.com/alnah/go-cutpack/internal/config"
	"github.com/alnah/go-cutpack/internal/manifest"
	"github.com/alnah/go-cutpack/internal/segment"
)

// newTestEnv builds an Env with buffered writers and an empty environment.
func newTestEnv(t *testing.T) (*cli.Env, *bytes.Buffer) {
	t.Helper()
	var stdout bytes.Buffer
	env := cli.NewEnv(
		cli.WithStdout(&stdout),
		cli.WithStderr(&bytes.Buffer{}),
		cli.WithGetenv(func(string) string { return "" }),
	)
	return env, &stdout
}

// execute runs a command with buffered cobra output so test logs stay clean.
func execute(cmd *cobra.Command, args ...string) error {
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

func writeManifest(t *testing.T, path string, durations []float64) {
	t.Helper()
	segs := make([]segment.Segment, len(durations))
	for i, sec := range durations {
		d := segment.FromSeconds(sec)
		id := "cut-" + string(rune('a'+i))
		segs[i] = segment.Segment{
			ID:       id,
			Duration: d,
			Annotations: []segment.Annotation{
				{ID: id + "-sup", Start: 0, Duration: d, Text: "text " + id, Language: "en"},
			},
		}
	}
	if err := manifest.Write(path, segs); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
}

func readDurations(t *testing.T, path string) []time.Duration {
	t.Helper()
	segs, err := manifest.Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	out := make([]time.Duration, len(segs))
	for i, s := range segs {
		out[i] = s.Duration
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestPackCmd_PacksManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "cuts.jsonl")
	out := filepath.Join(dir, "packed.jsonl")
	writeManifest(t, in, []float64{4, 3.5, 2, 1, 0.5})

	env, stdout := newTestEnv(t)
	err := execute(cli.PackCmd(env),
		"-i", in, "-o", out, "--gap", "1s", "--max-duration", "6s")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got := readDurations(t, out)
	want := []time.Duration{2 * time.Second, 5500 * time.Millisecond, 5500 * time.Millisecond}
	if len(got) != len(want) {
		t.Fatalf("packed durations = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("packed durations = %v, want %v", got, want)
		}
	}

	if !strings.Contains(stdout.String(), "Packed 5 segments into 3") {
		t.Errorf("summary missing from output:\n%s", stdout.String())
	}
}

func TestPackCmd_GzipRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "cuts.jsonl.gz")
	out := filepath.Join(dir, "packed.jsonl.gz")
	writeManifest(t, in, []float64{3, 1})

	env, _ := newTestEnv(t)
	err := execute(cli.PackCmd(env),
		"-i", in, "-o", out, "--gap", "1s", "--max-duration", "10s")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got := readDurations(t, out)
	if len(got) != 1 || got[0] != 5*time.Second {
		t.Errorf("packed durations = %v, want [5s]", got)
	}
}

func TestPackCmd_FlagBeatsProfile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "cuts.jsonl")
	out := filepath.Join(dir, "packed.jsonl")
	writeManifest(t, in, []float64{3, 1})

	profile := filepath.Join(dir, "profile.yaml")
	if err := os.WriteFile(profile, []byte("gap: 2\nmax_duration: 5\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	// Profile gap 2s would overflow the 5s ceiling (3+2+1 = 6); the flag's
	// 500ms gap fits (3+0.5+1 = 4.5) and must win.
	env, _ := newTestEnv(t)
	err := execute(cli.PackCmd(env),
		"-i", in, "-o", out, "--profile", profile, "--gap", "500ms")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got := readDurations(t, out)
	if len(got) != 1 || got[0] != 4500*time.Millisecond {
		t.Errorf("packed durations = %v, want [4.5s]", got)
	}
}

func TestPackCmd_ProfileApplies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "cuts.jsonl")
	out := filepath.Join(dir, "packed.jsonl")
	writeManifest(t, in, []float64{3, 1})

	profile := filepath.Join(dir, "profile.yaml")
	if err := os.WriteFile(profile, []byte("gap: 2\nmax_duration: 5\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	env, _ := newTestEnv(t)
	err := execute(cli.PackCmd(env), "-i", in, "-o", out, "--profile", profile)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// With the profile's 2s gap nothing fits under the 5s ceiling.
	got := readDurations(t, out)
	if len(got) != 2 {
		t.Errorf("packed durations = %v, want 2 unchanged segments", got)
	}
}

func TestPackCmd_SeedDeterministic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "cuts.jsonl")
	writeManifest(t, in, []float64{7, 3, 5, 1, 2, 4, 6, 8, 2.5, 1.5})

	run := func(name string) []time.Duration {
		out := filepath.Join(dir, name)
		env, _ := newTestEnv(t)
		err := execute(cli.PackCmd(env),
			"-i", in, "-o", out, "--seed", "42", "--max-duration", "10s")
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		return readDurations(t, out)
	}

	first := run("a.jsonl")
	second := run("b.jsonl")
	if len(first) != len(second) {
		t.Fatalf("runs differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("runs differ: %v vs %v", first, second)
		}
	}
}

func TestPackCmd_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "cuts.jsonl")
	writeManifest(t, in, []float64{2, 1})

	t.Run("missing input file", func(t *testing.T) {
		t.Parallel()
		env, _ := newTestEnv(t)
		err := execute(cli.PackCmd(env),
			"-i", filepath.Join(dir, "nope.jsonl"), "-o", filepath.Join(dir, "out1.jsonl"))
		if !errors.Is(err, manifest.ErrFileNotFound) {
			t.Errorf("Execute() error = %v, want ErrFileNotFound", err)
		}
	})

	t.Run("existing output refused", func(t *testing.T) {
		t.Parallel()
		out := filepath.Join(dir, "exists.jsonl")
		writeManifest(t, out, []float64{1})
		env, _ := newTestEnv(t)
		err := execute(cli.PackCmd(env), "-i", in, "-o", out)
		if !errors.Is(err, manifest.ErrOutputExists) {
			t.Errorf("Execute() error = %v, want ErrOutputExists", err)
		}
	})

	t.Run("missing required flags", func(t *testing.T) {
		t.Parallel()
		env, _ := newTestEnv(t)
		if err := execute(cli.PackCmd(env)); err == nil {
			t.Error("Execute() with no flags succeeded, want required-flag error")
		}
	})

	t.Run("invalid flag value", func(t *testing.T) {
		t.Parallel()
		env, _ := newTestEnv(t)
		err := execute(cli.PackCmd(env),
			"-i", in, "-o", filepath.Join(dir, "out2.jsonl"), "--duration-factor", "0")
		if !errors.Is(err, config.ErrInvalidProfile) {
			t.Errorf("Execute() error = %v, want ErrInvalidProfile", err)
		}
	})

	t.Run("missing profile file", func(t *testing.T) {
		t.Parallel()
		env, _ := newTestEnv(t)
		err := execute(cli.PackCmd(env),
			"-i", in, "-o", filepath.Join(dir, "out3.jsonl"),
			"--profile", filepath.Join(dir, "nope.yaml"))
		if !errors.Is(err, config.ErrProfileNotFound) {
			t.Errorf("Execute() error = %v, want ErrProfileNotFound", err)
		}
	})
}

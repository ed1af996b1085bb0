package cli

import (
	"io"
	"os"

	"go.uber.org/zap"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing commands in isolation.
//
// All fields have sensible defaults via NewEnv(). Tests can override
// specific fields using the With* options.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// Logger receives per-batch packing progress. Defaults to a no-op
	// logger; main swaps in a real one once the verbosity flag is known.
	Logger *zap.Logger
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment lookup function.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithLogger sets the progress logger.
func WithLogger(l *zap.Logger) EnvOption {
	return func(e *Env) {
		e.Logger = l
	}
}

// NewEnv creates an Env with production defaults, then applies options.
func NewEnv(opts ...EnvOption) *Env {
	e := &Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
		Logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewLogger builds the CLI logger. Verbose mode uses the human-readable
// development encoder and shows per-batch progress; otherwise only
// warnings and errors reach stderr.
func NewLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

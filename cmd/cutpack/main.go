package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-cutpack/internal/cli"
	"github.com/alnah/go-cutpack/internal/config"
	"github.com/alnah/go-cutpack/internal/lang"
	"github.com/alnah/go-cutpack/internal/manifest"
	"github.com/alnah/go-cutpack/internal/pack"
	"github.com/alnah/go-cutpack/internal/segment"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitConfig     = 3
	ExitValidation = 4
	ExitPack       = 5
	ExitInterrupt  = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Context with signal cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create the CLI environment with production defaults.
	env := cli.NewEnv()

	var verbose bool

	// Root command.
	rootCmd := &cobra.Command{
		Use:     "cutpack",
		Short:   "Pack audio segment manifests to minimize training batch padding",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := cli.NewLogger(verbose)
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			env.Logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = env.Logger.Sync()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log per-batch packing progress")

	// Subcommands.
	rootCmd.AddCommand(cli.PackCmd(env))
	rootCmd.AddCommand(cli.StatsCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Configuration errors (ExitConfig = 3).
	if errors.Is(err, config.ErrProfileNotFound) || errors.Is(err, config.ErrInvalidProfile) {
		return ExitConfig
	}

	// Validation errors (ExitValidation = 4): bad manifests or parameters.
	if errors.Is(err, manifest.ErrFileNotFound) || errors.Is(err, manifest.ErrSyntax) ||
		errors.Is(err, manifest.ErrOutputExists) || errors.Is(err, lang.ErrInvalid) ||
		errors.Is(err, segment.ErrEmptyID) || errors.Is(err, segment.ErrNegativeDuration) ||
		errors.Is(err, segment.ErrAnnotationOutOfBounds) ||
		errors.Is(err, pack.ErrInvalidGap) || errors.Is(err, pack.ErrInvalidDurationFactor) ||
		errors.Is(err, pack.ErrInvalidMaxDuration) {
		return ExitValidation
	}

	// Packing errors (ExitPack = 5): the batch is incompatible with the
	// requested options.
	if errors.Is(err, pack.ErrAnnotationCount) {
		return ExitPack
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate
// Cobra usage errors. Cobra doesn't expose typed errors, so string
// matching is the only reliable approach; these patterns are stable
// across Cobra versions (tested with v1.8+).
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
	"unknown command",           // Subcommand doesn't exist
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}

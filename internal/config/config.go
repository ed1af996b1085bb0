// Package config loads packing profiles: the recognized packing options
// for a dataset, kept in a small YAML file so experiments are repeatable.
//
// Precedence: command-line flags (applied by the cli package), then
// profile file values, then environment variable fallbacks, then defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/alnah/go-cutpack/internal/batch"
)

// Environment variable fallbacks.
const (
	// EnvProfile points at a profile file used when --profile is not given.
	EnvProfile = "CUTPACK_PROFILE"

	// EnvWorkers overrides the worker count when the profile leaves it unset.
	EnvWorkers = "CUTPACK_WORKERS"

	// EnvBatchSize overrides the batch size when the profile leaves it unset.
	EnvBatchSize = "CUTPACK_BATCH_SIZE"
)

// Profile holds the packing options for a run. Durations are float
// seconds, matching the manifest wire format.
type Profile struct {
	// Gap is the silence inserted between concatenated segments, seconds.
	Gap float64 `yaml:"gap"`

	// DurationFactor multiplies the longest segment's duration to derive
	// the capacity ceiling when MaxDuration is unset.
	DurationFactor float64 `yaml:"duration_factor"`

	// MaxDuration fixes the capacity ceiling in seconds; 0 derives it
	// from DurationFactor.
	MaxDuration float64 `yaml:"max_duration"`

	// Seed, when present, switches segment ordering from descending-
	// duration sort to a deterministic shuffle.
	Seed *int64 `yaml:"seed"`

	// ChangeSymbol is the utterance-boundary marker appended at merges.
	ChangeSymbol string `yaml:"change_symbol"`

	// BatchSize is the number of segments per packing batch; 0 packs the
	// whole manifest as one batch.
	BatchSize int `yaml:"batch_size"`

	// Workers is the number of concurrent packing workers; 0 uses the
	// default.
	Workers int `yaml:"workers"`
}

// Default returns a profile with the recognized option defaults:
// 1s gap, duration factor 1.0, no explicit ceiling, sorted ordering.
func Default() Profile {
	return Profile{
		Gap:            1.0,
		DurationFactor: 1.0,
	}
}

// Load resolves a profile. When path is empty, the CUTPACK_PROFILE
// environment variable is consulted; when that is empty too, defaults are
// returned. A path that was explicitly given but does not exist is an
// error. Worker count and batch size left unset by the file are filled
// from environment fallbacks.
func Load(path string, getenv func(string) string) (Profile, error) {
	p := Default()

	if path == "" {
		path = getenv(EnvProfile)
	}
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-specified profile path
		if err != nil {
			if os.IsNotExist(err) {
				return p, fmt.Errorf("profile %s: %w", path, ErrProfileNotFound)
			}
			return p, fmt.Errorf("failed to read profile: %w", err)
		}
		// Unmarshal over the defaults: keys absent from the file keep
		// their default values, explicit zeros stick.
		if err := yaml.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("profile %s: %v: %w", path, err, ErrInvalidProfile)
		}
	}

	if p.Workers == 0 {
		if v, err := envInt(getenv, EnvWorkers); err != nil {
			return p, err
		} else if v != 0 {
			p.Workers = v
		}
	}
	if p.Workers == 0 {
		p.Workers = batch.DefaultParallel
	}

	if p.BatchSize == 0 {
		if v, err := envInt(getenv, EnvBatchSize); err != nil {
			return p, err
		} else if v != 0 {
			p.BatchSize = v
		}
	}

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate checks profile value ranges.
func (p Profile) Validate() error {
	if p.Gap < 0 {
		return fmt.Errorf("gap %v: %w", p.Gap, ErrInvalidProfile)
	}
	if p.DurationFactor <= 0 {
		return fmt.Errorf("duration_factor %v: %w", p.DurationFactor, ErrInvalidProfile)
	}
	if p.MaxDuration < 0 {
		return fmt.Errorf("max_duration %v: %w", p.MaxDuration, ErrInvalidProfile)
	}
	if p.BatchSize < 0 {
		return fmt.Errorf("batch_size %d: %w", p.BatchSize, ErrInvalidProfile)
	}
	if p.Workers < 0 {
		return fmt.Errorf("workers %d: %w", p.Workers, ErrInvalidProfile)
	}
	return nil
}

// envInt parses an integer environment variable; empty means unset.
func envInt(getenv func(string) string, key string) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, raw, ErrInvalidProfile)
	}
	return v, nil
}

package config

import "errors"

// Sentinel errors for profile loading.
var (
	// ErrProfileNotFound indicates an explicitly requested profile file
	// does not exist.
	ErrProfileNotFound = errors.New("profile file not found")

	// ErrInvalidProfile indicates a malformed profile file or an
	// out-of-range profile value.
	ErrInvalidProfile = errors.New("invalid profile")
)

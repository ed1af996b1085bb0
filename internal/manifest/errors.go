package manifest

import "errors"

// Sentinel errors for manifest IO.
var (
	// ErrFileNotFound indicates the input manifest does not exist.
	ErrFileNotFound = errors.New("manifest file not found")

	// ErrSyntax indicates a malformed manifest line or stream.
	ErrSyntax = errors.New("invalid manifest syntax")

	// ErrOutputExists indicates the output manifest already exists.
	ErrOutputExists = errors.New("output manifest already exists")
)

package source

import "errors"

var (
	// ErrUnsupportedFormat indicates the input's extension is not a known format.
	ErrUnsupportedFormat = errors.New("unsupported input format")

	// ErrColumnNotFound indicates the configured item column is missing
	// from the header or schema.
	ErrColumnNotFound = errors.New("item column not found")

	// ErrInvalidConfig indicates a Config field is out of range.
	ErrInvalidConfig = errors.New("invalid source config")
)

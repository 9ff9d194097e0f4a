package ingest

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when retry is configured with zero attempts.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")

	// ErrNilFetchFunc is returned when Process is called without a fetch function.
	ErrNilFetchFunc = errors.New("fetch function required")

	// ErrNilExtractFunc is returned when Process is called without an extract function.
	ErrNilExtractFunc = errors.New("extract function required")
)

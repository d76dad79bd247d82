package core

import "errors"

var (
	// ErrUpstreamUnavailable indicates a transport or service failure
	// (including timeouts) from the embedding or reasoning provider
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrEmptyInput is returned when a caller submits empty or
	// whitespace-only text for embedding or classification
	ErrEmptyInput = errors.New("empty input text")

	// ErrIndexSchemaMismatch is returned when a persisted index was built
	// with a different embedding model or dimension than the one currently
	// configured. The index must be explicitly rebuilt.
	ErrIndexSchemaMismatch = errors.New("index schema mismatch")

	// ErrMalformedResponse indicates the reasoning service returned output
	// that does not satisfy the classification schema
	ErrMalformedResponse = errors.New("malformed reasoning response")

	// ErrClassificationFailed indicates both the primary attempt and the
	// retry produced malformed output; the email needs manual review
	ErrClassificationFailed = errors.New("classification failed after retry")

	// ErrUnknownCategory is returned when a classified category has no
	// entry in the configured weight table
	ErrUnknownCategory = errors.New("unknown compliance category")
)

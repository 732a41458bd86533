package domain

import "errors"

// Boundary error taxonomy. Store-adapter failures and input validation are
// the only expected, reportable conditions; anything else escaping the engine
// is an internal invariant violation.
var (
	// ErrClientNotFound is returned for an unknown client identifier.
	// Terminal, never retried.
	ErrClientNotFound = errors.New("client not found")

	// ErrServiceUnavailable is returned only when both the graph and vector
	// stores fail; a single-store failure degrades instead.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInvalidRequest is returned for malformed input (non-positive limit,
	// unknown channel filter) before any store is queried.
	ErrInvalidRequest = errors.New("invalid request")
)

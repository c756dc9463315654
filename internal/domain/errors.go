package domain

import "errors"

var (
	// ErrQuotaExceeded signals that the per-user request ceiling was reached.
	ErrQuotaExceeded = errors.New("request quota exceeded")
	// ErrUpstream signals a failed external model call (expansion, embedding, synthesis).
	ErrUpstream = errors.New("upstream model failure")
	// ErrStorage signals an unreachable or corrupt backing store.
	ErrStorage = errors.New("storage failure")
	// ErrInvalidInput signals malformed request parameters, rejected before any side effect.
	ErrInvalidInput = errors.New("invalid input")
	// ErrVectorDimMismatch signals an embedding of the wrong dimension.
	// Such a vector must never be persisted.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)

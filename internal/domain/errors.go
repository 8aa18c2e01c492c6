package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput signals a missing or malformed required field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable signals that the backing store errored or is unreachable.
	// The core never retries; callers decide whether to retry or surface the failure.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrConflict         = errors.New("conflict")
)

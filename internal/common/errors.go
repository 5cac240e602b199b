// Package common defines shared sentinel errors used across the storage,
// reconciliation and scoring layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable marks a remote-backend failure that survived the
	// retry budget. Reads convert it to an empty result at the adapter
	// boundary; mutations surface it to the caller.
	ErrStoreUnavailable = errors.New("store unavailable")

	// Validation errors.
	ErrDateRange = errors.New("invalid date range")

	// ErrDecode marks a corrupt persisted cache. Loaders treat it as empty
	// history (fail open).
	ErrDecode = errors.New("decode error")

	// Resurfacing outcomes.
	ErrNoMemory     = errors.New("no memory available")
	ErrNotEntitled  = errors.New("feature requires entitlement")
	ErrInvalidToken = errors.New("invalid entitlement token")

	// ErrInternal is the generic retry-later outcome.
	ErrInternal = errors.New("internal error")
)

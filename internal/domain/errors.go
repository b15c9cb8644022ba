package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady means a pre-trade readiness check failed; no venue order
	// call was made.
	ErrNotReady = errors.New("venue not ready for trading")
	// ErrInvalidIntent means the order intent failed validation before any
	// venue call.
	ErrInvalidIntent = errors.New("invalid order intent")
	// ErrSymbolUnavailable means the instrument is unknown or has no quote.
	ErrSymbolUnavailable = errors.New("symbol unavailable")
	// ErrVenueDeclined means the venue returned a non-success result code.
	// The raw code and comment are carried by DeclinedError.
	ErrVenueDeclined = errors.New("venue declined order")
	// ErrPositionNotFound means a close was requested for a ticket with no
	// open position.
	ErrPositionNotFound = errors.New("position not found")
	// ErrVenueUnreachable means a network or timeout failure talking to the
	// venue adapter.
	ErrVenueUnreachable = errors.New("venue unreachable")
	// ErrDuplicateIntent means an identical intent was submitted within the
	// dedup window.
	ErrDuplicateIntent = errors.New("duplicate order intent")
	// ErrLockHeld means the per-account serialization lock is held by
	// another request.
	ErrLockHeld = errors.New("lock already held")
)

// DeclinedError carries the venue's raw result code and comment for a
// rejected submission. Both must reach the caller verbatim: accurate
// diagnosis of a live-trading failure is safety-critical.
type DeclinedError struct {
	RetCode int
	Comment string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("venue declined order: retcode %d: %s", e.RetCode, e.Comment)
}

// Is makes errors.Is(err, ErrVenueDeclined) match.
func (e *DeclinedError) Is(target error) bool {
	return target == ErrVenueDeclined
}

package domain

import (
	"errors"
	"fmt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

var (
	// ErrTicketNotFound is returned when no ticket matches the given id.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrNoPendingDeletion is returned when a deletion is confirmed without a
	// matching prior request in the same conversation.
	ErrNoPendingDeletion = errors.New("no pending deletion for this id")

	// ErrIDExhausted is returned when id generation keeps colliding with
	// existing tickets. With a 36^8 id space this indicates a faulty random
	// source rather than a genuinely full store.
	ErrIDExhausted = errors.New("could not generate a unique ticket id")
)

// IsNotFound returns true when err (or any error in its chain) is the
// ticket-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTicketNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// StoreError
// ──────────────────────────────────────────────────────────────────────────────

// StoreErrorKind classifies persistence failures so callers can distinguish
// them without depending on the driver.
type StoreErrorKind string

const (
	StoreUnavailable      StoreErrorKind = "unavailable"       // cannot reach the store
	StoreTimeout          StoreErrorKind = "timeout"           // bounded call deadline exceeded
	StoreCapacityExceeded StoreErrorKind = "capacity_exceeded" // store is full / quota hit
	StoreOther            StoreErrorKind = "other"             // anything else
)

// StoreError wraps a persistence failure with its classification. The
// underlying driver error is kept for logs but must never be shown to users.
type StoreError struct {
	Kind StoreErrorKind
	Op   string // e.g. "ticket_repo.Insert"
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: store %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError builds a classified store error.
func NewStoreError(kind StoreErrorKind, op string, err error) *StoreError {
	return &StoreError{Kind: kind, Op: op, Err: err}
}

// AsStoreError returns the StoreError in err's chain, if any.
func AsStoreError(err error) (*StoreError, bool) {
	var se *StoreError
	ok := errors.As(err, &se)
	return se, ok
}

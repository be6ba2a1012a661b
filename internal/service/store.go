package service

import (
	"context"
	"time"

	"github.com/dmarzano/superquote/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Capabilities injected into the services
// ──────────────────────────────────────────────────────────────────────────────

// Store is the persistence capability over the shared ticket collection.
// Implemented by repository.TicketRepository; tests use an in-memory fake.
//
// Error contract: mutating operations fail closed — any persistence failure
// surfaces as a *domain.StoreError. FindByID returns domain.ErrTicketNotFound
// when no ticket matches. List operations return a StoreError too; whether
// to degrade to an empty result is the caller's policy (see readFailOpen).
type Store interface {
	// Insert appends a new ticket. Duplicate ids are not checked here;
	// LedgerService verifies generated ids before inserting.
	Insert(ctx context.Context, t *domain.Ticket) error

	// FindByID looks a ticket up by id, case-insensitively.
	FindByID(ctx context.Context, id string) (*domain.Ticket, error)

	// Update applies only the fields present in changes as one atomic
	// write: the payout is recomputed from the resulting full record and
	// modified_at is set to now. Returns whether a ticket was matched.
	Update(ctx context.Context, id string, changes domain.FieldChanges, now time.Time) (bool, error)

	// Delete removes the ticket; returns whether one was removed.
	Delete(ctx context.Context, id string) (bool, error)

	// ListRecent returns tickets ordered by created_at descending, capped
	// at limit.
	ListRecent(ctx context.Context, limit int) ([]*domain.Ticket, error)

	// ListWins is ListRecent filtered to won tickets.
	ListWins(ctx context.Context, limit int) ([]*domain.Ticket, error)

	// ListAll returns up to scanCap tickets for aggregate computation.
	// Histories larger than scanCap are a documented limitation: the
	// adapter must report the truncation, never silently under-count.
	ListAll(ctx context.Context, scanCap int) ([]*domain.Ticket, bool, error)
}

// Clock supplies the current time. Injected so time-dependent logic is
// testable; production wiring uses SystemClock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the production Clock backed by time.Now.
var SystemClock Clock = systemClock{}

// IDSource produces candidate ticket ids. Implemented by ident.Generator.
type IDSource interface {
	NewID() (string, error)
}

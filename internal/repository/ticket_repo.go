// Package repository implements the persistence adapter over PostgreSQL.
// It is the only package that sees driver errors; everything it returns is
// either domain.ErrTicketNotFound or a classified *domain.StoreError.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/dmarzano/superquote/internal/domain"
	"github.com/dmarzano/superquote/internal/metrics"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// TicketRepository handles all database operations for tickets.
//
// Every call runs under a bounded timeout so a stuck database surfaces as
// a StoreError instead of hanging the caller. The repository never retries;
// retry policy belongs to whoever renders the failure to the user.
type TicketRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewTicketRepository creates a TicketRepository with the given per-call
// timeout.
func NewTicketRepository(db *sqlx.DB, timeout time.Duration) *TicketRepository {
	return &TicketRepository{db: db, timeout: timeout}
}

func (r *TicketRepository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// ──────────────────────────────────────────────────────────────────────────────
// Writes
// ──────────────────────────────────────────────────────────────────────────────

// Insert appends a new ticket. Id uniqueness is not re-checked here: the
// service verifies generated ids, and the unique index is the final guard.
func (r *TicketRepository) Insert(ctx context.Context, t *domain.Ticket) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `
		INSERT INTO tickets
			(id, label, odds, stake, outcome, payout, created_at, modified_at, submitted_by, submitter_id)
		VALUES
			(:id, :label, :odds, :stake, :outcome, :payout, :created_at, :modified_at, :submitted_by, :submitter_id)`
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return classify("ticket_repo.Insert", err)
	}
	return nil
}

// Update applies only the fields present in changes as a single atomic
// statement. The payout is recomputed in SQL from the resulting row, so two
// concurrent updates to the same id cannot interleave a stale payout.
// Returns whether a ticket was matched.
func (r *TicketRepository) Update(ctx context.Context, id string, changes domain.FieldChanges, now time.Time) (bool, error) {
	if changes.IsEmpty() {
		return false, nil
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	var outcome *string
	if changes.Outcome != nil {
		s := string(*changes.Outcome)
		outcome = &s
	}

	query := `
		UPDATE tickets
		SET label       = COALESCE($2, label),
		    odds        = COALESCE($3, odds),
		    stake       = COALESCE($4, stake),
		    outcome     = COALESCE($5, outcome),
		    payout      = CASE WHEN COALESCE($5, outcome) = 'WON'
		                       THEN COALESCE($3, odds) * COALESCE($4, stake)
		                       ELSE 0 END,
		    modified_at = $6
		WHERE upper(id) = upper($1)`
	res, err := r.db.ExecContext(ctx, query,
		id, changes.Label, changes.Odds, changes.Stake, outcome, now)
	if err != nil {
		return false, classify("ticket_repo.Update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify("ticket_repo.Update", err)
	}
	return n > 0, nil
}

// Delete removes the ticket; returns whether one was removed.
func (r *TicketRepository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE upper(id) = upper($1)`, id)
	if err != nil {
		return false, classify("ticket_repo.Delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify("ticket_repo.Delete", err)
	}
	return n > 0, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────────────────────────────────

const ticketColumns = `id, label, odds, stake, outcome, payout, created_at, modified_at, submitted_by, submitter_id`

// FindByID fetches a ticket by id, case-insensitively.
func (r *TicketRepository) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var t domain.Ticket
	err := r.db.GetContext(ctx, &t,
		`SELECT `+ticketColumns+` FROM tickets WHERE upper(id) = upper($1)`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTicketNotFound
	}
	if err != nil {
		return nil, classify("ticket_repo.FindByID", err)
	}
	return &t, nil
}

// ListRecent returns tickets ordered by created_at descending, capped at
// limit. Same-timestamp ties order by insertion (seq) so pagination is
// stable.
func (r *TicketRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Ticket, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var tickets []*domain.Ticket
	err := r.db.SelectContext(ctx, &tickets,
		`SELECT `+ticketColumns+` FROM tickets ORDER BY created_at DESC, seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, classify("ticket_repo.ListRecent", err)
	}
	return tickets, nil
}

// ListWins is ListRecent restricted to won tickets.
func (r *TicketRepository) ListWins(ctx context.Context, limit int) ([]*domain.Ticket, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var tickets []*domain.Ticket
	err := r.db.SelectContext(ctx, &tickets,
		`SELECT `+ticketColumns+` FROM tickets WHERE outcome = 'WON'
		 ORDER BY created_at DESC, seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, classify("ticket_repo.ListWins", err)
	}
	return tickets, nil
}

// ListAll returns up to scanCap tickets in creation order (insertion order
// breaks timestamp ties) for aggregate computation. The second return
// reports whether the cap truncated the result; the caller must not treat
// a truncated scan as the full ledger.
func (r *TicketRepository) ListAll(ctx context.Context, scanCap int) ([]*domain.Ticket, bool, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at ASC, seq ASC`
	args := []interface{}{}
	if scanCap > 0 {
		// Fetch one extra row to detect truncation.
		query += ` LIMIT $1`
		args = append(args, scanCap+1)
	}

	var tickets []*domain.Ticket
	if err := r.db.SelectContext(ctx, &tickets, query, args...); err != nil {
		return nil, false, classify("ticket_repo.ListAll", err)
	}
	if scanCap > 0 && len(tickets) > scanCap {
		return tickets[:scanCap], true, nil
	}
	return tickets, false, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Error classification
// ──────────────────────────────────────────────────────────────────────────────

// classify folds a driver error into a domain.StoreError kind. The mapping
// is deliberately coarse: callers only branch on the four kinds.
func classify(op string, err error) *domain.StoreError {
	se := classifyKind(op, err)
	metrics.StoreErrorsTotal.WithLabelValues(string(se.Kind)).Inc()
	return se
}

func classifyKind(op string, err error) *domain.StoreError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewStoreError(domain.StoreTimeout, op, err)
	case errors.Is(err, context.Canceled):
		return domain.NewStoreError(domain.StoreTimeout, op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return domain.NewStoreError(domain.StoreTimeout, op, err)
		}
		return domain.NewStoreError(domain.StoreUnavailable, op, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 53 — insufficient resources (disk full, too many connections).
		if strings.HasPrefix(string(pqErr.Code), "53") {
			return domain.NewStoreError(domain.StoreCapacityExceeded, op, err)
		}
		// Class 08 — connection exceptions.
		if strings.HasPrefix(string(pqErr.Code), "08") {
			return domain.NewStoreError(domain.StoreUnavailable, op, err)
		}
	}

	if errors.Is(err, sql.ErrConnDone) {
		return domain.NewStoreError(domain.StoreUnavailable, op, err)
	}

	return domain.NewStoreError(domain.StoreOther, op, err)
}

package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmarzano/superquote/internal/domain"
	"github.com/dmarzano/superquote/internal/parser"
)

// ──────────────────────────────────────────────────────────────────────────────
// CommandResult
// ──────────────────────────────────────────────────────────────────────────────

// ResultKind classifies the outcome of executing a command.
type ResultKind string

const (
	ResultAdded               ResultKind = "added"
	ResultModified            ResultKind = "modified"
	ResultDeleteRequested     ResultKind = "delete_requested"
	ResultDeleted             ResultKind = "deleted"
	ResultNotFound            ResultKind = "not_found"
	ResultInvalidConfirmation ResultKind = "invalid_confirmation"
	ResultRejected            ResultKind = "rejected"
)

// CommandResult is the typed outcome of Execute. Nothing is thrown past
// the Execute boundary; the transport adapter renders this into user text.
type CommandResult struct {
	Kind   ResultKind
	Ticket *domain.Ticket // set for Added, Modified, DeleteRequested
	ID     string         // set for Deleted, NotFound, InvalidConfirmation
	Reason string         // set for Rejected; generic, never leaks store detail
}

// rejectedReason is the single user-facing message for persistence
// failures. The real error goes to the log, not to the chat.
const rejectedReason = "archivio momentaneamente non disponibile, riprova"

// ──────────────────────────────────────────────────────────────────────────────
// LedgerService
// ──────────────────────────────────────────────────────────────────────────────

// maxIDAttempts bounds how many candidate ids are verified against the
// store before giving up. Collisions in a 36^8 space are vanishingly rare,
// so more than one round trip here already means something is wrong.
const maxIDAttempts = 5

// LedgerService routes parsed commands to the store and the pending
// deletion set. It owns ticket identity: ids are generated here and
// verified against the store before a ticket is accepted.
type LedgerService struct {
	store   Store
	pending PendingDeletions
	ids     IDSource
	clock   Clock
	log     *slog.Logger
}

// NewLedgerService creates a LedgerService.
func NewLedgerService(store Store, pending PendingDeletions, ids IDSource, clock Clock, log *slog.Logger) *LedgerService {
	return &LedgerService{
		store:   store,
		pending: pending,
		ids:     ids,
		clock:   clock,
		log:     log,
	}
}

// Execute runs one parsed command on behalf of actor and returns its typed
// result. Store failures are logged and reported as Rejected.
func (s *LedgerService) Execute(ctx context.Context, cmd parser.Command, actor domain.Actor) CommandResult {
	switch c := cmd.(type) {
	case parser.AddCommand:
		return s.executeAdd(ctx, c, actor)
	case parser.ModifyCommand:
		return s.executeModify(ctx, c)
	case parser.DeleteRequestCommand:
		return s.executeDeleteRequest(ctx, c, actor)
	case parser.DeleteConfirmCommand:
		return s.executeDeleteConfirm(ctx, c, actor)
	}
	// Unreachable with commands produced by parser.Parse.
	s.log.Error("unknown command type", "cmd", cmd)
	return CommandResult{Kind: ResultRejected, Reason: rejectedReason}
}

// ──────────────────────────────────────────────────────────────────────────────
// Add
// ──────────────────────────────────────────────────────────────────────────────

func (s *LedgerService) executeAdd(ctx context.Context, cmd parser.AddCommand, actor domain.Actor) CommandResult {
	id, err := s.uniqueID(ctx)
	if err != nil {
		s.log.Error("id generation failed", "err", err)
		return CommandResult{Kind: ResultRejected, Reason: rejectedReason}
	}

	t := &domain.Ticket{
		ID:          id,
		Label:       cmd.Label,
		Odds:        cmd.Odds,
		Stake:       cmd.Stake,
		Outcome:     cmd.Outcome,
		CreatedAt:   s.clock.Now(),
		SubmittedBy: actor.DisplayName,
		SubmitterID: actor.UserID,
	}
	t.RecomputePayout()

	if err := s.store.Insert(ctx, t); err != nil {
		s.log.Error("insert failed", "id", id, "err", err)
		return CommandResult{Kind: ResultRejected, Reason: rejectedReason}
	}
	return CommandResult{Kind: ResultAdded, Ticket: t}
}

// uniqueID draws candidate ids and verifies each against the store. The
// generator alone is only statistically unique; the existence check makes
// acceptance deterministic.
func (s *LedgerService) uniqueID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := s.ids.NewID()
		if err != nil {
			return "", err
		}
		_, err = s.store.FindByID(ctx, id)
		if domain.IsNotFound(err) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
		s.log.Warn("ticket id collision, retrying", "id", id, "attempt", attempt+1)
	}
	return "", domain.ErrIDExhausted
}

// ──────────────────────────────────────────────────────────────────────────────
// Modify
// ──────────────────────────────────────────────────────────────────────────────

func (s *LedgerService) executeModify(ctx context.Context, cmd parser.ModifyCommand) CommandResult {
	matched, err := s.store.Update(ctx, cmd.ID, cmd.Changes, s.clock.Now())
	if err != nil {
		s.log.Error("update failed", "id", cmd.ID, "err", err)
		return CommandResult{Kind: ResultRejected, Reason: rejectedReason}
	}
	if !matched {
		return CommandResult{Kind: ResultNotFound, ID: cmd.ID}
	}

	t, err := s.store.FindByID(ctx, cmd.ID)
	if err != nil {
		// The update committed; only the echo read failed.
		s.log.Error("post-update read failed", "id", cmd.ID, "err", err)
		return CommandResult{Kind: ResultRejected, Reason: rejectedReason}
	}
	return CommandResult{Kind: ResultModified, Ticket: t}
}

// ──────────────────────────────────────────────────────────────────────────────
// Two-phase deletion
// ──────────────────────────────────────────────────────────────────────────────

func (s *LedgerService) executeDeleteRequest(ctx context.Context, cmd parser.DeleteRequestCommand, actor domain.Actor) CommandResult {
	t, err := s.store.FindByID(ctx, cmd.ID)
	if domain.IsNotFound(err) {
		return CommandResult{Kind: ResultNotFound, ID: cmd.ID}
	}
	if err != nil {
		s.log.Error("delete request lookup failed", "id", cmd.ID, "err", err)
		return CommandResult{Kind: ResultRejected, Reason: rejectedReason}
	}

	if err := s.pending.Put(ctx, actor.ConversationID, t); err != nil {
		s.log.Error("pending put failed", "id", cmd.ID, "err", err)
		return CommandResult{Kind: ResultRejected, Reason: rejectedReason}
	}
	return CommandResult{Kind: ResultDeleteRequested, Ticket: t}
}

func (s *LedgerService) executeDeleteConfirm(ctx context.Context, cmd parser.DeleteConfirmCommand, actor domain.Actor) CommandResult {
	// Take removes the pending entry whatever the store outcome below: a
	// failed delete needs a fresh ELIMINA, not a dangling confirmation.
	_, err := s.pending.Take(ctx, actor.ConversationID, cmd.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNoPendingDeletion) {
			s.log.Error("pending take failed", "id", cmd.ID, "err", err)
		}
		return CommandResult{Kind: ResultInvalidConfirmation, ID: cmd.ID}
	}

	removed, err := s.store.Delete(ctx, cmd.ID)
	if err != nil {
		s.log.Error("delete failed", "id", cmd.ID, "err", err)
		return CommandResult{Kind: ResultRejected, Reason: rejectedReason}
	}
	if !removed {
		// Deleted from elsewhere between request and confirm.
		return CommandResult{Kind: ResultNotFound, ID: cmd.ID}
	}
	return CommandResult{Kind: ResultDeleted, ID: cmd.ID}
}

// ──────────────────────────────────────────────────────────────────────────────
// Read pass-throughs
// ──────────────────────────────────────────────────────────────────────────────

// readFailOpen is the deliberate read-path policy: list queries degrade to
// an empty result when the store is unreachable, while every write path
// fails closed. Reports render as "nothing yet" instead of an error page.
func (s *LedgerService) readFailOpen(op string, tickets []*domain.Ticket, err error) []*domain.Ticket {
	if err != nil {
		s.log.Error("read degraded to empty result", "op", op, "err", err)
		return nil
	}
	return tickets
}

// ListRecent returns the most recent tickets, newest first.
func (s *LedgerService) ListRecent(ctx context.Context, limit int) []*domain.Ticket {
	tickets, err := s.store.ListRecent(ctx, limit)
	return s.readFailOpen("ListRecent", tickets, err)
}

// ListWins returns the most recent won tickets, newest first.
func (s *LedgerService) ListWins(ctx context.Context, limit int) []*domain.Ticket {
	tickets, err := s.store.ListWins(ctx, limit)
	return s.readFailOpen("ListWins", tickets, err)
}

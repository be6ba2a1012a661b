package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmarzano/superquote/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Pending deletions — per-conversation two-phase delete state
// ──────────────────────────────────────────────────────────────────────────────

// PendingDeletions holds delete requests awaiting confirmation, keyed by
// (conversation, ticket id). State machine per key:
//
//	none → requested          on a delete request (snapshot stored)
//	requested → requested     on a repeated request (snapshot overwritten)
//	requested → gone          on confirmation or TTL expiry
//
// Entries never outlive the configured TTL: a confirmation after expiry
// fails the same way as one that was never requested.
type PendingDeletions interface {
	// Put stores (or overwrites) the snapshot for t.ID in the conversation.
	Put(ctx context.Context, conversationID string, t *domain.Ticket) error

	// Take removes and returns the snapshot for id in the conversation.
	// Returns domain.ErrNoPendingDeletion when there is none (or it expired).
	Take(ctx context.Context, conversationID, id string) (*domain.Ticket, error)
}

// ──────────────────────────────────────────────────────────────────────────────
// In-memory backend
// ──────────────────────────────────────────────────────────────────────────────

type pendingEntry struct {
	ticket   *domain.Ticket
	storedAt time.Time
}

// MemoryPending is the single-process PendingDeletions backend. Expired
// entries are pruned lazily on access; there is no janitor goroutine since
// the map stays tiny (one entry per in-flight deletion).
type MemoryPending struct {
	mu    sync.Mutex
	ttl   time.Duration
	clock Clock
	byKey map[string]pendingEntry // key: conversationID + "/" + upper(id)
}

// NewMemoryPending creates an in-memory pending set with the given TTL.
func NewMemoryPending(ttl time.Duration, clock Clock) *MemoryPending {
	return &MemoryPending{
		ttl:   ttl,
		clock: clock,
		byKey: make(map[string]pendingEntry),
	}
}

func pendingKey(conversationID, id string) string {
	return conversationID + "/" + strings.ToUpper(id)
}

// Put implements PendingDeletions. A second request for the same id simply
// supersedes the previous snapshot.
func (p *MemoryPending) Put(_ context.Context, conversationID string, t *domain.Ticket) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.prune()
	snapshot := *t
	p.byKey[pendingKey(conversationID, t.ID)] = pendingEntry{
		ticket:   &snapshot,
		storedAt: p.clock.Now(),
	}
	return nil
}

// Take implements PendingDeletions.
func (p *MemoryPending) Take(_ context.Context, conversationID, id string) (*domain.Ticket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.prune()
	key := pendingKey(conversationID, id)
	e, ok := p.byKey[key]
	if !ok {
		return nil, domain.ErrNoPendingDeletion
	}
	delete(p.byKey, key)
	return e.ticket, nil
}

// prune drops expired entries. Caller must hold the lock.
func (p *MemoryPending) prune() {
	if p.ttl <= 0 {
		return
	}
	cutoff := p.clock.Now().Add(-p.ttl)
	for k, e := range p.byKey {
		if e.storedAt.Before(cutoff) {
			delete(p.byKey, k)
		}
	}
}

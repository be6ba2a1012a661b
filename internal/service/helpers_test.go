package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dmarzano/superquote/internal/domain"
	"github.com/dmarzano/superquote/internal/service"
)

// ── Shared deterministic fakes ────────────────────────────────────────────────

var (
	_ service.Store    = (*memStore)(nil)
	_ service.Clock    = (*fakeClock)(nil)
	_ service.IDSource = (*seqIDs)(nil)
)

// memStore is an in-memory service.Store preserving insertion order.
// Individual operations can be made to fail for error-path tests.
type memStore struct {
	mu      sync.Mutex
	tickets []*domain.Ticket

	failAll error // returned by every op when set
}

func newMemStore() *memStore { return &memStore{} }

func (m *memStore) Insert(_ context.Context, t *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	snapshot := *t
	m.tickets = append(m.tickets, &snapshot)
	return nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	for _, t := range m.tickets {
		if strings.EqualFold(t.ID, id) {
			snapshot := *t
			return &snapshot, nil
		}
	}
	return nil, domain.ErrTicketNotFound
}

func (m *memStore) Update(_ context.Context, id string, changes domain.FieldChanges, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return false, m.failAll
	}
	for _, t := range m.tickets {
		if strings.EqualFold(t.ID, id) {
			t.Apply(changes, now)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return false, m.failAll
	}
	for i, t := range m.tickets {
		if strings.EqualFold(t.ID, id) {
			m.tickets = append(m.tickets[:i], m.tickets[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListRecent(_ context.Context, limit int) ([]*domain.Ticket, error) {
	return m.list(limit, false)
}

func (m *memStore) ListWins(_ context.Context, limit int) ([]*domain.Ticket, error) {
	return m.list(limit, true)
}

func (m *memStore) list(limit int, winsOnly bool) ([]*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	var out []*domain.Ticket
	for i := len(m.tickets) - 1; i >= 0 && len(out) < limit; i-- {
		t := m.tickets[i]
		if winsOnly && !t.IsWon() {
			continue
		}
		snapshot := *t
		out = append(out, &snapshot)
	}
	return out, nil
}

func (m *memStore) ListAll(_ context.Context, scanCap int) ([]*domain.Ticket, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, false, m.failAll
	}
	n := len(m.tickets)
	truncated := scanCap > 0 && n > scanCap
	if truncated {
		n = scanCap
	}
	out := make([]*domain.Ticket, 0, n)
	for _, t := range m.tickets[:n] {
		snapshot := *t
		out = append(out, &snapshot)
	}
	return out, truncated, nil
}

// fakeClock hands out a controllable time.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock { return &fakeClock{now: start} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// seqIDs hands out predictable ids: TESTID01, TESTID02, ...
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("TESTID%02d", s.n), nil
}

// quietLogger discards output; tests assert on results, not log lines.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

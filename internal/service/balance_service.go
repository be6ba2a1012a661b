package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/dmarzano/superquote/internal/domain"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// BalanceService
// ──────────────────────────────────────────────────────────────────────────────

// BalanceFilter narrows a balance computation to a subset of the ledger.
type BalanceFilter struct {
	// SubmitterID restricts to tickets recorded by one user.
	SubmitterID *int64
}

// BalanceService derives aggregate and time-series financial metrics from
// the ticket set. Nothing here is cached or persisted: every call recomputes
// from the store.
//
// The store scan is capped at scanCap tickets (see Store.ListAll); when the
// cap is hit the snapshot would under-count, so the truncation is logged
// loudly. Raising the cap is the fix, not ignoring the log line.
type BalanceService struct {
	store   Store
	scanCap int
	log     *slog.Logger
}

// NewBalanceService creates a BalanceService.
func NewBalanceService(store Store, scanCap int, log *slog.Logger) *BalanceService {
	return &BalanceService{store: store, scanCap: scanCap, log: log}
}

// ComputeBalance recomputes the balance snapshot from the full record set,
// optionally filtered. Reads fail open: on store failure it returns the
// snapshot of an empty ledger and logs the cause.
func (s *BalanceService) ComputeBalance(ctx context.Context, filter *BalanceFilter) domain.BalanceSnapshot {
	return Compute(s.load(ctx, filter))
}

// RunningSeries recomputes the running balance series, ordered by creation
// time. Same fail-open read policy as ComputeBalance.
func (s *BalanceService) RunningSeries(ctx context.Context) []domain.BalancePoint {
	return Series(s.load(ctx, nil))
}

// Export returns the full ticket set ordered by creation time ascending,
// plus a flag telling whether the scan cap cut the result. Unlike the
// aggregate reads this does NOT fail open: an export must be complete or
// report the error.
func (s *BalanceService) Export(ctx context.Context) ([]*domain.Ticket, bool, error) {
	tickets, truncated, err := s.store.ListAll(ctx, s.scanCap)
	if err != nil {
		return nil, false, err
	}
	ordered := make([]*domain.Ticket, len(tickets))
	copy(ordered, tickets)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	return ordered, truncated, nil
}

func (s *BalanceService) load(ctx context.Context, filter *BalanceFilter) []*domain.Ticket {
	tickets, truncated, err := s.store.ListAll(ctx, s.scanCap)
	if err != nil {
		s.log.Error("balance read degraded to empty result", "err", err)
		return nil
	}
	if truncated {
		s.log.Error("ticket scan hit cap, aggregates under-count", "cap", s.scanCap)
	}

	if filter == nil || filter.SubmitterID == nil {
		return tickets
	}
	filtered := tickets[:0:0]
	for _, t := range tickets {
		if t.SubmitterID == *filter.SubmitterID {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// ──────────────────────────────────────────────────────────────────────────────
// Pure computation — no I/O, fully deterministic
// ──────────────────────────────────────────────────────────────────────────────

// Compute builds a balance snapshot over the given tickets. Ties for the
// best payout are broken by input order (first seen wins).
func Compute(tickets []*domain.Ticket) domain.BalanceSnapshot {
	snap := domain.BalanceSnapshot{
		TotalTickets: len(tickets),
		TotalStake:   decimal.Zero,
		TotalReturn:  decimal.Zero,
		NetBalance:   decimal.Zero,
	}

	sumOdds := decimal.Zero
	sumPayout := decimal.Zero

	for _, t := range tickets {
		snap.TotalStake = snap.TotalStake.Add(t.Stake)
		sumOdds = sumOdds.Add(t.Odds)
		sumPayout = sumPayout.Add(t.Payout)

		if t.IsWon() {
			snap.Wins++
			snap.TotalReturn = snap.TotalReturn.Add(t.Payout)
			if snap.HighestWonOdds == nil || t.Odds.GreaterThan(snap.HighestWonOdds.Odds) {
				snap.HighestWonOdds = t
			}
		} else {
			snap.Losses++
		}

		if snap.BestWin == nil || t.Payout.GreaterThan(snap.BestWin.Payout) {
			snap.BestWin = t
		}
	}

	snap.NetBalance = snap.TotalReturn.Sub(snap.TotalStake)

	if n := len(tickets); n > 0 {
		count := decimal.NewFromInt(int64(n))
		rate := decimal.NewFromInt(int64(snap.Wins)).Div(count)
		avgOdds := sumOdds.Div(count)
		avgPayout := sumPayout.Div(count)
		snap.WinRate = &rate
		snap.AverageOdds = &avgOdds
		snap.AveragePayout = &avgPayout
	}

	return snap
}

// Series computes the running balance, one point per ticket: tickets are
// ordered by created_at ascending (stable, so same-second ties keep their
// insertion order) and scanned once, accumulating payout−stake for wins and
// −stake for losses. The input slice is not modified.
func Series(tickets []*domain.Ticket) []domain.BalancePoint {
	if len(tickets) == 0 {
		return nil
	}

	ordered := make([]*domain.Ticket, len(tickets))
	copy(ordered, tickets)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	points := make([]domain.BalancePoint, 0, len(ordered))
	balance := decimal.Zero
	for _, t := range ordered {
		balance = balance.Add(t.Net())
		points = append(points, domain.BalancePoint{
			Timestamp: t.CreatedAt,
			TicketID:  t.ID,
			Balance:   balance,
		})
	}
	return points
}

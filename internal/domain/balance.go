package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// BalanceSnapshot
// ──────────────────────────────────────────────────────────────────────────────

// BalanceSnapshot is a computed, never-persisted view over a set of tickets.
// It is recomputed on demand from the full record set.
type BalanceSnapshot struct {
	TotalTickets int             `json:"total_tickets"`
	Wins         int             `json:"wins"`
	Losses       int             `json:"losses"`
	TotalStake   decimal.Decimal `json:"total_stake"`
	TotalReturn  decimal.Decimal `json:"total_return"`
	NetBalance   decimal.Decimal `json:"net_balance"`

	// WinRate is wins / total tickets. Nil when there are no tickets, since
	// the ratio is undefined on an empty set.
	WinRate *decimal.Decimal `json:"win_rate,omitempty"`

	// AverageOdds and AveragePayout mirror the group stats
	// ("quota media" / "vincita media"). Nil on an empty set.
	AverageOdds   *decimal.Decimal `json:"average_odds,omitempty"`
	AveragePayout *decimal.Decimal `json:"average_payout,omitempty"`

	// BestWin is the ticket with the highest payout over all tickets
	// (first-seen wins ties). Nil when the set is empty.
	BestWin *Ticket `json:"best_win,omitempty"`

	// HighestWonOdds is the winning ticket with the highest odds.
	// Nil when no ticket has been won.
	HighestWonOdds *Ticket `json:"highest_won_odds,omitempty"`
}

// BalancePoint is one element of the running balance series: the group's
// cumulative balance right after the ticket created at Timestamp settled.
type BalancePoint struct {
	Timestamp time.Time       `json:"timestamp"`
	TicketID  string          `json:"ticket_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// Package domain defines the core business entities and types for the
// shared superquote bet ledger.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// Outcome represents the settled result of a ticket.
type Outcome string

const (
	OutcomeWon  Outcome = "WON"
	OutcomeLost Outcome = "LOST"
)

// IsValid returns true if the outcome is a recognised result.
func (o Outcome) IsValid() bool {
	return o == OutcomeWon || o == OutcomeLost
}

// outcomeSynonyms maps every accepted textual spelling (upper-cased) to its
// canonical Outcome. The Italian forms are the ones the group chat
// uses; the English forms are accepted for convenience.
var outcomeSynonyms = map[string]Outcome{
	"VINTA":   OutcomeWon,
	"VINCITA": OutcomeWon,
	"VINTO":   OutcomeWon,
	"WON":     OutcomeWon,
	"WIN":     OutcomeWon,
	"W":       OutcomeWon,
	"PERSA":   OutcomeLost,
	"PERDITA": OutcomeLost,
	"PERSO":   OutcomeLost,
	"LOST":    OutcomeLost,
	"LOSS":    OutcomeLost,
	"L":       OutcomeLost,
}

// NormalizeOutcome folds a user-typed outcome token to its canonical value.
// The second return is false when the token is not a known synonym; callers
// must treat that as a parse failure, never as a silent default.
func NormalizeOutcome(token string) (Outcome, bool) {
	o, ok := outcomeSynonyms[strings.ToUpper(strings.TrimSpace(token))]
	return o, ok
}

// IDLength is the fixed length of a ticket identifier.
const IDLength = 8

// ValidID reports whether s is a well-formed ticket id: exactly IDLength
// alphanumeric characters. Matching is case-insensitive everywhere ids are
// looked up, so lowercase input is fine here.
func ValidID(s string) bool {
	if len(s) != IDLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		default:
			return false
		}
	}
	return true
}

// ──────────────────────────────────────────────────────────────────────────────
// Ticket
// ──────────────────────────────────────────────────────────────────────────────

// Ticket represents a single shared bet record.
//
// Payout is derived state: odds × stake when the ticket is won, zero when
// lost. It is recomputed on every mutation of odds, stake or outcome and is
// never stored independently of a recompute.
type Ticket struct {
	ID          string          `json:"id"           db:"id"`
	Label       string          `json:"label"        db:"label"`
	Odds        decimal.Decimal `json:"odds"         db:"odds"`
	Stake       decimal.Decimal `json:"stake"        db:"stake"`
	Outcome     Outcome         `json:"outcome"      db:"outcome"`
	Payout      decimal.Decimal `json:"payout"       db:"payout"`
	CreatedAt   time.Time       `json:"created_at"   db:"created_at"`
	ModifiedAt  *time.Time      `json:"modified_at"  db:"modified_at"`
	SubmittedBy string          `json:"submitted_by" db:"submitted_by"`
	SubmitterID int64           `json:"submitter_id" db:"submitter_id"`
}

// IsWon returns true when the ticket settled in the group's favour.
func (t *Ticket) IsWon() bool {
	return t.Outcome == OutcomeWon
}

// ComputePayout returns the payout implied by an odds/stake/outcome triple.
func ComputePayout(odds, stake decimal.Decimal, outcome Outcome) decimal.Decimal {
	if outcome == OutcomeWon {
		return odds.Mul(stake)
	}
	return decimal.Zero
}

// RecomputePayout refreshes the derived payout from the ticket's current
// odds, stake and outcome.
func (t *Ticket) RecomputePayout() {
	t.Payout = ComputePayout(t.Odds, t.Stake, t.Outcome)
}

// Net returns the ticket's contribution to the running balance:
// payout − stake when won, −stake when lost.
func (t *Ticket) Net() decimal.Decimal {
	if t.IsWon() {
		return t.Payout.Sub(t.Stake)
	}
	return t.Stake.Neg()
}

// ──────────────────────────────────────────────────────────────────────────────
// FieldChanges
// ──────────────────────────────────────────────────────────────────────────────

// FieldChanges carries a partial update to a ticket. Nil fields are left
// untouched. It is a closed, typed set: exactly the four mutable fields,
// no string-keyed maps.
type FieldChanges struct {
	Label   *string
	Odds    *decimal.Decimal
	Stake   *decimal.Decimal
	Outcome *Outcome
}

// IsEmpty returns true when no field is set.
func (c FieldChanges) IsEmpty() bool {
	return c.Label == nil && c.Odds == nil && c.Stake == nil && c.Outcome == nil
}

// TouchesPayout returns true when applying the change set requires a payout
// recompute.
func (c FieldChanges) TouchesPayout() bool {
	return c.Odds != nil || c.Stake != nil || c.Outcome != nil
}

// Apply merges the change set into the ticket, recomputes the payout from
// the resulting full record, and stamps modified_at with now.
func (t *Ticket) Apply(c FieldChanges, now time.Time) {
	if c.Label != nil {
		t.Label = *c.Label
	}
	if c.Odds != nil {
		t.Odds = *c.Odds
	}
	if c.Stake != nil {
		t.Stake = *c.Stake
	}
	if c.Outcome != nil {
		t.Outcome = *c.Outcome
	}
	t.RecomputePayout()
	t.ModifiedAt = &now
}

// ──────────────────────────────────────────────────────────────────────────────
// Actor
// ──────────────────────────────────────────────────────────────────────────────

// Actor identifies who submitted a command and in which conversation.
// Identity is recorded for attribution only; there is no authorization.
type Actor struct {
	DisplayName    string
	UserID         int64
	ConversationID string
}

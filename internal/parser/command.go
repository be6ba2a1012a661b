package parser

import (
	"github.com/dmarzano/superquote/internal/domain"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Command kinds
// ──────────────────────────────────────────────────────────────────────────────

// Kind names the top-level command form a line was matched (or attempted)
// against.
type Kind string

const (
	KindAdd           Kind = "add"
	KindModify        Kind = "modify"
	KindDeleteRequest Kind = "delete_request"
	KindDeleteConfirm Kind = "delete_confirm"
)

// ──────────────────────────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────────────────────────

// Command is a successfully parsed ledger command. The concrete type is one
// of AddCommand, ModifyCommand, DeleteRequestCommand, DeleteConfirmCommand.
type Command interface {
	Kind() Kind
}

// AddCommand records a new ticket: SQ-<label>-<odds>-<stake>-<outcome>.
type AddCommand struct {
	Label   string
	Odds    decimal.Decimal
	Stake   decimal.Decimal
	Outcome domain.Outcome
}

func (AddCommand) Kind() Kind { return KindAdd }

// ModifyCommand mutates an existing ticket. Changes carries only the fields
// the user actually specified; all three MODIFICA forms flatten into it.
type ModifyCommand struct {
	ID      string
	Changes domain.FieldChanges
}

func (ModifyCommand) Kind() Kind { return KindModify }

// DeleteRequestCommand starts the two-phase deletion of a ticket.
type DeleteRequestCommand struct {
	ID string
}

func (DeleteRequestCommand) Kind() Kind { return KindDeleteRequest }

// DeleteConfirmCommand completes a previously requested deletion.
type DeleteConfirmCommand struct {
	ID string
}

func (DeleteConfirmCommand) Kind() Kind { return KindDeleteConfirm }

// Package parser turns one raw line of chat text into a typed ledger
// command. The grammar is the one the superquote group chat speaks:
// hyphen-delimited fields, case-insensitive keywords, Italian outcome
// synonyms. Labels cannot contain a hyphen — the delimiter makes such
// labels unrepresentable.
//
// Parse is a total function: every input yields a Command, a *ParseError
// describing which form was attempted, or ErrNotACommand for lines that do
// not start with a known keyword (ordinary chat, ignored by the caller).
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmarzano/superquote/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrNotACommand marks a line that does not begin with any recognised
// keyword. It is not a user-facing error: such lines are ordinary chat.
var ErrNotACommand = errors.New("not a command")

// ParseError reports a line that started like a known command but failed
// its sub-grammar. Attempted tells the renderer which form-specific help
// to show.
type ParseError struct {
	Attempted Kind
	Reason    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Attempted, e.Reason)
}

// ──────────────────────────────────────────────────────────────────────────────
// Grammar
// ──────────────────────────────────────────────────────────────────────────────

// Token definitions:
//
//	<id8>     exactly 8 alphanumeric characters
//	<decimal> digits[.digits]
//	<text>    one or more characters, no hyphen
//
// Top-level forms, checked in priority order:
//
//	SQ-<text>-<decimal>-<decimal>-<text>          add
//	MODIFICA-<id8>-<text>                         modify (outcome only)
//	MODIFICA-<id8>-<text>-<decimal>-<decimal>-<text>  modify (full)
//	MODIFICA-<id8>-<FIELD>=<value>                modify (single field)
//	ELIMINA-<id8> | DELETE-<id8>                  delete request
//	CONFERMA <id8>                                delete confirm
const (
	id8 = `([A-Z0-9]{8})`
	num = `([0-9]+(?:\.[0-9]+)?)`
	txt = `([^-]+)`
)

var (
	reAdd          = regexp.MustCompile(`(?i)^SQ-` + txt + `-` + num + `-` + num + `-` + txt + `$`)
	reModifySimple = regexp.MustCompile(`(?i)^MODIFICA-` + id8 + `-([^-=]+)$`)
	reModifyFull   = regexp.MustCompile(`(?i)^MODIFICA-` + id8 + `-` + txt + `-` + num + `-` + num + `-` + txt + `$`)
	reModifyField  = regexp.MustCompile(`(?i)^MODIFICA-` + id8 + `-([A-Z]+)=(.+)$`)
	reDelete       = regexp.MustCompile(`(?i)^(?:ELIMINA|DELETE)-` + id8 + `$`)
	reConfirm      = regexp.MustCompile(`(?i)^CONFERMA +` + id8 + `$`)
)

// Parse converts a raw line of text into a command.
func Parse(text string) (Command, error) {
	line := strings.TrimSpace(text)
	upper := strings.ToUpper(line)

	switch {
	case strings.HasPrefix(upper, "SQ"):
		return parseAdd(line)
	case strings.HasPrefix(upper, "MODIFICA"):
		return parseModify(line)
	case strings.HasPrefix(upper, "ELIMINA"), strings.HasPrefix(upper, "DELETE"):
		return parseDeleteRequest(line)
	case strings.HasPrefix(upper, "CONFERMA"):
		return parseDeleteConfirm(line)
	}
	return nil, ErrNotACommand
}

// ──────────────────────────────────────────────────────────────────────────────
// Per-form parsers
// ──────────────────────────────────────────────────────────────────────────────

func parseAdd(line string) (Command, error) {
	m := reAdd.FindStringSubmatch(line)
	if m == nil {
		return nil, &ParseError{KindAdd, "expected SQ-risultato-quota-puntata-esito"}
	}

	odds, err := parsePositiveDecimal(m[2])
	if err != nil {
		return nil, &ParseError{KindAdd, fmt.Sprintf("quota %q: %v", m[2], err)}
	}
	stake, err := parseDecimal(m[3])
	if err != nil {
		return nil, &ParseError{KindAdd, fmt.Sprintf("puntata %q: %v", m[3], err)}
	}
	outcome, ok := domain.NormalizeOutcome(m[4])
	if !ok {
		return nil, &ParseError{KindAdd, fmt.Sprintf("esito %q non riconosciuto", strings.TrimSpace(m[4]))}
	}

	return AddCommand{
		Label:   strings.TrimSpace(m[1]),
		Odds:    odds,
		Stake:   stake,
		Outcome: outcome,
	}, nil
}

func parseModify(line string) (Command, error) {
	// Outcome-only form first: MODIFICA-<id8>-VINTA
	if m := reModifySimple.FindStringSubmatch(line); m != nil {
		outcome, ok := domain.NormalizeOutcome(m[2])
		if !ok {
			return nil, &ParseError{KindModify, fmt.Sprintf("esito %q non riconosciuto", strings.TrimSpace(m[2]))}
		}
		return ModifyCommand{
			ID:      strings.ToUpper(m[1]),
			Changes: domain.FieldChanges{Outcome: &outcome},
		}, nil
	}

	// Full re-specification: MODIFICA-<id8>-<label>-<odds>-<stake>-<outcome>
	if m := reModifyFull.FindStringSubmatch(line); m != nil {
		odds, err := parsePositiveDecimal(m[3])
		if err != nil {
			return nil, &ParseError{KindModify, fmt.Sprintf("quota %q: %v", m[3], err)}
		}
		stake, err := parseDecimal(m[4])
		if err != nil {
			return nil, &ParseError{KindModify, fmt.Sprintf("puntata %q: %v", m[4], err)}
		}
		outcome, ok := domain.NormalizeOutcome(m[5])
		if !ok {
			return nil, &ParseError{KindModify, fmt.Sprintf("esito %q non riconosciuto", strings.TrimSpace(m[5]))}
		}
		label := strings.TrimSpace(m[2])
		return ModifyCommand{
			ID: strings.ToUpper(m[1]),
			Changes: domain.FieldChanges{
				Label:   &label,
				Odds:    &odds,
				Stake:   &stake,
				Outcome: &outcome,
			},
		}, nil
	}

	// Single-field form: MODIFICA-<id8>-CAMPO=VALORE
	if m := reModifyField.FindStringSubmatch(line); m != nil {
		changes, err := parseFieldAssignment(m[2], m[3])
		if err != nil {
			return nil, err
		}
		return ModifyCommand{ID: strings.ToUpper(m[1]), Changes: changes}, nil
	}

	return nil, &ParseError{KindModify, "expected MODIFICA-ID-... (esito, riga completa, o CAMPO=VALORE)"}
}

// parseFieldAssignment maps one CAMPO=VALORE pair onto the closed set of
// mutable fields. Both the Italian field names the group uses and their
// English equivalents are accepted.
func parseFieldAssignment(field, value string) (domain.FieldChanges, error) {
	value = strings.TrimSpace(value)

	switch strings.ToUpper(field) {
	case "RISULTATO", "LABEL":
		if value == "" || strings.Contains(value, "-") {
			return domain.FieldChanges{}, &ParseError{KindModify, "risultato non valido (niente trattini)"}
		}
		return domain.FieldChanges{Label: &value}, nil

	case "QUOTA", "ODDS":
		odds, err := parsePositiveDecimal(value)
		if err != nil {
			return domain.FieldChanges{}, &ParseError{KindModify, fmt.Sprintf("quota %q: %v", value, err)}
		}
		return domain.FieldChanges{Odds: &odds}, nil

	case "PUNTATA", "STAKE":
		stake, err := parseDecimal(value)
		if err != nil {
			return domain.FieldChanges{}, &ParseError{KindModify, fmt.Sprintf("puntata %q: %v", value, err)}
		}
		return domain.FieldChanges{Stake: &stake}, nil

	case "ESITO", "OUTCOME":
		outcome, ok := domain.NormalizeOutcome(value)
		if !ok {
			return domain.FieldChanges{}, &ParseError{KindModify, fmt.Sprintf("esito %q non riconosciuto", value)}
		}
		return domain.FieldChanges{Outcome: &outcome}, nil
	}

	return domain.FieldChanges{}, &ParseError{KindModify, fmt.Sprintf("campo %q sconosciuto (RISULTATO, QUOTA, PUNTATA, ESITO)", field)}
}

func parseDeleteRequest(line string) (Command, error) {
	m := reDelete.FindStringSubmatch(line)
	if m == nil {
		return nil, &ParseError{KindDeleteRequest, "expected ELIMINA-ID (8 caratteri)"}
	}
	return DeleteRequestCommand{ID: strings.ToUpper(m[1])}, nil
}

func parseDeleteConfirm(line string) (Command, error) {
	// Exactly two space-separated tokens: CONFERMA <id8>.
	if len(strings.Fields(line)) != 2 {
		return nil, &ParseError{KindDeleteConfirm, "expected CONFERMA ID"}
	}
	m := reConfirm.FindStringSubmatch(line)
	if m == nil {
		return nil, &ParseError{KindDeleteConfirm, "expected CONFERMA ID (8 caratteri)"}
	}
	return DeleteConfirmCommand{ID: strings.ToUpper(m[1])}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Numeric helpers
// ──────────────────────────────────────────────────────────────────────────────

// parseDecimal parses digits[.digits] into a non-negative decimal. The
// regexes already constrain the shape; this never sees signs or exponents.
func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, errors.New("non è un numero")
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("deve essere non negativo")
	}
	return d, nil
}

func parsePositiveDecimal(s string) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, errors.New("deve essere maggiore di zero")
	}
	return d, nil
}

package parser_test

import (
	"errors"
	"testing"

	"github.com/dmarzano/superquote/internal/domain"
	"github.com/dmarzano/superquote/internal/parser"
	"github.com/shopspring/decimal"
)

// ── Add ───────────────────────────────────────────────────────────────────────

func TestParseAdd(t *testing.T) {
	cmd, err := parser.Parse("SQ-1MILAN-2.00-10.00-VINTA")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	add, ok := cmd.(parser.AddCommand)
	if !ok {
		t.Fatalf("Parse returned %T, want AddCommand", cmd)
	}
	if add.Label != "1MILAN" {
		t.Errorf("label = %q, want 1MILAN", add.Label)
	}
	if !add.Odds.Equal(decimal.NewFromFloat(2.00)) {
		t.Errorf("odds = %s, want 2.00", add.Odds)
	}
	if !add.Stake.Equal(decimal.NewFromFloat(10.00)) {
		t.Errorf("stake = %s, want 10.00", add.Stake)
	}
	if add.Outcome != domain.OutcomeWon {
		t.Errorf("outcome = %v, want WON", add.Outcome)
	}
}

// Labels may contain dots (OVER2.5) — only the hyphen is reserved.
func TestParseAdd_LabelWithDot(t *testing.T) {
	cmd, err := parser.Parse("SQ-OVER2.5-1.85-15.00-PERSA")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	add := cmd.(parser.AddCommand)
	if add.Label != "OVER2.5" {
		t.Errorf("label = %q, want OVER2.5", add.Label)
	}
	if add.Outcome != domain.OutcomeLost {
		t.Errorf("outcome = %v, want LOST", add.Outcome)
	}
}

func TestParseAdd_CaseInsensitive(t *testing.T) {
	cmd, err := parser.Parse("sq-combo-3.20-50-win")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	add := cmd.(parser.AddCommand)
	if add.Outcome != domain.OutcomeWon {
		t.Errorf("outcome = %v, want WON", add.Outcome)
	}
	if add.Label != "combo" {
		t.Errorf("label = %q, want combo (input casing kept)", add.Label)
	}
}

func TestParseAdd_Rejections(t *testing.T) {
	cases := []string{
		"SQ-1MILAN-abc-10.00-VINTA",   // non-numeric odds
		"SQ-1MILAN-2.00-x-VINTA",      // non-numeric stake
		"SQ-1MILAN-2.00-10.00-FORSE",  // unknown outcome
		"SQ-1MILAN-2.00-10.00",        // missing outcome
		"SQ-1MILAN-0-10.00-VINTA",     // odds must be positive
		"SQ-1MILAN-2.00-10.00-VINTA-", // trailing delimiter
		"SQ",                          // bare keyword
	}
	for _, line := range cases {
		_, err := parser.Parse(line)
		var pe *parser.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Parse(%q) err = %v, want *ParseError", line, err)
			continue
		}
		if pe.Attempted != parser.KindAdd {
			t.Errorf("Parse(%q) attempted = %v, want add", line, pe.Attempted)
		}
	}
}

// ── Modify ────────────────────────────────────────────────────────────────────

func TestParseModify_OutcomeOnly(t *testing.T) {
	cmd, err := parser.Parse("MODIFICA-AB12CD34-PERSA")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	mod := cmd.(parser.ModifyCommand)
	if mod.ID != "AB12CD34" {
		t.Errorf("id = %q, want AB12CD34", mod.ID)
	}
	ch := mod.Changes
	if ch.Outcome == nil || *ch.Outcome != domain.OutcomeLost {
		t.Errorf("outcome change = %v, want LOST", ch.Outcome)
	}
	if ch.Label != nil || ch.Odds != nil || ch.Stake != nil {
		t.Errorf("unexpected extra changes: %+v", ch)
	}
}

func TestParseModify_Full(t *testing.T) {
	cmd, err := parser.Parse("modifica-ab12cd34-OVER2.5-1.90-25.00-vinta")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	mod := cmd.(parser.ModifyCommand)
	if mod.ID != "AB12CD34" {
		t.Errorf("id = %q, want AB12CD34 (upper-cased)", mod.ID)
	}
	ch := mod.Changes
	if ch.Label == nil || *ch.Label != "OVER2.5" {
		t.Errorf("label change = %v, want OVER2.5", ch.Label)
	}
	if ch.Odds == nil || !ch.Odds.Equal(decimal.NewFromFloat(1.90)) {
		t.Errorf("odds change = %v, want 1.90", ch.Odds)
	}
	if ch.Stake == nil || !ch.Stake.Equal(decimal.NewFromFloat(25.00)) {
		t.Errorf("stake change = %v, want 25.00", ch.Stake)
	}
	if ch.Outcome == nil || *ch.Outcome != domain.OutcomeWon {
		t.Errorf("outcome change = %v, want WON", ch.Outcome)
	}
}

func TestParseModify_SingleField(t *testing.T) {
	cases := []struct {
		line  string
		check func(t *testing.T, ch domain.FieldChanges)
	}{
		{"MODIFICA-AB12CD34-QUOTA=2.50", func(t *testing.T, ch domain.FieldChanges) {
			if ch.Odds == nil || !ch.Odds.Equal(decimal.NewFromFloat(2.50)) {
				t.Errorf("odds = %v, want 2.50", ch.Odds)
			}
		}},
		{"MODIFICA-AB12CD34-ODDS=2.50", func(t *testing.T, ch domain.FieldChanges) {
			if ch.Odds == nil || !ch.Odds.Equal(decimal.NewFromFloat(2.50)) {
				t.Errorf("odds = %v, want 2.50", ch.Odds)
			}
		}},
		{"MODIFICA-AB12CD34-PUNTATA=5", func(t *testing.T, ch domain.FieldChanges) {
			if ch.Stake == nil || !ch.Stake.Equal(decimal.NewFromInt(5)) {
				t.Errorf("stake = %v, want 5", ch.Stake)
			}
		}},
		{"MODIFICA-AB12CD34-RISULTATO=COMBO X2", func(t *testing.T, ch domain.FieldChanges) {
			if ch.Label == nil || *ch.Label != "COMBO X2" {
				t.Errorf("label = %v, want COMBO X2", ch.Label)
			}
		}},
		{"MODIFICA-AB12CD34-esito=w", func(t *testing.T, ch domain.FieldChanges) {
			if ch.Outcome == nil || *ch.Outcome != domain.OutcomeWon {
				t.Errorf("outcome = %v, want WON", ch.Outcome)
			}
		}},
	}
	for _, tc := range cases {
		cmd, err := parser.Parse(tc.line)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tc.line, err)
			continue
		}
		tc.check(t, cmd.(parser.ModifyCommand).Changes)
	}
}

func TestParseModify_Rejections(t *testing.T) {
	cases := []string{
		"MODIFICA-AB12CD3-VINTA",          // id too short
		"MODIFICA-AB12CD345-VINTA",        // id too long
		"MODIFICA-AB12CD34-FORSE",         // unknown outcome
		"MODIFICA-AB12CD34-CAMPO=X",       // unknown field
		"MODIFICA-AB12CD34-QUOTA=abc",     // non-numeric odds
		"MODIFICA-AB12CD34-QUOTA=0",       // odds must be positive
		"MODIFICA-AB12CD34-RISULTATO=a-b", // hyphen in label
		"MODIFICA",                        // bare keyword
	}
	for _, line := range cases {
		_, err := parser.Parse(line)
		var pe *parser.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Parse(%q) err = %v, want *ParseError", line, err)
			continue
		}
		if pe.Attempted != parser.KindModify {
			t.Errorf("Parse(%q) attempted = %v, want modify", line, pe.Attempted)
		}
	}
}

// ── Delete request / confirm ──────────────────────────────────────────────────

func TestParseDeleteRequest(t *testing.T) {
	for _, line := range []string{"ELIMINA-AB12CD34", "DELETE-ab12cd34", "elimina-AB12CD34"} {
		cmd, err := parser.Parse(line)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", line, err)
			continue
		}
		del, ok := cmd.(parser.DeleteRequestCommand)
		if !ok {
			t.Errorf("Parse(%q) = %T, want DeleteRequestCommand", line, cmd)
			continue
		}
		if del.ID != "AB12CD34" {
			t.Errorf("Parse(%q) id = %q, want AB12CD34", line, del.ID)
		}
	}
}

func TestParseDeleteConfirm(t *testing.T) {
	cmd, err := parser.Parse("conferma AB12CD34")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	conf := cmd.(parser.DeleteConfirmCommand)
	if conf.ID != "AB12CD34" {
		t.Errorf("id = %q, want AB12CD34", conf.ID)
	}
}

func TestParseDeleteConfirm_Rejections(t *testing.T) {
	cases := []string{
		"CONFERMA",                  // missing id
		"CONFERMA AB12CD34 extra",   // three tokens
		"CONFERMA AB12CD3",          // id too short
		"CONFERMA-AB12CD34",         // hyphen instead of space
		"CONFERMA AB12CD34AB12CD34", // id too long
	}
	for _, line := range cases {
		_, err := parser.Parse(line)
		var pe *parser.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Parse(%q) err = %v, want *ParseError", line, err)
			continue
		}
		if pe.Attempted != parser.KindDeleteConfirm {
			t.Errorf("Parse(%q) attempted = %v, want delete_confirm", line, pe.Attempted)
		}
	}
}

// ── Ordinary chat ─────────────────────────────────────────────────────────────

func TestParse_NotACommand(t *testing.T) {
	for _, line := range []string{"", "ciao a tutti", "forza milan!", "1MILAN-2.00"} {
		_, err := parser.Parse(line)
		if !errors.Is(err, parser.ErrNotACommand) {
			t.Errorf("Parse(%q) err = %v, want ErrNotACommand", line, err)
		}
	}
}

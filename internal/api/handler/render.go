package handler

import (
	"fmt"
	"strings"

	"github.com/dmarzano/superquote/internal/domain"
	"github.com/dmarzano/superquote/internal/parser"
	"github.com/dmarzano/superquote/internal/service"
	"github.com/shopspring/decimal"
)

// Reply rendering. The ledger speaks Italian to the group, like the chat it
// grew out of; all money is formatted with two decimals.

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func outcomeLabel(o domain.Outcome) string {
	if o == domain.OutcomeWon {
		return "VINTA"
	}
	return "PERSA"
}

func outcomeIcon(o domain.Outcome) string {
	if o == domain.OutcomeWon {
		return "✅"
	}
	return "❌"
}

// renderResult turns a CommandResult into the reply text for the chat.
func renderResult(res service.CommandResult) string {
	switch res.Kind {
	case service.ResultAdded:
		t := res.Ticket
		return fmt.Sprintf(
			"✅ Superquote registrata!\n"+
				"🆔 ID: %s\n"+
				"🎯 Risultato: %s\n"+
				"💰 Quota: %s\n"+
				"💵 Puntata: €%s\n"+
				"🏆 Vincita: €%s\n"+
				"📊 Esito: %s",
			t.ID, t.Label, money(t.Odds), money(t.Stake), money(t.Payout), outcomeLabel(t.Outcome))

	case service.ResultModified:
		t := res.Ticket
		return fmt.Sprintf(
			"✏️ Superquote %s aggiornata!\n"+
				"🎯 %s | quota %s | puntata €%s\n"+
				"%s %s → vincita €%s",
			t.ID, t.Label, money(t.Odds), money(t.Stake),
			outcomeIcon(t.Outcome), outcomeLabel(t.Outcome), money(t.Payout))

	case service.ResultDeleteRequested:
		t := res.Ticket
		return fmt.Sprintf(
			"🗑️ Vuoi eliminare la superquote %s (%s)?\n"+
				"Scrivi: CONFERMA %s",
			t.ID, t.Label, t.ID)

	case service.ResultDeleted:
		return fmt.Sprintf("🗑️ Superquote %s eliminata!", res.ID)

	case service.ResultNotFound:
		return fmt.Sprintf("❌ Nessuna superquote con ID %s", res.ID)

	case service.ResultInvalidConfirmation:
		return fmt.Sprintf(
			"❌ Nessuna eliminazione in sospeso per %s.\n"+
				"Prima richiedila con: ELIMINA-%s", res.ID, res.ID)

	case service.ResultRejected:
		return "❌ " + res.Reason
	}
	return "❌ Comando non gestito"
}

// renderParseError returns form-specific help for the command the user
// attempted.
func renderParseError(pe *parser.ParseError) string {
	switch pe.Attempted {
	case parser.KindAdd:
		return "❌ Formato non valido!\n\n" +
			"📝 Usa il formato: SQ-risultato-quota-puntata-esito\n\n" +
			"🎯 Esempi corretti:\n" +
			"• SQ-1MILAN-2.00-10.00-VINTA\n" +
			"• SQ-OVER2.5-1.85-15.00-PERSA\n" +
			"• SQ-COMBO-3.20-50.00-VINTA"

	case parser.KindModify:
		return "❌ Formato non valido!\n\n" +
			"📝 Modifica in tre modi:\n" +
			"• MODIFICA-ID-ESITO (es. MODIFICA-AB12CD34-PERSA)\n" +
			"• MODIFICA-ID-risultato-quota-puntata-esito\n" +
			"• MODIFICA-ID-CAMPO=VALORE (RISULTATO, QUOTA, PUNTATA, ESITO)"

	case parser.KindDeleteRequest:
		return "❌ Formato non valido!\n\n" +
			"📝 Usa: ELIMINA-ID (l'ID ha 8 caratteri, es. ELIMINA-AB12CD34)"

	case parser.KindDeleteConfirm:
		return "❌ Formato non valido!\n\n" +
			"📝 Usa: CONFERMA ID (es. CONFERMA AB12CD34)"
	}
	return "❌ Comando non riconosciuto"
}

// renderStats builds the full statistics text, the shape of the group's
// /stats report.
func renderStats(snap domain.BalanceSnapshot) string {
	if snap.TotalTickets == 0 {
		return "📊 Nessuna superquote registrata ancora!"
	}

	var b strings.Builder
	b.WriteString("📊 STATISTICHE SUPERQUOTE CONDIVISE\n\n")
	fmt.Fprintf(&b, "🎯 Totale superquote: %d\n", snap.TotalTickets)
	fmt.Fprintf(&b, "✅ Vinte: %d\n", snap.Wins)
	fmt.Fprintf(&b, "❌ Perse: %d\n", snap.Losses)
	if snap.WinRate != nil {
		fmt.Fprintf(&b, "📈 %% Successo: %s%%\n", snap.WinRate.Mul(decimal.NewFromInt(100)).StringFixed(1))
	}

	b.WriteString("\n💰 DATI ECONOMICI:\n")
	fmt.Fprintf(&b, "💵 Puntato totale: €%s\n", money(snap.TotalStake))
	fmt.Fprintf(&b, "🏆 Vincita totale: €%s\n", money(snap.TotalReturn))
	fmt.Fprintf(&b, "⚖️ Bilancio: €%s\n", money(snap.NetBalance))
	if snap.AveragePayout != nil {
		fmt.Fprintf(&b, "📊 Vincita media: €%s\n", money(*snap.AveragePayout))
	}
	if snap.AverageOdds != nil {
		fmt.Fprintf(&b, "🎲 Quota media: %s\n", money(*snap.AverageOdds))
	}

	if snap.BestWin != nil && snap.BestWin.Payout.IsPositive() {
		b.WriteString("\n🏆 MIGLIOR VINCITA:\n")
		fmt.Fprintf(&b, "🎯 %s\n", snap.BestWin.Label)
		fmt.Fprintf(&b, "💰 Quota %s → €%s\n", money(snap.BestWin.Odds), money(snap.BestWin.Payout))
	}
	if snap.HighestWonOdds != nil {
		b.WriteString("\n🎰 QUOTA PIÙ ALTA VINTA:\n")
		fmt.Fprintf(&b, "🎯 %s\n", snap.HighestWonOdds.Label)
		fmt.Fprintf(&b, "💰 Quota %s\n", money(snap.HighestWonOdds.Odds))
	}
	return b.String()
}

// renderList builds the recent-tickets text. total is the full ledger
// count; when more tickets exist than shown, a footer points at the export.
func renderList(tickets []*domain.Ticket, total int) string {
	if len(tickets) == 0 {
		return "📝 Nessuna superquote registrata ancora!"
	}

	var b strings.Builder
	b.WriteString("📝 ULTIME SUPERQUOTE\n\n")
	for _, t := range tickets {
		fmt.Fprintf(&b, "%s %s [%s]\n", outcomeIcon(t.Outcome), t.Label, t.ID)
		fmt.Fprintf(&b, "    💰 %s → €%s | %s\n\n",
			money(t.Odds), money(t.Payout), t.CreatedAt.Format("2006-01-02"))
	}
	b.WriteString(moreFooter(total, len(tickets)))
	return b.String()
}

// renderWins builds the recent-wins text. totalWins is the full won count.
func renderWins(tickets []*domain.Ticket, totalWins int) string {
	if len(tickets) == 0 {
		return "🎯 Nessuna vincita registrata ancora!"
	}

	var b strings.Builder
	b.WriteString("🏆 ULTIME VINCITE\n\n")
	for _, t := range tickets {
		fmt.Fprintf(&b, "✅ %s [%s]\n", t.Label, t.ID)
		fmt.Fprintf(&b, "    💰 %s → €%s | %s\n\n",
			money(t.Odds), money(t.Payout), t.CreatedAt.Format("2006-01-02"))
	}
	b.WriteString(moreFooter(totalWins, len(tickets)))
	return b.String()
}

func moreFooter(total, shown int) string {
	if total <= shown {
		return ""
	}
	return fmt.Sprintf("📋 ... e altre %d superquote\nUsa /api/export.csv per l'elenco completo", total-shown)
}

// renderHelp is the command reference shown by /help and on request.
func renderHelp() string {
	return "🤖 BOT SUPERQUOTE CONDIVISE\n\n" +
		"📝 COME REGISTRARE:\n" +
		"Scrivi: SQ-risultato-quota-puntata-esito\n\n" +
		"🎯 ESEMPI:\n" +
		"• SQ-1MILAN-2.00-10.00-VINTA\n" +
		"• SQ-OVER2.5-1.85-15.00-PERSA\n" +
		"• SQ-COMBO-3.20-50.00-VINTA\n\n" +
		"✏️ CORREZIONI:\n" +
		"• MODIFICA-ID-ESITO\n" +
		"• MODIFICA-ID-risultato-quota-puntata-esito\n" +
		"• MODIFICA-ID-CAMPO=VALORE\n\n" +
		"🗑️ ELIMINAZIONI (in due passi):\n" +
		"• ELIMINA-ID poi CONFERMA ID\n\n" +
		"🎲 ESITI VALIDI:\n" +
		"VINTA, VINCITA, WIN → vincita\n" +
		"PERSA, PERDITA, LOSS → perdita"
}

package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmarzano/superquote/internal/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the read-only reporting endpoints: statistics,
// ticket listings, the running balance series and the CSV export.
type ReportHandler struct {
	ledger      *service.LedgerService
	balance     *service.BalanceService
	recentLimit int
	winsLimit   int
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(ledger *service.LedgerService, balance *service.BalanceService, recentLimit, winsLimit int) *ReportHandler {
	return &ReportHandler{
		ledger:      ledger,
		balance:     balance,
		recentLimit: recentLimit,
		winsLimit:   winsLimit,
	}
}

// GetStats godoc
// GET /api/stats?submitter_id=42
// Returns the aggregate snapshot plus its rendered chat text.
func (h *ReportHandler) GetStats(c *gin.Context) {
	var filter *service.BalanceFilter
	if raw := c.Query("submitter_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_SUBMITTER", "submitter_id must be an integer")
			return
		}
		filter = &service.BalanceFilter{SubmitterID: &id}
	}

	snap := h.balance.ComputeBalance(c.Request.Context(), filter)
	respondSuccess(c, http.StatusOK, gin.H{
		"snapshot": snap,
		"text":     renderStats(snap),
	})
}

// GetTickets godoc
// GET /api/tickets?limit=12
func (h *ReportHandler) GetTickets(c *gin.Context) {
	tickets := h.ledger.ListRecent(c.Request.Context(), limitParam(c, h.recentLimit))
	total := h.balance.ComputeBalance(c.Request.Context(), nil).TotalTickets
	respondSuccess(c, http.StatusOK, gin.H{
		"tickets": tickets,
		"total":   total,
		"text":    renderList(tickets, total),
	})
}

// GetWins godoc
// GET /api/tickets/wins?limit=10
func (h *ReportHandler) GetWins(c *gin.Context) {
	tickets := h.ledger.ListWins(c.Request.Context(), limitParam(c, h.winsLimit))
	total := h.balance.ComputeBalance(c.Request.Context(), nil).Wins
	respondSuccess(c, http.StatusOK, gin.H{
		"tickets": tickets,
		"total":   total,
		"text":    renderWins(tickets, total),
	})
}

// limitParam reads an optional positive ?limit, falling back to def.
func limitParam(c *gin.Context, def int) int {
	raw := c.Query("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// GetBalanceSeries godoc
// GET /api/balance/series
// One point per ticket, ordered by creation time, with the running total.
func (h *ReportHandler) GetBalanceSeries(c *gin.Context) {
	points := h.balance.RunningSeries(c.Request.Context())
	respondSuccess(c, http.StatusOK, gin.H{
		"points": points,
		"count":  len(points),
	})
}

// ExportCSV godoc
// GET /api/export.csv
// Streams the full ledger, oldest first. A truncated export (scan cap hit)
// is flagged in a response header rather than silently cut.
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	tickets, truncated, err := h.balance.Export(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "ERR_STORE_UNAVAILABLE", "archivio momentaneamente non disponibile, riprova")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="superquote.csv"`)
	c.Header("X-Export-Count", strconv.Itoa(len(tickets)))
	if truncated {
		c.Header("X-Export-Truncated", "true")
	}

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"data", "id", "risultato", "quota", "puntata", "vincita", "esito", "registrato_da"})
	for _, t := range tickets {
		_ = w.Write([]string{
			t.CreatedAt.Format("2006-01-02 15:04:05"),
			t.ID,
			t.Label,
			t.Odds.StringFixed(2),
			t.Stake.StringFixed(2),
			t.Payout.StringFixed(2),
			outcomeLabel(t.Outcome),
			t.SubmittedBy,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		// Headers are already out; nothing left to do but log via gin.
		_ = c.Error(fmt.Errorf("csv export: %w", err))
	}
}

// GetHelp godoc
// GET /api/help
func (h *ReportHandler) GetHelp(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"text": renderHelp()})
}

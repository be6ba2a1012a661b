package api

import (
	"net/http"

	"github.com/dmarzano/superquote/internal/api/handler"
	"github.com/dmarzano/superquote/internal/api/middleware"
	"github.com/dmarzano/superquote/internal/config"
	"github.com/dmarzano/superquote/internal/service"
	"github.com/gin-gonic/gin"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	Ledger  *service.LedgerService
	Balance *service.BalanceService
	Cfg     *config.Config
}

// SetupRouter creates and configures the main Gin engine with all routes,
// middleware and rate limiting rules.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// ── Health check ─────────────────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	messageH := handler.NewMessageHandler(deps.Ledger)
	reportH := handler.NewReportHandler(deps.Ledger, deps.Balance,
		deps.Cfg.Ledger.RecentLimit, deps.Cfg.Ledger.WinsLimit)

	// ── Rate limiter ──────────────────────────────────────────────────────────
	msgRL := middleware.RateLimitMiddleware(10) // 10 msg/s per conversation

	api := r.Group("/api")
	{
		// ── Message ingestion ─────────────────────────────────────────────────
		api.POST("/messages", msgRL, messageH.HandleMessage)

		// ── Reports (public reads) ────────────────────────────────────────────
		api.GET("/stats", reportH.GetStats)
		api.GET("/tickets", reportH.GetTickets)
		api.GET("/tickets/wins", reportH.GetWins)
		api.GET("/balance/series", reportH.GetBalanceSeries)
		api.GET("/export.csv", reportH.ExportCSV)
		api.GET("/help", reportH.GetHelp)
	}

	return r
}

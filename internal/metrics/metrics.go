// Package metrics exposes prometheus counters for the ledger and a small
// standalone HTTP server for /metrics and /healthz, kept off the public
// port.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesTotal counts inbound lines by their execution result kind.
	// The label also carries "parse_error" and "not_a_command".
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "superquote_messages_total",
		Help: "Inbound chat lines by handling result.",
	}, []string{"result"})

	// StoreErrorsTotal counts classified persistence failures.
	StoreErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "superquote_store_errors_total",
		Help: "Persistence failures by classified kind.",
	}, []string{"kind"})
)

// HealthFunc reports whether the service's dependencies are reachable.
type HealthFunc func(ctx context.Context) error

// StartServer runs a lightweight HTTP server for /metrics and /healthz in
// a background goroutine and returns it so main can shut it down.
func StartServer(port string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprintf(w, "unhealthy: %v", err)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}

// Package inspector exposes a local, read-mostly HTTP view over the wallet
// repositories for debugging.
package inspector

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/chainsafe/wallet-sync/pkg/app/http"
	"github.com/chainsafe/wallet-sync/pkg/walletdata"
)

const defaultRequestTimeout = 30 * time.Second

// HTTP serves the wallet data over HTTP
type HTTP struct {
	data   *walletdata.Data
	logger *zap.Logger
}

// NewRouter returns the inspector router with its middleware stack, the
// health and metrics endpoints and every data route.
func NewRouter(data *walletdata.Data, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	RegisterRoutes(r, data, logger)
	return r
}

// RegisterRoutes registers the data endpoints on r.
func RegisterRoutes(r chi.Router, data *walletdata.Data, logger *zap.Logger) {
	h := &HTTP{
		data:   data,
		logger: logger,
	}

	r.Get("/sync/{type}/{address}/{chainID}", apphttp.HandleError(h.syncStatus))
	r.Get("/balances/{address}", apphttp.HandleError(h.balances))
	r.Get("/portfolio/{address}/{chainID}", apphttp.HandleError(h.portfolio))
	r.Get("/tokens/{chainID}", apphttp.HandleError(h.tokens))
	r.Get("/transactions/{address}", apphttp.HandleError(h.transactions))
	r.Get("/activity/{address}", apphttp.HandleError(h.activity))
	r.Get("/contacts", apphttp.HandleError(h.contacts))
	r.Get("/wc/sessions", apphttp.HandleError(h.sessions))
	r.Get("/wc/requests/pending", apphttp.HandleError(h.pendingRequests))
	r.Get("/preferences/{key}", apphttp.HandleError(h.preference))
	r.Post("/maintenance/prune", apphttp.HandleError(h.prune))
	r.Delete("/wallet-data", apphttp.HandleError(h.wipe))
}

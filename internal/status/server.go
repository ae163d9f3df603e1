// Package status exposes the channels' observable state over a local,
// read-only HTTP surface for presentation adapters, plus Prometheus
// metrics. It renders state; it never mutates it.
package status

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/chat"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/notify"
	"github.com/nzali-fankem-vladimir/gestion-clinic-client/pkg/logging"
)

// Connection is the read-only view of the push transport.
type Connection interface {
	IsConnected() bool
	StatusDescription() string
}

// Config collects the channels the status surface renders.
type Config struct {
	Connection Connection
	Center     *notify.Center
	Silent     *notify.SilentSink
	Chat       *chat.Service
	Logger     *logging.Logger
	Registry   *prometheus.Registry
}

// New builds the router.
func New(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Component("status")

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, logger, map[string]any{
			"connected":   cfg.Connection.IsConnected(),
			"description": cfg.Connection.StatusDescription(),
		})
	})

	r.Get("/notifications", func(w http.ResponseWriter, r *http.Request) {
		category := r.URL.Query().Get("category")
		writeJSON(w, logger, map[string]any{
			"notifications": cfg.Center.FilterByCategory(category),
			"unreadCount":   cfg.Center.UnreadCount(),
		})
	})

	r.Get("/notifications/silent", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, logger, map[string]any{
			"notifications": cfg.Silent.Notifications(),
			"count":         cfg.Silent.Count(),
		})
	})

	r.Get("/chat/messages", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, logger, cfg.Chat.Messages())
	})

	r.Get("/chat/unread", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, logger, cfg.Chat.UnreadCounts())
	})

	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	return r
}

func writeJSON(w http.ResponseWriter, logger *logging.Logger, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

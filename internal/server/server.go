// internal/server/server.go

// Package server exposes the dispatch core over JSON HTTP: the write model
// (dispatch, order placement and advancement) and the read model (mailbox
// listing, unread counts, read-state updates).
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/common/observability"
	"marketplace-notify/internal/dispatch"
	"marketplace-notify/internal/mailbox"
	"marketplace-notify/internal/sequencer"
)

// Registrar is the optional write side of the recipient directory. When the
// wired directory supports it, order placement can carry its own role
// mappings; external directories leave it nil.
type Registrar interface {
	Register(orderID, customerID, sellerID, courierID string)
}

type Server struct {
	engine    *dispatch.Engine
	mailbox   *mailbox.Aggregator
	sequencer *sequencer.Sequencer
	registrar Registrar
	obs       *observability.Observability
	logger    logger.Logger

	httpServer *http.Server
}

func New(
	engine *dispatch.Engine,
	mb *mailbox.Aggregator,
	seq *sequencer.Sequencer,
	registrar Registrar,
	obs *observability.Observability,
	log logger.Logger,
	port int,
) *Server {
	s := &Server{
		engine:    engine,
		mailbox:   mb,
		sequencer: seq,
		registrar: registrar,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "server"}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/v1/notifications", s.instrument("dispatch_single", s.handleDispatchSingle))
	mux.HandleFunc("POST /api/v1/notifications/bulk", s.instrument("dispatch_bulk", s.handleDispatchBulk))
	mux.HandleFunc("POST /api/v1/notifications/{id}/read", s.instrument("mark_read", s.handleMarkRead))

	mux.HandleFunc("GET /api/v1/recipients/{id}/notifications", s.instrument("list_notifications", s.handleList))
	mux.HandleFunc("GET /api/v1/recipients/{id}/unread-count", s.instrument("unread_count", s.handleUnreadCount))
	mux.HandleFunc("POST /api/v1/recipients/{id}/read-all", s.instrument("mark_all_read", s.handleMarkAllRead))

	mux.HandleFunc("POST /api/v1/orders", s.instrument("place_order", s.handlePlaceOrder))
	mux.HandleFunc("POST /api/v1/orders/{id}/advance", s.instrument("advance_order", s.handleAdvanceOrder))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"addr": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// instrument wraps a handler with request counting and latency recording.
func (s *Server) instrument(route string, next func(http.ResponseWriter, *http.Request) int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		status := next(w, r)
		if s.obs != nil {
			s.obs.RecordRequest(r.Context(), route, fmt.Sprintf("%d", status))
			s.obs.RecordRequestDuration(r.Context(), route, time.Since(start))
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

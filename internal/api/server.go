// Package api exposes the transaction service and aggregator over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Server wraps the HTTP listener and its routes.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server for the given handlers.
func NewServer(addr string, h *Handler, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/transactions", h.CreateTransaction)
	mux.HandleFunc("POST /api/transactions/quick", h.CreateQuickTransaction)
	mux.HandleFunc("GET /api/transactions", h.ListTransactions)
	mux.HandleFunc("GET /api/transactions/recent", h.ListRecentTransactions)
	mux.HandleFunc("GET /api/transactions/search", h.SearchTransactions)
	mux.HandleFunc("GET /api/transactions/date-range", h.ListTransactionsByDateRange)
	mux.HandleFunc("GET /api/transactions/statistics", h.GetStatistics)
	mux.HandleFunc("GET /api/transactions/category/{category}", h.ListTransactionsByCategory)
	mux.HandleFunc("GET /api/transactions/{id}", h.GetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", h.UpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", h.DeleteTransaction)
	mux.HandleFunc("GET /healthz", h.Health)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           requestLogger(logger, mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// requestLogger logs each request with method, path, and duration.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

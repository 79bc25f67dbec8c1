// Package api exposes the backtesting engine over HTTP. The surface is
// small: a health pair, the backtest operation, and a ticker validation
// probe for the frontend's symbol field.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rxtech-lab/strategy-backtest/internal/logger"
)

// Server owns the HTTP listener and routing for the backtest API.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer builds the router and wires the handlers. The addr is a
// host:port listen address.
func NewServer(addr string, handlers *Handlers, log *logger.Logger) *Server {
	router := mux.NewRouter()

	router.HandleFunc("/", handlers.Root).Methods(http.MethodGet)
	router.HandleFunc("/api/health", handlers.Health).Methods(http.MethodGet)
	// OPTIONS must match the route so the CORS middleware sees preflights.
	router.HandleFunc("/api/backtest", handlers.RunBacktest).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/validate-ticker/{ticker}", handlers.ValidateTicker).Methods(http.MethodGet)

	router.Use(corsMiddleware)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start blocks serving requests until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.log.Info("api server listening", zap.String("addr", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Handler exposes the configured router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware allows any origin. The API is fronted by a browser app
// served from a different origin during development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// Package api exposes the ledger over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/roi-ledger/internal/config"
	"github.com/yourusername/roi-ledger/internal/health"
	"github.com/yourusername/roi-ledger/internal/logger"
	"github.com/yourusername/roi-ledger/internal/metrics"
	"github.com/yourusername/roi-ledger/internal/service"
)

// Deps are the collaborators behind the routes. Websocket and Health are
// optional.
type Deps struct {
	Ingestion *service.ReportIngestionService
	Bets      *service.BetService
	Dashboard *service.DashboardService
	Websocket http.Handler
	Health    *health.Checker
	Metrics   config.MetricsConfig
	Logger    *logrus.Logger
}

// Server is the ledger HTTP API
type Server struct {
	cfg        config.ServerConfig
	deps       Deps
	router     chi.Router
	httpServer *http.Server
	audit      *logger.AuditLogger
	logger     *logrus.Entry
}

// NewServer builds the router for cfg and deps
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		audit:  logger.NewAuditLogger(deps.Logger),
		logger: deps.Logger.WithField("component", "api"),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.deps.Logger))
	r.Use(chimiddleware.Recoverer)

	if s.deps.Health != nil {
		r.Get("/health", s.deps.Health.Health)
		r.Get("/live", s.deps.Health.Live)
		r.Get("/ready", s.deps.Health.Ready)
	}
	if s.deps.Metrics.Enabled && s.deps.Metrics.Path != "" {
		r.Handle(s.deps.Metrics.Path, metrics.Handler())
	}
	if s.deps.Websocket != nil {
		r.Handle("/ws", s.deps.Websocket)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins(s.cfg.AllowedOrigins),
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", adminTokenHeader},
			MaxAge:         300,
		}))

		r.Get("/dashboard", s.getDashboard)
		r.Get("/reports", s.getReports)
		r.Get("/bets", s.getBets)

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminOnly(s.cfg.AdminToken, s.audit))
			r.Post("/bets", s.postManualBets)
			r.Post("/report", s.postReport)
		})
	})

	return r
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("port", s.cfg.Port).Info("API server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("API server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storesignal-io/storesignal/internal/config"
	"github.com/storesignal-io/storesignal/internal/database"
	notifyhandlers "github.com/storesignal-io/storesignal/internal/notify/handlers"
	"github.com/storesignal-io/storesignal/internal/server/handlers"
	"github.com/storesignal-io/storesignal/internal/server/middleware"
	"github.com/storesignal-io/storesignal/internal/services"
	"github.com/storesignal-io/storesignal/internal/version"
)

type Server struct {
	pool     *pgxpool.Pool
	queries  *database.Queries
	config   *config.ServerEnvironment
	logger   *slog.Logger
	router   *chi.Mux
	services *services.Services
}

func NewServer(
	pool *pgxpool.Pool,
	queries *database.Queries,
	cfg *config.ServerEnvironment,
	logger *slog.Logger,
	svcs *services.Services,
) (*Server, error) {
	server := &Server{
		pool:     pool,
		queries:  queries,
		config:   cfg,
		logger:   logger,
		router:   chi.NewRouter(),
		services: svcs,
	}

	server.setupMiddleware()
	server.registerRoutes()

	return server, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.RequestLogging(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(s.config.WriteTimeout))
	s.router.Use(middleware.SecurityHeaders(s.config.Environment))
	s.router.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))
	s.router.Use(middleware.RequestSizeLimit(s.config.MaxRequestBodySize))
}

func (s *Server) registerRoutes() {
	receiveHandler := notifyhandlers.NewReceiveNotificationHandler(s.queries, s.services.Verifier)

	s.router.Route("/v2", func(r chi.Router) {
		r.Post("/notifications", receiveHandler.HandleReceiveNotification)
	})

	// admin endpoints are for development and testing visibility only
	s.router.Route("/admin", func(r chi.Router) {
		r.Get("/notifications", handlers.HandleListNotifications(s.queries))
		r.Get("/notifications/{notificationUUID}", handlers.HandleGetNotificationByUUID(s.queries))
	})

	s.router.Get("/health/live", handlers.HandleHealth)
	s.router.Get("/health/ready", handlers.HandleReadiness(s.queries))
	s.router.Get("/version", handlers.HandleVersion(version.Get().Version, version.Get().BuildDate))
}

func (s *Server) Start(ctx context.Context) error {
	serverAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("service listening",
			slog.String("environment", s.config.Environment),
			slog.String("appstore_environment", s.config.AppStoreEnvironment),
			slog.String("bundle_id", s.config.AppBundleID),
			slog.String("address", serverAddr))

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
	defer shutdownCancel()

	s.logger.Info("shutting down HTTP server")

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Warn("HTTP server shutdown error",
			slog.String("error", err.Error()))
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}

func (s *Server) DatabaseShutdown() {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Info("database connection closed")
	}
}

// Router exposes the configured router (used by the integration tests).
func (s *Server) Router() http.Handler {
	return s.router
}

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/storesignal-io/storesignal/internal/config"
	"github.com/storesignal-io/storesignal/internal/database"
	"github.com/storesignal-io/storesignal/internal/logger"
	"github.com/storesignal-io/storesignal/internal/server"
	"github.com/storesignal-io/storesignal/internal/services"
	"github.com/storesignal-io/storesignal/internal/version"
)

//	@title			storesignal-receiver
//	@description	storesignal-receiver receives App Store Server Notifications (V2), verifies the signed payloads against pinned App Store root certificates and stores the verified notifications in Postgres.
//	@description
//	@description	## Common Error Responses
//	@description	All endpoints may return:
//	@description	- `413` Request body exceeds size limit
//	@description	- `429` Rate limit exceeded
//	@description	- `500` Internal server error
//	@description
//	@description	Individual endpoints document their specific business logic errors.
//	@description
//	@description	## Request Limits
//	@description	All endpoints are protected by:
//	@description	- **Rate limiting**: Configurable requests per second (see env vars) - default 100 rps (set to 0 to disable)
//	@description	- **Request size limits**: Configurable (see env vars) - default 1MB
//	@description
//	@description	Check the X-Max-Request-Size response header for the configured limit.
//	@description
//	@description	## Authentication & Authorization
//	@description
//	@description	The notification endpoint does not require credentials: the App Store authenticates itself through the JWS signature on every payload, which must chain to the pinned Apple root certificates. Payloads that fail verification are rejected.
//	@description
//	@description	The admin endpoints are unprotected and for use in development and testing only.
//	@description
//	@license.name	MIT

//	@servers.url			https://notifications.example.com
//	@servers.description	Production server
//	@servers.url			http://localhost:8080
//	@servers.description	Development server

//	@accept		json
//	@produce	json

//	@tag.name			Notifications
//	@tag.description	App Store Server Notification endpoints

//	@tag.name			Common
//	@tag.description	Server API endpoints (health, readiness, version, etc.)

//	@tag.name			Admin
//	@tag.description	Inspect stored notifications. These endpoints are unprotected and for use in development and testing only.

func main() {
	cmd := &cobra.Command{
		Use:   "storesignal-receiver",
		Short: "App Store server notification receiver",
		Long:  `storesignal-receiver verifies and stores App Store Server Notifications (V2)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	v := version.Get()
	cmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewServerConfig()
	if err != nil {
		log.Printf("failed to load configuration: %v", err.Error())
		os.Exit(1)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	appLogger.Info("Configuration loaded",
		slog.String("ENVIRONMENT", cfg.Environment),
		slog.String("HOST", cfg.Host),
		slog.Int("PORT", cfg.Port),
		slog.String("LOG_LEVEL", cfg.LogLevel),
		slog.String("APPSTORE_ENVIRONMENT", cfg.AppStoreEnvironment),
		slog.String("APP_BUNDLE_ID", cfg.AppBundleID),
		slog.Int64("APP_APPLE_ID", cfg.AppAppleID),
		slog.String("ROOT_CA_DIR", cfg.RootCADir),
	)

	dbCtx, dbCancel := context.WithTimeout(context.Background(), cfg.DatabasePingTimeout)
	defer dbCancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		appLogger.Error("Failed to parse database URL", slog.String("error", err.Error()))
		os.Exit(1)
	}

	poolConfig.MaxConns = cfg.DBMaxConnections
	poolConfig.MinConns = cfg.DBMinConnections
	poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.DBConnectTimeout

	pool, err := pgxpool.NewWithConfig(dbCtx, poolConfig)
	if err != nil {
		appLogger.Error("Unable to create connection pool", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err = pool.Ping(dbCtx); err != nil {
		appLogger.Error("Error pinging database via pool", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("connected to PostgreSQL")

	// get the sqlc generated database queries
	queries := database.New(pool)

	// build the shared verifier from the pinned roots and configured identity
	svcs, err := services.NewServices(cfg)
	if err != nil {
		appLogger.Error("Failed to initialize services", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("Starting server", slog.String("version", version.Get().Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// configure the server
	srv, err := server.NewServer(
		pool,
		queries,
		cfg,
		appLogger,
		svcs,
	)
	if err != nil {
		appLogger.Error("Failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer srv.DatabaseShutdown()

	// start the server
	if err := srv.Start(ctx); err != nil {
		appLogger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("server shutdown complete")
	return nil
}

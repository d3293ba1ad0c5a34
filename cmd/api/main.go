package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/waitingboard/api/internal/config"
	authHandler "github.com/waitingboard/api/internal/handler/auth"
	eventHandler "github.com/waitingboard/api/internal/handler/event"
	"github.com/waitingboard/api/internal/handler/health"
	locationHandler "github.com/waitingboard/api/internal/handler/location"
	promHandler "github.com/waitingboard/api/internal/handler/prometheus"
	providerHandler "github.com/waitingboard/api/internal/handler/provider"
	userHandler "github.com/waitingboard/api/internal/handler/user"
	"github.com/waitingboard/api/internal/middleware"
	"github.com/waitingboard/api/internal/repository/postgres"
	"github.com/waitingboard/api/internal/router"
	authService "github.com/waitingboard/api/internal/service/auth"
	eventService "github.com/waitingboard/api/internal/service/event"
	locationService "github.com/waitingboard/api/internal/service/location"
	providerService "github.com/waitingboard/api/internal/service/provider"
	userService "github.com/waitingboard/api/internal/service/user"
	"github.com/waitingboard/api/pkg/auth"
	"github.com/waitingboard/api/pkg/logger"
	"github.com/waitingboard/api/pkg/messaging"
	"github.com/waitingboard/api/pkg/messaging/redis"
	"github.com/waitingboard/api/pkg/metrics"
	"github.com/waitingboard/api/pkg/security"
)

const metricsNamespace = "waitingboard"

func main() {
	rootCmd := &cobra.Command{
		Use:          "waitingboard-api",
		Short:        "Clinic waiting board API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			count, err := postgres.NewMigrator(db).Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			statuses, err := postgres.NewMigrator(db).Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status, appliedAt := "pending", ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Setup(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})
	return cfg, nil
}

func openDB() (*sqlx.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return postgres.NewDB(cfg.Database)
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		count, err := postgres.NewMigrator(db).Up(ctx)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info().Int("applied", count).Msg("database migrations complete")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(metricsNamespace, registry)

	// Wait-time events
	broker := messaging.NewNoopBroker()
	if cfg.Redis.URL != "" {
		broker, err = redis.NewRedisBroker(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, log.Logger)
		if err != nil {
			return err
		}
	} else {
		log.Warn().Msg("redis.url not set, wait-time events are not published")
	}
	defer broker.Close()
	events := eventService.NewEventService(broker, cfg.Redis.Channel, m, log.Logger)

	// Repositories
	base := postgres.NewBaseRepository(db, m, cfg.Database.QueryTimeout)
	locationRepo := postgres.NewLocationRepository(base)
	providerRepo := postgres.NewProviderRepository(base)
	userRepo := postgres.NewUserRepository(base)

	// Services
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	var jwtSvc auth.JWTService
	if cfg.JWT.Secret != "" {
		jwtSvc = auth.NewJWTService(cfg.JWT.Secret, cfg.TokenExpiry())
	}

	locationSvc := locationService.NewService(locationRepo)
	providerSvc := providerService.NewService(providerRepo, locationSvc, events)
	userSvc := userService.NewService(userRepo, hasher)
	authSvc := authService.NewService(userRepo, hasher, jwtSvc)

	// Router
	var authMiddleware *middleware.AuthMiddleware
	if jwtSvc != nil {
		authMiddleware = middleware.NewAuthMiddleware(jwtSvc)
	}

	eventH := eventHandler.NewHandler(events)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins

	r := router.NewRouter(
		router.RouterConfig{
			Mode:             cfg.Server.Mode,
			RequestTimeout:   cfg.Server.RequestTimeout,
			MaxBodySize:      cfg.Server.MaxBodyBytes,
			CORSConfig:       corsConfig,
			Security:         middleware.DefaultSecurityConfig(),
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			RateTTL:          cfg.RateLimit.TTL,
			AuthRequired:     cfg.Auth.Required,
		},
		authMiddleware,
		promHandler.New(registry, m),
		health.NewHandler(db),
		authHandler.NewHandler(authSvc),
		eventH,
		locationHandler.NewHandler(locationSvc),
		providerHandler.NewHandler(providerSvc),
		userHandler.NewHandler(userSvc),
	)
	r.Setup()

	srv := newHTTPServer(cfg.Server, r.Engine(), eventH.Shutdown)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}

// newHTTPServer builds the server. Request contexts are not tied to the
// signal context, so Shutdown drains in-flight requests; onShutdown hooks
// run as Shutdown starts and close long-lived streams.
func newHTTPServer(cfg config.ServerConfig, handler http.Handler, onShutdown ...func()) *http.Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	for _, f := range onShutdown {
		srv.RegisterOnShutdown(f)
	}
	return srv
}

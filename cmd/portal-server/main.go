package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medsta/portal/internal/config"
	"github.com/medsta/portal/internal/domain/cart"
	"github.com/medsta/portal/internal/domain/dashboard"
	"github.com/medsta/portal/internal/domain/labtest"
	"github.com/medsta/portal/internal/domain/profile"
	"github.com/medsta/portal/internal/domain/report"
	"github.com/medsta/portal/internal/platform/authx"
	"github.com/medsta/portal/internal/platform/backend"
	"github.com/medsta/portal/internal/platform/db"
	"github.com/medsta/portal/internal/platform/diagnostics"
	"github.com/medsta/portal/internal/platform/middleware"
	"github.com/medsta/portal/internal/platform/provision"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "portal-server",
		Short: "Patient portal API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(diagCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the portal API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
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
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("WARNING: migrate down is destructive and not supported by the built-in runner.")
			return nil
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed starter data for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, _ := cmd.Flags().GetString("uid")
			if uid == "" {
				return fmt.Errorf("--uid is required")
			}

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			clients, err := backend.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer clients.Close()
			if clients.Pool == nil {
				return fmt.Errorf("seeding requires a database connection")
			}

			prov := provision.New(
				profile.NewRepoPG(clients.Pool),
				labtest.NewRepositoryPG(clients.Pool),
				report.NewRepositoryPG(clients.Pool),
				cart.NewRepositoryPG(clients.Pool),
				logger,
			)
			ran, err := prov.EnsureDefaults(ctx, uid)
			if err != nil {
				return err
			}
			if ran {
				fmt.Printf("Seeded starter data for %s.\n", uid)
			} else {
				fmt.Printf("User %s already provisioned; nothing to do.\n", uid)
			}
			return nil
		},
	}
	cmd.Flags().String("uid", "", "User id to seed")
	return cmd
}

func diagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diag",
		Short: "Run the backend connectivity self-check",
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, _ := cmd.Flags().GetString("uid")
			email, _ := cmd.Flags().GetString("email")

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			clients, err := backend.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer clients.Close()

			var user *authx.User
			if uid != "" {
				user = &authx.User{UID: uid, Email: email}
			}
			provider := &authx.StaticProvider{User: user}

			var profiles profile.Repository
			if clients.Pool != nil {
				profiles = profile.NewRepoPG(clients.Pool)
			} else {
				profiles = unavailableProfiles{}
			}

			// Bring the session store up the same way the server does so
			// the probe sees the identity the store resolved.
			store := authx.NewSessionStore(provider, profileRoleReader{profiles}, clients.RoleCache, logger)
			store.Start()
			defer store.Stop()

			if user != nil {
				if _, err := authx.EnsureReady(ctx, provider, user.UID, authx.DefaultReadyTimeout); err != nil {
					logger.Warn().Err(err).Msg("auth not ready")
				}
			}

			current, _ := store.Current()
			res := diagnostics.NewProbe(profiles, logger).Run(ctx, current)

			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			if !res.Healthy() {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().String("uid", "", "Identity to probe as")
	cmd.Flags().String("email", "", "Email for the probe identity")
	return cmd
}

// profileRoleReader adapts the profile repository to the session store's
// role lookup.
type profileRoleReader struct {
	repo profile.Repository
}

func (r profileRoleReader) Role(ctx context.Context, uid string) (string, error) {
	return r.repo.Role(ctx, uid)
}

// unavailableProfiles stands in for the profile repository when no
// database is configured; every call reports the backend unreachable so
// the diagnostics output names the real problem instead of panicking.
type unavailableProfiles struct{}

var errDBUnavailable = errors.New("database unavailable: DATABASE_URL is not set")

func (unavailableProfiles) GetByUID(context.Context, string) (*profile.Profile, error) {
	return nil, errDBUnavailable
}

func (unavailableProfiles) Ensure(context.Context, string, *string) error {
	return errDBUnavailable
}

func (unavailableProfiles) Role(context.Context, string) (string, error) {
	return "", errDBUnavailable
}

func (unavailableProfiles) MergePing(context.Context, string, *string, time.Time) error {
	return errDBUnavailable
}

func (unavailableProfiles) SetRole(context.Context, string, string) error {
	return errDBUnavailable
}

func (unavailableProfiles) MarkProvisioned(context.Context, string, time.Time) error {
	return errDBUnavailable
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	clients, err := backend.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect backend clients")
	}
	defer clients.Close()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(authx.DevAuthMiddleware())
	} else {
		e.Use(authx.JWTMiddleware(authx.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}))
	}

	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))

	apiV1 := e.Group("/api/v1")

	if clients.Pool != nil {
		profileRepo := profile.NewRepoPG(clients.Pool)
		labTestRepo := labtest.NewRepositoryPG(clients.Pool)
		reportRepo := report.NewRepositoryPG(clients.Pool)
		cartRepo := cart.NewRepositoryPG(clients.Pool)

		labTestSvc := labtest.NewService(labTestRepo)
		reportSvc := report.NewService(reportRepo, clients.Files)
		cartSvc := cart.NewService(cartRepo)
		profileSvc := profile.NewService(profileRepo)

		sessions := dashboard.NewSessionManager(labTestSvc, reportSvc, clients.Watcher, logger)
		dashboardSvc := dashboard.NewService(sessions, cartSvc)

		profile.NewHandler(profileSvc).RegisterRoutes(apiV1)
		labtest.NewHandler(labTestSvc).RegisterRoutes(apiV1)
		report.NewHandler(reportSvc).RegisterRoutes(apiV1)
		cart.NewHandler(cartSvc).RegisterRoutes(apiV1)
		dashboard.NewHandler(dashboardSvc).RegisterRoutes(apiV1)
		diagnostics.NewHandler(diagnostics.NewProbe(profileRepo, logger)).RegisterRoutes(apiV1)

		if cfg.DemoSeed {
			prov := provision.New(profileRepo, labTestRepo, reportRepo, cartRepo, logger)
			apiV1.Use(prov.Middleware())
		}

		// Keep the watcher fed with connectivity state so armed
		// list-fetch retries replay the moment the database is back.
		watchCtx, stopWatch := context.WithCancel(ctx)
		defer stopWatch()
		go clients.Watcher.Run(watchCtx, func(ctx context.Context) error {
			return clients.Pool.Ping(ctx)
		}, 15*time.Second)

		e.GET("/health/db", db.HealthHandler(clients.Pool))
	} else {
		logger.Warn().Msg("no database configured; serving diagnostics only")
		diagnostics.NewHandler(diagnostics.NewProbe(unavailableProfiles{}, logger)).RegisterRoutes(apiV1)
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

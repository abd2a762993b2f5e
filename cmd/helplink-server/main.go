package main

import (
	"context"
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

	"github.com/helplink/helplink/internal/config"
	"github.com/helplink/helplink/internal/domain/doctor"
	"github.com/helplink/helplink/internal/domain/donor"
	"github.com/helplink/helplink/internal/domain/matching"
	"github.com/helplink/helplink/internal/domain/request"
	"github.com/helplink/helplink/internal/platform/auth"
	"github.com/helplink/helplink/internal/platform/db"
	"github.com/helplink/helplink/internal/platform/middleware"
	"github.com/helplink/helplink/internal/platform/notification"
)

// templateNotifier bridges the assignment engine to the notification manager.
// Delivery failures are handled inside the manager; an assignment never fails
// because an email bounced.
type templateNotifier struct {
	mgr *notification.Manager
}

func (n *templateNotifier) RequestAssigned(ctx context.Context, d *doctor.Doctor, req *request.Request) {
	data := map[string]string{
		"doctor_name": d.Name(),
		"kind":        string(req.Kind),
		"priority":    string(req.Priority),
		"region":      req.Region,
		"request_id":  req.ID.String(),
	}
	n.mgr.SendFromTemplate(ctx, "request-assigned", data, d.Email)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "helplink-server",
		Short: "HelpLink care network API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(networkCmd())

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
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
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
			fmt.Printf("Running migrations on schema: %s\n", schema)

			count, err := migrator.Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", "network_default", "Target schema for migrations")
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
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
			statuses, err := migrator.Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("Migration status for schema: %s\n", schema)
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
	statusCmd.Flags().String("schema", "network_default", "Target schema for migrations")
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("WARNING: migrate down is destructive and not supported by the built-in runner.")
			fmt.Println("Restore the schema from a backup instead.")
			return nil
		},
	})

	return cmd
}

func networkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Manage care networks",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new care network schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			dir, _ := cmd.Flags().GetString("dir")
			if name == "" {
				return fmt.Errorf("--name is required")
			}

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

			fmt.Printf("Creating network schema: network_%s\n", name)
			if err := db.CreateNetworkSchema(ctx, pool, name, dir); err != nil {
				return err
			}
			fmt.Println("Network created successfully.")
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Network identifier (alphanumeric)")
	createCmd.Flags().String("dir", "./migrations", "Path to migrations directory")

	cmd.AddCommand(createCmd)
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Region adjacency for assignment fallback
	adjacency := matching.DefaultAdjacency()
	if cfg.RegionAdjacencyFile != "" {
		adjacency, err = matching.LoadAdjacency(cfg.RegionAdjacencyFile)
		if err != nil {
			logger.Fatal().Err(err).Str("file", cfg.RegionAdjacencyFile).Msg("failed to load region adjacency")
		}
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Network-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}))
	}

	// Network middleware
	e.Use(db.NetworkMiddleware(pool, cfg.DefaultNetwork))

	// Audit middleware
	e.Use(middleware.Audit(logger))

	apiV1 := e.Group("/api/v1")

	// Rate limiting
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Notifications
	templates := notification.NewTemplateEngine()
	notifyMgr := notification.NewManager(
		&notification.LogEmailSender{Logger: logger},
		&notification.LogSMSSender{Logger: logger},
		templates,
		logger,
	)
	notification.NewHandler(notifyMgr).RegisterRoutes(apiV1)

	// Domain services
	doctorRepo := doctor.NewRepoPG(pool)
	doctorSvc := doctor.NewService(doctorRepo)
	doctor.NewHandler(doctorSvc).RegisterRoutes(apiV1)

	requestRepo := request.NewRepoPG(pool)
	requestSvc := request.NewService(requestRepo)
	request.NewHandler(requestSvc).RegisterRoutes(apiV1)

	donorRepo := donor.NewRepoPG(pool)
	donorSvc := donor.NewService(donorRepo, cfg.DonationCooldownDays)
	donor.NewHandler(donorSvc).RegisterRoutes(apiV1)

	// Matching engine
	assigner := matching.NewAssigner(
		doctorRepo,
		requestRepo,
		&templateNotifier{mgr: notifyMgr},
		adjacency,
		matching.DefaultWeights(),
	)
	matcher := matching.NewMatcher(donorRepo, matching.DefaultWeights(), cfg.DonationCooldownDays, cfg.MatchListCap)
	matching.NewHandler(assigner, matcher).RegisterRoutes(apiV1)

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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ayeola05/IntegratedCareServer/internal/config"
	"github.com/ayeola05/IntegratedCareServer/internal/domain/encounter"
	"github.com/ayeola05/IntegratedCareServer/internal/domain/patient"
	"github.com/ayeola05/IntegratedCareServer/internal/domain/practitioner"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/auth"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/db"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/httperr"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/mail"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/middleware"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/token"
)

func main() {
	root := &cobra.Command{
		Use:   "care-server",
		Short: "Integrated Care records API server",
	}

	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pool, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := db.NewMigrator(pool).Up(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info().Int("applied", applied).Msg("migrations complete")
			return nil
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pool, _, err := bootstrap()
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool).Status(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%03d %-20s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	})

	return migrate
}

func bootstrap() (*config.Config, *pgxpool.Pool, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, zerolog.Logger{}, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, zerolog.Logger{}, err
	}

	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, logger, fmt.Errorf("connect database: %w", err)
	}
	return cfg, pool, logger, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func runServer() error {
	cfg, pool, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer pool.Close()

	tokens := token.NewService(cfg.JWTSecret, cfg.TokenTTL)

	patientRepo := patient.NewRepo(pool)
	patientSvc := patient.NewService(patientRepo, tokens)

	practRepo := practitioner.NewRepo(pool)
	practSvc := practitioner.NewService(practRepo, patientSvc, tokens)

	encRepo := encounter.NewRepo(pool)
	encSvc := encounter.NewService(encRepo, patientSvc)

	sender := &mail.SMTPSender{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.MailerEmail,
		Password: cfg.MailerPassword,
	}
	confirmer := mail.NewConfirmer(sender, tokens, logger)

	patientAuth := auth.Authenticate(tokens, patientSvc)
	practAuth := auth.Authenticate(tokens, practSvc)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httperr.Handler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	api := e.Group("/api")

	patientGroup := api.Group("/patient")
	patientHandler := patient.NewHandler(patientSvc, confirmer, cfg.ConfirmationURL+"/patient/confirmation")
	patientHandler.RegisterRoutes(patientGroup, patientAuth)

	practGroup := api.Group("/practitioner")
	practHandler := practitioner.NewHandler(practSvc, confirmer, cfg.ConfirmationURL+"/practitioner/confirmation")
	practHandler.RegisterRoutes(practGroup, practAuth)

	encHandler := encounter.NewHandler(encSvc)
	encHandler.RegisterPatientRoutes(patientGroup.Group("", patientAuth))

	// Practitioner clinical routes require both a valid token and the
	// practitioner role.
	practClinical := practGroup.Group("", practAuth, auth.RequirePractitioner())
	encHandler.RegisterPractitionerRoutes(practClinical)
	patientHandler.RegisterPractitionerRoutes(practClinical)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt, then drain in-flight requests.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

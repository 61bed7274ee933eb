package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gatherhub/server/internal/api"
	"github.com/gatherhub/server/internal/auth"
	"github.com/gatherhub/server/internal/config"
	"github.com/gatherhub/server/internal/domain/events"
	"github.com/gatherhub/server/internal/domain/users"
	"github.com/gatherhub/server/internal/email"
	"github.com/gatherhub/server/internal/integrations/gcal"
	"github.com/gatherhub/server/internal/integrations/slack"
	"github.com/gatherhub/server/internal/storage/mongo"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GatherHub HTTP server",
	Long: `Start the GatherHub HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (or --env-file if provided)
- Connect to the document database and verify it with a ping
- Start the HTTP server with the declarative route table
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Msg("starting gatherhub server")

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.Timeout)
	db, err := mongo.Connect(connectCtx, cfg.Database)
	connectCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := db.Client().Disconnect(disconnectCtx); err != nil {
			logger.Error().Err(err).Msg("database disconnect error")
		}
	}()

	repos := mongo.NewRepository(db)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, "gatherhub")

	usersService := users.NewService(repos.Users(), tokens, repos.MagicLinks(), cfg.Auth.MagicExpiry, logger)
	eventsService := events.NewService(repos.Events(), logger)

	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := usersService.BootstrapDirector(bootstrapCtx, cfg.Bootstrap.DirectorEmail, cfg.Bootstrap.DirectorPassword); err != nil {
		logger.Error().Err(err).Msg("director bootstrap failed")
	}
	bootstrapCancel()

	emailService := email.NewService(cfg.Email, email.NewSMTPSender(cfg.Email), logger)

	handler, err := api.NewRouter(api.Deps{
		Config:   cfg,
		Logger:   logger,
		Users:    usersService,
		Events:   eventsService,
		Email:    emailService,
		Calendar: gcal.New(cfg.Calendar),
		Slack:    slack.New(cfg.Slack),
	})
	if err != nil {
		return fmt.Errorf("router setup failed: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, logger)
}

func loadConfig() (config.Config, error) {
	if err := loadEnvFile(); err != nil {
		return config.Config{}, fmt.Errorf("loading env file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

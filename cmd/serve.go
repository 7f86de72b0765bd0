package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sendgate/sendgate/internal/authflow"
	"github.com/sendgate/sendgate/internal/config"
	"github.com/sendgate/sendgate/internal/credstore"
	"github.com/sendgate/sendgate/internal/googleauth"
	"github.com/sendgate/sendgate/internal/logging"
	"github.com/sendgate/sendgate/internal/mailer"
	"github.com/sendgate/sendgate/internal/metrics"
	"github.com/sendgate/sendgate/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr        string
		logLevel    string
		logFormat   string
		credStore   string
		credDBPath  string
		metricsOn   bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server that handles the Google consent flow and sends
email through the Gmail API on behalf of authorized users.

Required environment variables:
  CLIENT_ID       Google OAuth client ID
  CLIENT_SECRET   Google OAuth client secret

Optional environment variables:
  REDIRECT_URL         OAuth callback URL registered with Google
  CLIENT_APP_ORIGIN    Origin of the single-page client
  LISTEN_ADDR          HTTP listen address
  CRED_STORE           Credential store backend: memory or sqlite
  CRED_DB_PATH         SQLite database path (required for sqlite)
  MAX_ATTACHMENT_BYTES Attachment size limit in bytes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()

			// Flags override the environment when set explicitly.
			if cmd.Flags().Changed("addr") {
				cfg.ListenAddr = addr
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = logFormat
			}
			if cmd.Flags().Changed("cred-store") {
				cfg.CredStore = credStore
			}
			if cmd.Flags().Changed("cred-db") {
				cfg.CredDBPath = credDBPath
			}
			if cmd.Flags().Changed("metrics-enabled") {
				cfg.MetricsEnabled = metricsOn
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}

			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultListenAddr, "HTTP listen address. Can also use LISTEN_ADDR env var.")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error. Can also use LOG_LEVEL env var.")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format: text or json. Can also use LOG_FORMAT env var.")
	cmd.Flags().StringVar(&credStore, "cred-store", config.StoreMemory, "Credential store backend: memory or sqlite. Can also use CRED_STORE env var.")
	cmd.Flags().StringVar(&credDBPath, "cred-db", "", "SQLite database path for the sqlite backend. Can also use CRED_DB_PATH env var.")
	cmd.Flags().BoolVar(&metricsOn, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", config.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(cfg config.Config) error {
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := openCredStore(shutdownCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	authCfg := googleauth.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
	}

	flows := authflow.NewFlowStore(authflow.DefaultFlowTTL, logger)
	defer flows.Close()

	coord := authflow.New(
		authCfg.OAuth2(),
		flows,
		googleauth.NewIDTokenVerifier(cfg.ClientID),
		store,
		logger,
	)

	dispatcher := mailer.NewDispatcher(store, authCfg, mailer.NewGmailSender, logger)

	srv := server.New(server.Options{
		ClientAppOrigin:    cfg.ClientAppOrigin,
		MaxAttachmentBytes: cfg.MaxAttachmentBytes,
	}, coord, dispatcher, logger)

	var metricsServer *metrics.Server
	if cfg.MetricsEnabled {
		metricsServer = metrics.NewServer(cfg.MetricsAddr)
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", logging.Err(err))
			}
		}()
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := srv.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("http server stopped with error: %w", err)
		}
		return nil
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down http server: %w", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error("error shutting down metrics server", logging.Err(err))
		}
	}

	logger.Info("server stopped")
	return nil
}

// openCredStore builds the configured credential store backend and returns
// a close function for its resources.
func openCredStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (credstore.Store, func(), error) {
	switch cfg.CredStore {
	case config.StoreSQLite:
		db, err := credstore.OpenSQLite(ctx, cfg.CredDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open credential store: %w", err)
		}
		logger.Info("using sqlite credential store", "path", cfg.CredDBPath)
		return db, func() { _ = db.Close() }, nil
	default:
		logger.Info("using in-memory credential store")
		return credstore.NewMemory(logger), func() {}, nil
	}
}

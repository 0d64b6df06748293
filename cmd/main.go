package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/enterprise/ga-view-proxy/internal/analytics"
	"github.com/enterprise/ga-view-proxy/internal/app"
	"github.com/enterprise/ga-view-proxy/internal/config"
	"github.com/enterprise/ga-view-proxy/internal/handler"
	"github.com/enterprise/ga-view-proxy/internal/report"
	"github.com/enterprise/ga-view-proxy/internal/secrets"
	"github.com/enterprise/ga-view-proxy/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	version    = "dev"
	buildTime  = "unknown"
	gitCommit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ga-view-proxy",
		Short: "Google Analytics view data proxy",
		Long: `Serves the gaViewOriginData and gaViewAdData endpoints, which query a
Google Analytics view and return simplified JSON rows behind a bearer token.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Version: %s\n", version)
			fmt.Printf("Build Time: %s\n", buildTime)
			fmt.Printf("Git Commit: %s\n", gitCommit)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (environment only when empty)")
	rootCmd.AddCommand(versionCmd, validateCmd, newReportCmd())

	return rootCmd
}

func newReportCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:       "report <origin|ad>",
		Short:     "Run a single report query and print the JSON response",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(report.KindOrigin), string(report.KindAd)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := report.ParseKind(args[0])
			if err != nil {
				return err
			}
			return runReport(cmd.Context(), kind, token)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token to send, also used as the expected token when none is stored")

	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize logger
	log := logger.New(cfg.Logging)

	log.WithFields(logrus.Fields{
		"version":    version,
		"build_time": buildTime,
		"git_commit": gitCommit,
	}).Info("Starting GA view proxy")

	app.Version = version

	// Create application context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	// Wait for shutdown signal
	<-sigChan
	log.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Error during shutdown")
	}

	log.Info("GA view proxy stopped")
	return nil
}

func validateConfig() error {
	if _, err := loadConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logrus.Info("Configuration is valid")
	return nil
}

// runReport drives one request through the same handler the endpoints use,
// so the printed body is exactly what a client would receive
func runReport(ctx context.Context, kind report.Kind, token string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging)

	provider, err := secrets.New(cfg.Secrets)
	if err != nil {
		return fmt.Errorf("failed to create secrets provider: %w", err)
	}
	if token != "" {
		provider = secrets.Chain{
			provider,
			secrets.StaticProvider{cfg.Secrets.BearerTokenName: token},
		}
	}

	handlers := app.NewHandlers(cfg, provider, analytics.NewGAClientFactory(cfg.Analytics.Timeout), nil, log)
	h, err := handlers.For(kind)
	if err != nil {
		return err
	}

	req := handler.Request{Method: http.MethodGet, Header: http.Header{}}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := h.Handle(ctx, req)
	fmt.Println(string(resp.Body))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("report request failed with status %d", resp.StatusCode)
	}
	return nil
}

// Krogerd is an MCP server exposing the Kroger public API as tools.
//
// The server speaks MCP over stdio: stdout carries the protocol and all
// logging goes to stderr. Credentials come from the KROGER_CLIENT_ID and
// KROGER_CLIENT_SECRET environment variables or a config file.
//
// Usage:
//
//	# Start with credentials from the environment
//	KROGER_CLIENT_ID=... KROGER_CLIENT_SECRET=... krogerd
//
//	# Start with an explicit config file
//	krogerd --config /etc/krogerd/config.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grocerlabs/krogerd/internal/auth"
	"github.com/grocerlabs/krogerd/internal/config"
	adminhttp "github.com/grocerlabs/krogerd/internal/http"
	"github.com/grocerlabs/krogerd/internal/kroger"
	"github.com/grocerlabs/krogerd/internal/logging"
	"github.com/grocerlabs/krogerd/internal/mcp"
	"github.com/grocerlabs/krogerd/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "krogerd",
	Short:        "MCP server for the Kroger public API",
	Long:         "krogerd serves Kroger product search, product details, and store location tools over the MCP stdio transport.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("krogerd\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.config/krogerd/config.yaml)")
	rootCmd.AddCommand(versionCmd)
}

// run wires the full server and blocks until shutdown:
//  1. Load and validate configuration
//  2. Initialize logger and telemetry
//  3. Build the token provider and API client
//  4. Start the optional admin endpoint
//  5. Serve MCP on stdio until SIGINT/SIGTERM
func run(ctx context.Context) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logging.Sync(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting krogerd",
		zap.String("version", version),
		zap.String("base_url", cfg.Kroger.BaseURL),
		zap.Bool("admin_enabled", cfg.Server.AdminEnabled))

	tel := telemetry.New(ctx, cfg.Telemetry, logger)
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	tokens := auth.NewProvider(cfg.Kroger, logger)
	client := kroger.NewClient(cfg.Kroger, tokens, logger)

	server, err := mcp.NewServer(&mcp.Config{
		Name:    cfg.Server.Name,
		Version: cfg.Server.Version,
		Logger:  logger,
	}, client)
	if err != nil {
		return fmt.Errorf("create MCP server: %w", err)
	}

	if cfg.Server.AdminEnabled {
		admin, err := adminhttp.NewServer(logger, &adminhttp.Config{
			Host:    cfg.Server.AdminHost,
			Port:    cfg.Server.AdminPort,
			Name:    cfg.Server.Name,
			Version: cfg.Server.Version,
		})
		if err != nil {
			return fmt.Errorf("create admin server: %w", err)
		}

		go func() {
			if err := admin.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("admin server failed", zap.Error(err))
			}
		}()
		defer func() {
			if err := admin.Shutdown(context.Background()); err != nil {
				logger.Warn("admin server shutdown failed", zap.Error(err))
			}
		}()
	}

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}

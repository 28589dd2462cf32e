package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ebogdum/lockd/auth"
	"github.com/ebogdum/lockd/config"
	"github.com/ebogdum/lockd/registry"
	"github.com/ebogdum/lockd/server"
)

var rootCmd = &cobra.Command{
	Use:   "lockd",
	Short: "lockd - network-accessible lock registry",
	Long: `lockd is a minimal network-accessible lock registry. Clients acquire a
named lock by presenting an opaque token, release it later, and an operator
can wipe all locks at once.`,
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the lockd server",
	Long:  "Start the lockd server with the configured registry backend and API endpoints",
	RunE:  runServer,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Validate the lockd configuration and display the loaded settings",
	RunE:  validateConfig,
}

var configFilePath string

func main() {
	serverCmd.Flags().StringVarP(&configFilePath, "config", "c", "", "Path to configuration file")

	configCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serverCmd, configCmd)

	// If no command specified, default to server
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "server")
	}

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// runServer starts the lockd server
func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigFromFile(configFilePath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := initializeLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to sync logger: %v\n", err)
		}
	}()

	logger.Info("Starting lockd server",
		zap.String("listen_addr", cfg.Server.ListenAddr),
		zap.String("registry_backend", cfg.Registry.Backend))

	// Initialize the lock registry. Created once here and handed to the
	// router; nothing reaches for it globally.
	reg, err := newRegistry(cfg.Registry, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize lock registry: %w", err)
	}
	defer func() {
		if err := reg.Close(); err != nil {
			logger.Error("Failed to close registry", zap.Error(err))
		}
	}()

	authenticator := auth.NewAPIKeyAuthenticator(cfg.Auth.PurgeAPIKeys)
	if authenticator.Enabled() {
		logger.Info("Purge endpoint authentication enabled")
	}

	router := server.NewRouter(reg, authenticator, &cfg.Server, logger)

	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", cfg.Server.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exited gracefully")
	return nil
}

// newRegistry constructs the configured registry backend
func newRegistry(cfg config.RegistryConfig, logger *zap.Logger) (registry.Registry, error) {
	switch cfg.Backend {
	case config.BackendSharded:
		return registry.NewShardedRegistry(cfg.Shards), nil
	case config.BackendRedis:
		return registry.NewRedisRegistry(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKeyPrefix, logger)
	default:
		return registry.NewMutexRegistry(), nil
	}
}

// validateConfig validates the lockd configuration and displays settings
func validateConfig(cmd *cobra.Command, args []string) error {
	fmt.Println("Validating configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("Listen Address: %s\n", cfg.Server.ListenAddr)
	fmt.Printf("Registry Backend: %s\n", cfg.Registry.Backend)
	if cfg.Registry.Backend == config.BackendSharded {
		fmt.Printf("Shards: %d\n", cfg.Registry.Shards)
	}
	if cfg.Registry.Backend == config.BackendRedis {
		fmt.Printf("Redis Address: %s\n", cfg.Registry.RedisAddr)
		fmt.Printf("Redis Key Prefix: %s\n", cfg.Registry.RedisKeyPrefix)
	}
	fmt.Printf("Purge Authentication: %v\n", len(cfg.Auth.PurgeAPIKeys) > 0)

	return nil
}

// initializeLogger creates a zap logger based on configuration
func initializeLogger(logCfg config.LogConfig) (*zap.Logger, error) {
	var cfg zap.Config

	if logCfg.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	switch logCfg.Level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return cfg.Build()
}

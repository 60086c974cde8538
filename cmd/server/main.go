package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/cx-tal-miterani/travel-desk/internal/accounts"
	"github.com/cx-tal-miterani/travel-desk/internal/config"
	"github.com/cx-tal-miterani/travel-desk/internal/database"
	"github.com/cx-tal-miterani/travel-desk/internal/gateway"
	"github.com/cx-tal-miterani/travel-desk/internal/handlers"
	"github.com/cx-tal-miterani/travel-desk/internal/logger"
	"github.com/cx-tal-miterani/travel-desk/internal/metrics"
	"github.com/cx-tal-miterani/travel-desk/internal/router"
	"github.com/cx-tal-miterani/travel-desk/internal/service"
	"github.com/cx-tal-miterani/travel-desk/internal/session"
	"github.com/cx-tal-miterani/travel-desk/internal/store"
)

func main() {
	var envFile, port, driver string

	flagSet := pflag.NewFlagSet("travel-desk", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flagSet.StringVar(&port, "port", "", "HTTP port (overrides API_PORT)")
	flagSet.StringVar(&driver, "driver", "", "record driver: postgres or bolt (overrides RECORD_DRIVER)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if port != "" {
		cfg.Port = port
	}
	if driver != "" {
		cfg.Driver = driver
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize backends
	records, auth, cleanup, err := openBackends(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open backends", "driver", cfg.Driver, "error", err)
	}
	defer cleanup()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(cfg.MetricsNamespace, registry)

	records = gateway.Instrument(records, m, log)

	// Initialize services
	adminService := service.NewAdminService(records, log)
	authService := service.NewAuthService(auth, log, m)

	// Initialize handlers
	h := handlers.NewHandler(adminService, authService, log)

	// Create router
	r := router.SetupRouter(h, router.Options{
		Resolver: session.NewResolver(auth, cfg.ResolveTimeout),
		Health:   records,
		Metrics:  m,
		Gatherer: registry,
		Log:      log,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("API Server starting", "port", cfg.Port, "driver", cfg.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server stopped")
}

// openBackends connects the record gateway and authenticator for the configured driver
func openBackends(ctx context.Context, cfg *config.Config, log logger.Logger) (gateway.Records, gateway.Authenticator, func(), error) {
	if cfg.Driver == config.DriverBolt {
		st, err := store.New(cfg.BoltPath, cfg.SessionTTL)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info("Opened bolt store", "path", cfg.BoltPath)
		return st, st, func() { st.Close() }, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create pool: %w", err)
	}
	repo := database.NewRepository(pool)
	if err := repo.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.AuthDatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("failed to connect accounts database: %w", err)
	}
	provider := accounts.NewProvider(gormDB, cfg.SessionTTL)

	if cfg.AutoMigrate {
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		if err := provider.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		log.Info("Schema up to date")
	}

	cleanup := func() {
		pool.Close()
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return repo, provider, cleanup, nil
}

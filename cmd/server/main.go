// Package main is the entry point for the mobilebill API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"mobilebill/db/migrations"
	"mobilebill/internal/config"
	"mobilebill/internal/domain/auth"
	"mobilebill/internal/domain/dealer"
	"mobilebill/internal/domain/inventory"
	"mobilebill/internal/domain/purchase"
	v1 "mobilebill/internal/infrastructure/http/v1"
	"mobilebill/internal/infrastructure/numerator"
	"mobilebill/internal/infrastructure/storage/postgres"
	"mobilebill/internal/infrastructure/storage/postgres/catalog_repo"
	"mobilebill/internal/infrastructure/storage/postgres/document_repo"
	"mobilebill/internal/infrastructure/storage/postgres/inventory_repo"
	"mobilebill/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting mobilebill server", "env", cfg.App.Env)

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.URL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := postgres.Migrate(ctx, pool, migrations.FS); err != nil {
		log.Fatalw("failed to apply migrations", "error", err)
	}

	txManager := postgres.NewTxManager(pool)

	// Counters run on the pool so an issued value survives a failed receive.
	allocator := numerator.New(pool)

	// --- Domain services ---
	dealerService := dealer.NewService(catalog_repo.NewDealerRepo(txManager), txManager)

	inventoryRepo := inventory_repo.New(txManager)
	upserter := inventory.NewUpserter(inventoryRepo, allocator)
	inventoryService := inventory.NewService(inventoryRepo, allocator, cfg.Inventory.LowStockThreshold)

	purchaseService := purchase.NewService(
		document_repo.NewPurchaseRepo(txManager),
		dealerService,
		upserter,
		txManager,
		purchase.Config{GuardReceive: cfg.Purchases.GuardReceive},
	)
	purchase.RegisterMetricHooks(purchaseService.Hooks())

	// --- Auth ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
	jwtConfig.Issuer = cfg.JWT.Issuer
	if cfg.JWT.ExpirationHours > 0 {
		jwtConfig.AccessTokenTTL = time.Duration(cfg.JWT.ExpirationHours) * time.Hour
	}
	jwtService := auth.NewJWTService(jwtConfig)

	authService, err := auth.NewService(jwtService, cfg.Auth.AdminPassword, cfg.Auth.StaffPassword)
	if err != nil {
		log.Fatalw("failed to initialize auth", "error", err)
	}
	if !cfg.Auth.Required {
		log.Warn("AUTH_REQUIRED is off, /api is open")
	}

	// --- Router ---
	router, err := v1.NewRouter(v1.RouterConfig{
		Logger:             log,
		DB:                 pool,
		Dealers:            dealerService,
		Purchases:          purchaseService,
		Inventory:          inventoryService,
		Auth:               authService,
		JWTValidator:       jwtService,
		AuthRequired:       cfg.Auth.Required,
		LoginRate:          cfg.Auth.LoginRate,
		CorsAllowedOrigins: cfg.Server.CorsAllowedOrigins,
		Debug:              cfg.IsDevelopment() && cfg.App.LogLevel == "debug",
	})
	if err != nil {
		log.Fatalw("failed to build router", "error", err)
	}

	// --- HTTP Server ---
	port := strconv.Itoa(cfg.Server.Port)
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Periodic pool stats
	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-statsCtx.Done():
				return
			case <-ticker.C:
				postgres.LogPoolStats(statsCtx, pool)
			}
		}
	}()

	// Start server in goroutine
	go func() {
		log.Infow("server starting",
			"port", port,
			"receive_guard", cfg.Purchases.GuardReceive,
			"auth_required", cfg.Auth.Required)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

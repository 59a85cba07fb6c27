// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking-gate-service/config"
	"parking-gate-service/internal/gateway/razorpay"
	"parking-gate-service/internal/handler"
	"parking-gate-service/internal/mailbox"
	"parking-gate-service/internal/repository"
	"parking-gate-service/internal/router"
	"parking-gate-service/internal/usecase"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("starting parking gate service")

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Server.Env),
		zap.String("port", cfg.Server.Port))

	// Connect to database
	dbConnStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	dbPool, err := pgxpool.New(context.Background(), dbConnStr)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()

	logger.Info("connected to database",
		zap.String("database", cfg.Database.DBName))

	// Initialize repositories
	recordRepo := repository.NewPaymentRecordRepository(dbPool)
	ledgerRepo := repository.NewGuestLedgerRepository(dbPool)

	// Initialize gateway client and gate mailbox
	gatewayClient := razorpay.NewRazorpayClient(cfg.Razorpay)
	gateMailbox := mailbox.New(cfg.Gate.SignalTTL)

	// Initialize usecases
	paymentUC := usecase.NewPaymentUsecase(recordRepo, ledgerRepo, gatewayClient, cfg.Payment, logger)
	reconcileUC := usecase.NewReconcileUsecase(recordRepo, ledgerRepo, gatewayClient, gateMailbox,
		cfg.Gate.HeuristicLookback, logger)
	webhookUC := usecase.NewWebhookUsecase(recordRepo, ledgerRepo, gateMailbox,
		cfg.Razorpay.WebhookSecret, logger)

	// Initialize handlers
	paymentHandler := handler.NewPaymentHandler(paymentUC, reconcileUC, logger)
	webhookHandler := handler.NewWebhookHandler(webhookUC, logger)
	gateHandler := handler.NewGateHandler(gateMailbox, logger)

	// Setup routes
	r := router.SetupRoutes(paymentHandler, webhookHandler, gateHandler, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	logger.Info("parking gate service started successfully",
		zap.String("port", cfg.Server.Port),
		zap.String("environment", cfg.Server.Env))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

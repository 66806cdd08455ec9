package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rookgm/licensed/config"
	"github.com/rookgm/licensed/internal/auth"
	handler "github.com/rookgm/licensed/internal/handler/http"
	"github.com/rookgm/licensed/internal/license"
	"github.com/rookgm/licensed/internal/middleware"
	"github.com/rookgm/licensed/internal/notifier"
	"github.com/rookgm/licensed/internal/repository"
	"github.com/rookgm/licensed/internal/repository/filestore"
	"github.com/rookgm/licensed/internal/repository/postgres"
	"github.com/rookgm/licensed/internal/service"
	"github.com/rookgm/licensed/internal/worker"
	"go.uber.org/zap"
)

const defaultAuthTokenKey = "f53ac685bbceebd75043e6be2e06ee07"

// newLogger creates logger with log level
func newLogger(level string) (*zap.Logger, error) {

	loggerLvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	loggerCfg := zap.NewProductionConfig()
	loggerCfg.Level = loggerLvl

	return loggerCfg.Build()
}

// loadSigningKey reads the license signing key from config. A missing key
// is not fatal, fulfillment will reject until it is configured.
func loadSigningKey(cfg *config.Config) (ed25519.PrivateKey, error) {
	switch {
	case cfg.SigningKey != "":
		return license.LoadPrivateKey(cfg.SigningKey)
	case cfg.SigningKeyFile != "":
		return license.LoadPrivateKeyFile(cfg.SigningKeyFile)
	default:
		return nil, nil
	}
}

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize order store
	var orderRepo service.OrderRepository
	if cfg.DatabaseDSN != "" {
		db, err := postgres.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatal("Error initializing database", zap.Error(err))
		}
		defer db.Close()

		// migrate database
		if err := db.Migrate(); err != nil {
			logger.Fatal("Error migrating database", zap.Error(err))
		}

		orderRepo = repository.NewOrderRepository(db)
	} else {
		store, err := filestore.New(cfg.StoreFile)
		if err != nil {
			logger.Fatal("Error opening order store", zap.Error(err))
		}
		orderRepo = store
	}

	// load license signing key
	signingKey, err := loadSigningKey(cfg)
	if err != nil {
		logger.Fatal("Error loading signing key", zap.Error(err))
	}
	if signingKey == nil {
		logger.Warn("Signing key is not configured, fulfillment will be rejected")
	}

	tokenKeyHex := cfg.AuthTokenKey
	if tokenKeyHex == "" {
		tokenKeyHex = defaultAuthTokenKey
	}
	tokenKey, err := hex.DecodeString(tokenKeyHex)
	if err != nil {
		logger.Fatal("Error extracting token key", zap.Error(err))
	}
	token := auth.NewAuthToken(tokenKey)

	// dependency injection
	// auth
	authService := service.NewAuthService([]byte(cfg.AdminPasswordHash), token)
	authHandler := handler.NewAuthHandler(authService)

	// order
	orderService := service.NewOrderService(orderRepo, logger)
	orderHandler := handler.NewOrderHandler(orderService)

	// fulfillment
	generator := license.NewGenerator(signingKey)
	notifyClient := notifier.NewClient(cfg.NotifyAddr)
	fulfillmentService := service.NewFulfillmentService(orderRepo, generator, notifyClient, logger)
	webhookHandler := handler.NewWebhookHandler(fulfillmentService)

	// admin
	adminHandler := handler.NewAdminHandler(orderService, fulfillmentService)

	// notification retry worker
	processor := worker.NewNotificationProcessor(fulfillmentService, logger)
	go processor.ProcessNotifications(ctx)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger))

	router.Post("/api/orders", orderHandler.CreateOrder())
	router.Post("/api/payments/webhook", webhookHandler.ReportPayment())
	router.Post("/api/admin/login", authHandler.LoginAdmin())

	// routes that require admin authorization
	router.Group(func(group chi.Router) {
		group.Use(middleware.Auth(token))
		group.Get("/api/admin/orders", adminHandler.ListOrders())
		group.Post("/api/admin/orders/{id}/approve", adminHandler.ApproveOrder())
		group.Delete("/api/admin/orders/{id}", adminHandler.DeleteOrder())
	})

	logger.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		logger.Fatal("Error starting server", zap.Error(err))
	}
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sinatle/donation/internal"
	"github.com/sinatle/donation/internal/domain"
	"github.com/sinatle/donation/internal/email"
	"github.com/sinatle/donation/internal/gateway"
	"github.com/sinatle/donation/internal/handler"
	"github.com/sinatle/donation/internal/middleware"
	"github.com/sinatle/donation/internal/postgres"
	"github.com/sinatle/donation/internal/router"
	"github.com/sinatle/donation/internal/routes"
	"github.com/sinatle/donation/internal/service"
	"github.com/sinatle/donation/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Business metrics
	telemetry.InitBusinessMetrics("donation")
	metrics := middleware.NewMetrics("donation")

	// Stores
	userStore := postgres.NewUserStore(pool)
	subscriptionStore := postgres.NewSubscriptionStore(pool)
	paymentStore := postgres.NewPaymentStore(pool)
	otpStore := postgres.NewOtpStore(pool)

	// Payment gateway
	logger.Info("Initializing Flitt gateway client...")
	flitt, err := gateway.NewFlittClient(cfg.Flitt.GatewayConfig(), nil, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize gateway client: %w", err)
	}

	// Email
	sender := email.NewSMTPSender(&email.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     int(cfg.Email.Port),
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
		FromName: cfg.Email.FromName,
	}, logger)

	// Services
	currency := domain.Currency(cfg.Currency)
	subscriptionService := service.NewSubscriptionService(subscriptionStore, userStore, paymentStore, flitt, currency, logger)
	paymentService := service.NewPaymentService(paymentStore, flitt, currency, logger)
	otpService := service.NewOtpService(otpStore, sender, logger)
	authService := service.NewAuthService(userStore, otpService, []byte(cfg.JWTSecret), time.Duration(cfg.TokenTTLHours)*time.Hour, logger)
	userService := service.NewUserService(userStore, logger)

	// Router
	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		router.CORS(cfg.CORSAllowedOrigins),
		metrics.Middleware,
		router.Logger(logger),
	)

	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	routes.Register(r, routes.Deps{
		Auth:          handler.NewAuthHandler(otpService, authService, logger),
		Users:         handler.NewUserHandler(userService, logger),
		Subscriptions: handler.NewSubscriptionHandler(subscriptionService, logger),
		Payments:      handler.NewPaymentHandler(paymentService, logger),
		Webhooks:      handler.NewWebhookHandler(subscriptionService, logger),
		Health:        handler.NewHealthHandler(pool),
		AuthService:   authService,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "address", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

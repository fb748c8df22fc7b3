package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/diagnosis/teamtodo/internal/http/handlers"
	"github.com/diagnosis/teamtodo/internal/platform/auth"
	"github.com/diagnosis/teamtodo/internal/platform/cache"
	"github.com/diagnosis/teamtodo/internal/platform/mailer"
	"github.com/diagnosis/teamtodo/internal/repo"
	"github.com/diagnosis/teamtodo/internal/repo/memory"
	"github.com/diagnosis/teamtodo/internal/repo/postgres"
	"github.com/diagnosis/teamtodo/internal/service"
	"github.com/diagnosis/teamtodo/pkg/config"
	"github.com/diagnosis/teamtodo/pkg/database"
	"github.com/diagnosis/teamtodo/pkg/events"
	"github.com/diagnosis/teamtodo/pkg/logger"
	mw "github.com/diagnosis/teamtodo/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	// Stores: Postgres when DATABASE_URL is set, in-memory otherwise
	// (local development without docker).
	var (
		tokens  repo.TokenStore
		tenants repo.TenantStore
	)
	if cfg.Database.URL != "" {
		pool, err := database.Connect(ctx, cfg.Database.URL, database.Options{
			MaxConns:    cfg.Database.MaxConns,
			MinConns:    cfg.Database.MinConns,
			MaxLifetime: cfg.Database.MaxLifetime,
		})
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		tokens = postgres.NewTokenRepo(pool, cfg.Auth.CodeTTL)
		tenants = postgres.NewTenantRepo(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		tokens = memory.NewTokenStore(cfg.Auth.CodeTTL)
		tenants = memory.NewTenantStore()
	}

	// Event bus. Optional: without NATS the API still works, it just
	// doesn't feed downstream consumers.
	var eventBus events.Publisher
	if cfg.NATS.URL != "" {
		bus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer bus.Close()
		eventBus = bus
	} else {
		eventBus = events.NopPublisher{}
	}

	emailSvc := pickMailer(cfg)
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience, cfg.Auth.SessionTokenTTL)
	authService := service.NewAuthService(tokens, tenants, issuer, emailSvc, eventBus, cfg)
	authHandler := handlers.NewAuthHandler(authService, issuer)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Redis.URL != "" {
		store, err := cache.NewRedis(cfg.Redis.URL)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		r.Use(mw.IdempotencyMiddleware(store))
	}

	r.Mount("/api/v1/auth", authHandler.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func pickMailer(cfg *config.Config) mailer.Service {
	if cfg.Email.DevMode {
		return mailer.NewDevMailer()
	}
	if cfg.Email.MailerSendKey != "" {
		m, err := mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.SMTPFromName, cfg.Email.SMTPFrom)
		if err != nil {
			logger.Error("Failed to configure MailerSend", "error", err)
			os.Exit(1)
		}
		return m
	}
	return mailer.NewSMTPMailer(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPFrom,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPass,
		cfg.Email.SMTPUseTLS,
	)
}

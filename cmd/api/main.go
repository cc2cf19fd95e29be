// Command api runs the Agendia booking API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/donglares/agendia-platform/internal/api/router"
	"github.com/donglares/agendia-platform/internal/booking"
	appconfig "github.com/donglares/agendia-platform/internal/config"
	"github.com/donglares/agendia-platform/internal/notify"
	"github.com/donglares/agendia-platform/internal/observability/metrics"
	"github.com/donglares/agendia-platform/internal/professionals"
	"github.com/donglares/agendia-platform/internal/reminders"
	"github.com/donglares/agendia-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting agendia API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, cleanup := buildRepository(ctx, cfg, logger)
	defer cleanup()

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	sender := buildSender(cfg, logger)
	bookingSvc := booking.NewService(repo, sender, bookingMetrics, logger)

	if cfg.RemindersEnabled {
		worker := reminders.NewWorker(repo, sender, buildDedupeStore(cfg, logger),
			bookingMetrics, logger, reminders.Config{
				Lead:     cfg.ReminderLead,
				Interval: cfg.ReminderInterval,
			})
		go worker.Run(ctx)
	}

	handler := router.New(&router.Config{
		Logger:               logger,
		BookingHandler:       booking.NewHandler(bookingSvc, logger),
		ProfessionalsHandler: professionals.NewHandler(repo, logger),
		MetricsHandler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:      cfg.AdminJWTSecret,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildRepository prefers Postgres and falls back to the in-memory store for
// local development without a database.
func buildRepository(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (professionals.Repository, func()) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory repository")
		return professionals.NewInMemoryRepository(), func() {}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to postgres")
	return professionals.NewPostgresRepository(pool), pool.Close
}

func buildSender(cfg *appconfig.Config, logger *logging.Logger) notify.TextSender {
	switch cfg.NotifyChannel {
	case "whatsapp":
		sender := notify.NewWhatsAppSender(notify.WhatsAppConfig{
			BaseURL:     cfg.WhatsAppBridgeURL,
			Timeout:     cfg.NotifyTimeout,
			MaxAttempts: cfg.WhatsAppRetryAttempts,
			BaseDelay:   cfg.WhatsAppRetryBaseDelay,
		}, logger)
		if sender != nil {
			return sender
		}
		logger.Warn("WHATSAPP_BRIDGE_URL not set, falling back to stub sender")
	case "email":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
			Subject:   cfg.NotificationSubjectLine,
		}, logger)
		if sender != nil {
			return sender
		}
		logger.Warn("SENDGRID_API_KEY not set, falling back to stub sender")
	}
	return notify.NewStubSender(logger)
}

func buildDedupeStore(cfg *appconfig.Config, logger *logging.Logger) reminders.DedupeStore {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, reminder dedupe is in-memory only")
		return reminders.NewMemoryDedupeStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	return reminders.NewRedisDedupeStore(client)
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/activity"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/modules"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/modules/catalog"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/modules/orders"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/modules/reviews"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/security"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/services"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logging.Setup("info")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Sentry error tracking
	var extra []slog.Handler
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			extra = append(extra, logging.NewSentryHandler(nil))
		}
	}
	logging.Setup(cfg.LogLevel, extra...)

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	mods := []modules.Module{
		catalog.New(cfg.SeedCatalog),
		orders.New(),
		reviews.New(),
	}

	if err := database.Migrate(&models.User{}, &models.ActivityLog{}); err != nil {
		slog.Error("core migration failed", "error", err)
		os.Exit(1)
	}
	for _, m := range mods {
		if ms := m.Models(); len(ms) > 0 {
			if err := database.Migrate(ms...); err != nil {
				slog.Error("module migration failed", "module", m.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("module migrated", "module", m.ID(), "models", len(ms))
		}
	}

	// Infrastructure
	m := metrics.New(prometheus.DefaultRegisterer)
	users := repository.NewUserRepo(database.DB)
	logs := repository.NewActivityRepo(database.DB)
	recorder := activity.NewAsyncRecorder(logs, activity.Options{
		BufferSize:    cfg.ActivityBufferSize,
		BatchSize:     cfg.ActivityBatchSize,
		FlushInterval: cfg.ActivityFlushInterval,
		Metrics:       m,
	})
	sender := newSender(cfg)
	publisher := newPublisher(cfg)
	tokens := security.NewTokenIssuer(cfg.JWTSecret)

	// Services
	authService := services.NewAuthService(users, sender, tokens, recorder,
		services.WithMetrics(m),
		services.WithBcryptCost(cfg.BcryptCost),
	)
	userService := services.NewUserService(users)

	deps := &modules.Deps{
		DB:       database.DB,
		Config:   cfg,
		Activity: recorder,
		Mailer:   sender,
		Events:   publisher,
		Metrics:  m,
		Guards: modules.Guards{
			Protected: middleware.JWTProtected(tokens, users),
			Optional:  middleware.OptionalUser(tokens, users),
			Admin:     middleware.AdminRequired(),
		},
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, routes.Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		Users:  handlers.NewUserHandler(userService),
		Logs:   handlers.NewLogHandler(logs),
		Health: handlers.NewHealthHandler(database.Ping, len(mods)),
	}, deps, mods, prometheus.DefaultGatherer)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	recorder.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := modules.ShutdownAll(ctx, mods); err != nil {
		slog.Error("module shutdown error", "error", err)
	}
	cancel()

	if err := publisher.Close(); err != nil {
		slog.Error("event publisher close error", "error", err)
	}
	sentry.Flush(2 * time.Second)

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func newSender(cfg *config.Config) mailer.Sender {
	if cfg.EmailDriver == "log" {
		slog.Warn("EMAIL_DRIVER=log: emails are written to the log, not delivered")
		return mailer.LogSender{}
	}
	return mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.EmailHost,
		Port:     cfg.EmailPort,
		Secure:   cfg.SMTPSecure(),
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
		From:     cfg.MailFrom(),
		Timeout:  cfg.EmailTimeout,
	})
}

// newPublisher falls back to dropping events when the broker is not configured
// or not reachable at startup.
func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.NopPublisher{}
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		slog.Error("event publisher unavailable, events disabled", "error", err)
		return events.NopPublisher{}
	}
	slog.Info("event publisher connected", "exchange", cfg.AMQPExchange)
	return p
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		msg = "Server error"
	}

	errCode := dto.CodeServerError
	switch {
	case code == fiber.StatusNotFound:
		errCode = dto.CodeNotFound
	case code < 500:
		errCode = dto.CodeValidation
	}
	return c.Status(code).JSON(dto.NewError(errCode, msg))
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/internal/handlers"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/routes"
	"github.com/example/storefront/internal/services"
)

func main() {
	cfg := config.Load()
	log := logger.Must(cfg.AppEnv)
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, log, !cfg.IsProduction())
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil && cfg.RateLimit.Enabled {
		log.Warn("redis unavailable, auth rate limiting disabled")
	}

	var otpSender services.OTPSender = services.NewLogOTPSender(log)
	var amqpSender *services.AMQPOTPSender
	if cfg.AMQPURL != "" {
		amqpSender, err = services.NewAMQPOTPSender(cfg.AMQPURL, cfg.OTPQueue, log)
		if err != nil {
			log.Warn("amqp unavailable, otp codes are only logged", zap.Error(err))
		} else {
			otpSender = amqpSender
		}
	}

	var storage services.ObjectStorage = services.DisabledStorage{}
	if cfg.Storage.Enabled() {
		s3, err := services.NewS3Storage(cfg.Storage)
		if err != nil {
			log.Fatal("object storage setup failed", zap.Error(err))
		}
		storage = s3
	} else {
		log.Warn("object storage not configured, product images cannot be uploaded")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Storefront Backend",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigin,
		AllowCredentials: true,
	}))
	app.Use(middleware.Metrics())

	routes.Register(app, routes.Deps{
		DB:      db,
		Config:  cfg,
		Log:     log,
		Redis:   rdb,
		Storage: storage,
		OTP:     otpSender,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting server", zap.String("port", cfg.AppPort))
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Error("fiber.Listen error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	if amqpSender != nil {
		if err := amqpSender.Close(); err != nil {
			log.Warn("amqp close", zap.Error(err))
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn("redis close", zap.Error(err))
		}
	}
	if err := database.Close(db); err != nil {
		log.Warn("database close", zap.Error(err))
	}
}

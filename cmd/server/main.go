package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/abdullaharshad/budget-tracker/internal/auth"
	"github.com/abdullaharshad/budget-tracker/internal/config"
	"github.com/abdullaharshad/budget-tracker/internal/database"
	"github.com/abdullaharshad/budget-tracker/internal/handlers"
	"github.com/abdullaharshad/budget-tracker/internal/logger"
	"github.com/abdullaharshad/budget-tracker/internal/mailer"
	"github.com/abdullaharshad/budget-tracker/internal/middleware"
	"github.com/abdullaharshad/budget-tracker/internal/repository"
	"github.com/abdullaharshad/budget-tracker/internal/routes"
	"github.com/abdullaharshad/budget-tracker/internal/services"
	"github.com/abdullaharshad/budget-tracker/internal/storage"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	sugar, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = sugar.Sync() }()
	sugar.Infof("Starting budget-tracker in %s environment on port %d", cfg.App.Env, cfg.App.Port)

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, sugar)
	if err != nil {
		sugar.Fatal(err)
	}
	rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sugar)
	if err != nil {
		sugar.Fatal(err)
	}

	mail := mailer.NewClient(cfg.Email.APIKey, cfg.Email.SenderEmail, cfg.Email.SenderName)
	if !mail.IsConfigured() {
		sugar.Warn("Email client not configured; verification codes fall back to the development response path")
	}

	disk, err := storage.NewDisk(cfg.Uploads.Dir)
	if err != nil {
		sugar.Fatalf("failed to prepare uploads directory: %v", err)
	}

	userRepo := repository.NewMongoUserRepo(db)
	txRepo := repository.NewMongoTransactionRepo(db)

	hasher := auth.NewHasher(cfg.Security.PasswordHashCost)
	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLDays)*24*time.Hour)
	codeTTL := time.Duration(cfg.Security.CodeTTLMinutes) * time.Minute

	authSvc := services.NewAuthService(userRepo, hasher, tokens, mail, sugar, codeTTL, cfg.IsDevelopment())
	limiter := middleware.NewResendLimiter(rdb, cfg.Security.ResendLimitPerHour, sugar)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.App.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.App.WriteTimeout) * time.Second,
		BodyLimit:    (cfg.Uploads.MaxSizeMB + 1) * 1024 * 1024,
	})

	app.Use(cors.New())
	app.Use(requestLogger(sugar.Desugar()))

	routes.Register(app, routes.Deps{
		Auth:         handlers.NewAuthHandler(authSvc, limiter, sugar),
		Profile:      handlers.NewProfileHandler(authSvc, disk, cfg.Uploads.MaxSizeMB, sugar),
		Transactions: handlers.NewTransactionHandler(txRepo, sugar),
		Health:       handlers.NewHealthHandler(mongoClient, cfg.Mongo.Database, txRepo),
		Tokens:       tokens,
		Users:        userRepo,
		UploadsDir:   cfg.Uploads.Dir,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		sugar.Infof("Server listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		sugar.Errorf("Fiber shutdown error: %v", err)
	}
	if err := mongoClient.Disconnect(ctx); err != nil {
		sugar.Errorf("MongoDB disconnect error: %v", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			sugar.Errorf("Redis close error: %v", err)
		}
	}
	sugar.Info("Graceful shutdown complete")
}

func requestLogger(l *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)
		status := c.Response().StatusCode()
		if err != nil {
			l.Error("HTTP request error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Duration("latency", latency),
				zap.Error(err),
			)
			return err
		}
		l.Info("HTTP request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		)
		return nil
	}
}

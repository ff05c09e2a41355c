package main

import (
	"context"
	"net/http"
	"os"
	"time"

	_ "paylog/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"paylog/internal/cache"
	"paylog/internal/config"
	"paylog/internal/db"
	"paylog/internal/gateway"
	"paylog/internal/handler"
	"paylog/internal/lock"
	"paylog/internal/model"
	"paylog/internal/repository"
	"paylog/internal/router"
	"paylog/internal/service"
)

// @title Payment Gateway Integration Log API
// @version 1.0
// @description Records gateway interactions, routes gateway responses to redirect decisions, and retries failed interactions.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	setupLogger(cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())

	gormDB, err := db.Open(cfg.DBDriver, cfg.MySQLDSN, cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}

	if err := gormDB.AutoMigrate(
		&model.IntegrationLog{},
		&model.SessionLog{},
	); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Exclusion tokens live in redis so single-flight holds across
	// instances; fall back to process memory when redis is absent.
	var locker lock.Locker
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using in-process locks")
		locker = lock.NewMemoryLocker()
	} else {
		locker = lock.NewRedisLocker(cacheClient, cfg.GatewayTimeout+5*time.Second)
	}
	cancel()

	registry := gateway.NewRegistry(
		gateway.NewPayzenAdapter(os.Getenv("PAYZEN_HMAC_KEY")),
	)
	buttons := gateway.Buttons{
		"payzen-card": {Name: "payzen-card", Label: "Pay by card", HandlerRef: "payzen", Enabled: true},
	}

	redirects := service.Redirects{
		Success:  cfg.SuccessURL,
		Failure:  cfg.FailureURL,
		Pending:  cfg.PendingURL,
		Checkout: cfg.CheckoutURL,
	}

	// Initialize repositories
	logRepo := repository.NewIntegrationLogRepository(gormDB)
	sessionRepo := repository.NewSessionLogRepository(gormDB, cacheClient)

	// Initialize services
	retryService := service.NewRetryService(logRepo, registry, locker, cfg.GatewayTimeout)
	responseService := service.NewResponseService(logRepo, sessionRepo, registry, locker, redirects, cfg.GatewayTimeout)
	sessionService := service.NewSessionService(sessionRepo, buttons, cfg.CheckoutURL)

	// Initialize handlers
	responseHandler := handler.NewResponseHandler(responseService)
	sessionHandler := handler.NewSessionHandler(sessionService, responseService)
	retryHandler := handler.NewRetryHandler(retryService)

	// Register routes
	router.Register(e, cfg, responseHandler, sessionHandler, retryHandler)

	addr := ":" + cfg.ServerPort
	log.Info().Str("addr", addr).Msg("starting server")
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server start")
	}
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

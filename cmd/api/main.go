// Command api runs the expense system HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/viatero/expense-system/docs"
	"github.com/viatero/expense-system/internal/api"
	"github.com/viatero/expense-system/internal/core/service"
	"github.com/viatero/expense-system/internal/infrastructure/config"
	mongodb "github.com/viatero/expense-system/internal/infrastructure/db/mongo"
	redisdb "github.com/viatero/expense-system/internal/infrastructure/db/redis"
	"github.com/viatero/expense-system/internal/infrastructure/queue"
	"github.com/viatero/expense-system/internal/notify"
	"github.com/viatero/expense-system/pkg/logger"
)

// @title           Expense System API
// @version         1.0
// @description     Credential lifecycle, password recovery, and business trip expense tracking.
// @BasePath        /
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})

	if cfg.Auth.SessionSecret == "" {
		log.Fatal().Msg("SESSION_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongodb index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}()

	// --- Repositories and adapters ---
	userRepo := mongodb.NewUserRepository(db)
	resetRepo := mongodb.NewResetRepository(db)
	tripRepo := mongodb.NewTripRepository(db)
	expenseRepo := mongodb.NewExpenseRepository(db)
	revoker := redisdb.NewRevocationStore(rdb)

	// --- Notifications ---
	mailer := notify.NewMailer(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, log)
	dispatcher := queue.NewDispatcher(cfg.NotifyWorkers, mailer, log)
	dispatcher.Start(ctx)

	// --- Services ---
	hasher := service.NewPasswordHasher(cfg.Auth.BcryptCost)
	codec := service.NewTokenCodec(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
	sessions := service.NewSessionCache(service.DefaultSessionCacheTTL)

	authService := service.NewAuthService(userRepo, hasher, codec, sessions, revoker, log)
	resetService := service.NewResetService(userRepo, resetRepo, hasher, codec, sessions, revoker, dispatcher, cfg.Auth.ResetFallback, log)
	tripService := service.NewTripService(tripRepo, expenseRepo, log)
	expenseService := service.NewExpenseService(expenseRepo, tripRepo, userRepo, dispatcher, log)

	// --- HTTP ---
	e := api.NewRouter(api.RouterConfig{
		AuthService:     authService,
		ResetService:    resetService,
		TripService:     tripService,
		ExpenseService:  expenseService,
		Mongo:           db,
		Redis:           rdb,
		Log:             log,
		SecureCookies:   cfg.IsProduction(),
		ExposeResetCode: cfg.Auth.ResetReturnCode,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/crescentvet/clinic-booking/internal/api"
	"github.com/crescentvet/clinic-booking/internal/clinic"
	"github.com/crescentvet/clinic-booking/internal/config"
	"github.com/crescentvet/clinic-booking/internal/db"
	"github.com/crescentvet/clinic-booking/internal/logging"
	"github.com/crescentvet/clinic-booking/internal/notify"
	"github.com/crescentvet/clinic-booking/internal/observability/metrics"
	redisclient "github.com/crescentvet/clinic-booking/internal/redis"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}

	logger := logging.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	logger.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	if cfg.RunMigrations {
		if err := db.Migrate(rootCtx, pgPool); err != nil {
			logger.Fatal("migration error", zap.Error(err))
		}
		logger.Info("migrations applied")
	}

	redisCtx, cancelRedis := context.WithTimeout(rootCtx, 5*time.Second)
	rdb, err := redisclient.Dial(redisCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	cancelRedis()
	if err != nil {
		logger.Fatal("redis connection error", zap.Error(err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("error closing redis", zap.Error(err))
		}
	}()
	logger.Info("connected to Redis")

	bookingMetrics := metrics.NewBookingMetrics(nil)

	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName, logger); sg != nil {
		sender = sg
	} else {
		sender = notify.NewLogSender(logger)
	}
	notifier := notify.NewService(sender, cfg.ClinicName, cfg.ClinicPhone, logger, bookingMetrics)

	repo := clinic.NewPgRepository(pgPool)
	locker := redisclient.NewRedisKeyedLocker(rdb, cfg.LockTTL)
	svc := clinic.NewService(repo, locker, notifier, logger, bookingMetrics)

	router := api.NewRouter(api.RouterConfig{
		Service:   svc,
		Doctors:   repo,
		PgPool:    pgPool,
		Redis:     rdb,
		Logger:    logger,
		JWTSecret: cfg.JWTSecret,
		Env:       cfg.Env,
		Version:   version,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-rootCtx.Done()

	logger.Info("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

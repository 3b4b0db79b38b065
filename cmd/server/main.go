package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/HuNTer8272/surplus2share-project/internal/accounts"
	"github.com/HuNTer8272/surplus2share-project/internal/config"
	"github.com/HuNTer8272/surplus2share-project/internal/logger"
	"github.com/HuNTer8272/surplus2share-project/internal/matching"
	"github.com/HuNTer8272/surplus2share-project/internal/middleware"
	"github.com/HuNTer8272/surplus2share-project/internal/routes"
	"github.com/HuNTer8272/surplus2share-project/internal/scheduler"
	"github.com/HuNTer8272/surplus2share-project/internal/store"
	"github.com/HuNTer8272/surplus2share-project/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	// Initialize structured logging to file
	accessLog := logger.Setup(cfg.LogFile, cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	// Connect to the database
	db, err := config.OpenDatabase(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database unavailable")
	}
	repo := store.New(db)

	var publisher rabbitmq.Publisher = &rabbitmq.EventProducerFallback{}
	if cfg.RabbitMQURL == "" {
		logrus.Info("RABBITMQ_URL not set; domain events are dropped")
	} else if producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL, cfg.EventsExchange); err != nil {
		logrus.WithError(err).Warn("rabbitmq producer unavailable; using fallback")
	} else {
		publisher = producer
		logrus.WithField("exchange", cfg.EventsExchange).Info("rabbitmq producer connected")
	}
	defer publisher.Close()

	var limiter middleware.RateLimiter
	if cfg.RedisURL == "" {
		logrus.Info("REDIS_URL not set; request rate limiting disabled")
	} else {
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		client, err := middleware.OpenRedis(pingCtx, cfg.RedisURL)
		cancel()
		if err != nil {
			logrus.WithError(err).Warn("redis unavailable; request rate limiting disabled")
		} else {
			defer client.Close()
			limiter = middleware.NewRedisRateLimiter(client, cfg.RateLimitPrefix)
			logrus.Info("redis connected")
		}
	}

	engine := matching.New(repo, matching.Options{
		RewardPoints:        cfg.DonorRewardPoints,
		DefaultQuantityUnit: cfg.DefaultQuantityUnit,
		Publisher:           publisher,
	})

	if cfg.ExpirySweepSchedule != "" {
		sweeper := scheduler.New(engine)
		if err := sweeper.Start(cfg.ExpirySweepSchedule); err != nil {
			logrus.WithError(err).Fatal("invalid EXPIRY_SWEEP_SCHEDULE")
		}
		defer func() { <-sweeper.Stop().Done() }()
	}

	router := routes.SetupRouter(routes.Dependencies{
		Store:            repo,
		Engine:           engine,
		Accounts:         accounts.New(repo),
		JWTSecret:        cfg.JWTSecret,
		TokenTTL:         time.Duration(cfg.JWTTTLHours) * time.Hour,
		Limiter:          limiter,
		RequestRateLimit: cfg.RequestRateLimitPerMinute,
		AccessLog:        accessLog,
	})

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.ServerPort,
		Handler:           middleware.EnableCORS(router, cfg.AllowedOrigins()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", server.Addr).Info("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped unexpectedly")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logrus.Info("shutdown started")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("shutdown failed")
	}
	logrus.Info("shutdown complete")
}

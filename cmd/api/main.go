package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/docstore"
	adapterHTTP "github.com/comitanigiacomo/kanso-habitos/internal/adapters/handler/http"
	applog "github.com/comitanigiacomo/kanso-habitos/internal/adapters/logger"
	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habitos/internal/config"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Critical: %v\n", err)
		os.Exit(1)
	}

	logger, err := applog.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Critical: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

type app struct {
	router *gin.Engine
	store  docstore.Store
	redis  *redis.Client
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = a.store.Close()
}

// newApp wires store, cache, services and handlers from the configuration.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	now := func() time.Time { return time.Now().In(loc) }

	logger.Info("opening document store", zap.String("driver", cfg.Store.Driver))
	base, err := docstore.Open(ctx, cfg.Store.Driver, cfg.StoreDSN())
	if err != nil {
		return nil, err
	}
	store := docstore.NewInstrumentedStore(base)

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = cache.NewRedisClient(ctx, cache.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Warn("redis unavailable, running without cache", zap.Error(err))
			rdb = nil
		}
	}

	var habitRepo domain.HabitRepository = repository.NewDocumentHabitRepository(store)
	if rdb != nil {
		habitRepo = repository.NewCachedHabitRepository(habitRepo, rdb, cfg.CacheTTL, logger)
	}
	categoryRepo := repository.NewDocumentCategoryRepository(store)
	trackingRepo := repository.NewDocumentTrackingRepository(store)
	rewardRepo := repository.NewDocumentRewardRepository(store)

	habitService := services.NewHabitService(habitRepo, trackingRepo).WithClock(now)
	categoryService := services.NewCategoryService(categoryRepo, habitRepo)
	trackingService := services.NewTrackingService(habitRepo, trackingRepo).WithClock(now)
	statsService := services.NewStatsService(trackingRepo, logger).WithClock(now)
	rewardService := services.NewRewardService(rewardRepo)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		HabitHandler:    adapterHTTP.NewHabitHandler(habitService, logger),
		CategoryHandler: adapterHTTP.NewCategoryHandler(categoryService, logger),
		TrackingHandler: adapterHTTP.NewTrackingHandler(trackingService, logger),
		StatsHandler:    adapterHTTP.NewStatsHandler(statsService),
		RewardHandler:   adapterHTTP.NewRewardHandler(rewardService, logger),
		Store:           store,
		Redis:           rdb,
		Logger:          logger,
		RateLimit:       cfg.RateLimit.Requests,
		RateLimitWindow: cfg.RateLimit.Window,
		TrustedProxies:  cfg.Server.TrustedProxies,
		StartTime:       time.Now(),
	})

	return &app{router: router, store: store, redis: rdb}, nil
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := newApp(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      a.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("kanso habitos listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case sig := <-quit:
		logger.Info("stop signal received, shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

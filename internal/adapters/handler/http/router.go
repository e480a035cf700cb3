package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/docstore"
	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/metrics"
)

type RouterDependencies struct {
	HabitHandler    *HabitHandler
	CategoryHandler *CategoryHandler
	TrackingHandler *TrackingHandler
	StatsHandler    *StatsHandler
	RewardHandler   *RewardHandler

	Store  docstore.Store
	Redis  *redis.Client
	Logger *zap.Logger

	// RateLimit is the number of requests allowed per client in
	// RateLimitWindow. Zero disables rate limiting.
	RateLimit       int
	RateLimitWindow time.Duration

	// TrustedProxies may set the client IP through X-Forwarded-For. Empty
	// means the client IP is always the connection's remote address.
	TrustedProxies []string

	StartTime time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		logger.Error("invalid trusted proxies, trusting none", zap.Strings("proxies", deps.TrustedProxies), zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.Metrics())

	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if deps.RateLimit > 0 {
		if deps.Redis != nil {
			router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, deps.RateLimitWindow, logger))
		} else {
			router.Use(middleware.LocalRateLimiter(deps.RateLimit, deps.RateLimitWindow))
		}
	}

	router.GET("/health", healthHandler(deps))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	deps.HabitHandler.RegisterRoutes(router)
	deps.CategoryHandler.RegisterRoutes(router)
	deps.TrackingHandler.RegisterRoutes(router)
	deps.StatsHandler.RegisterRoutes(router)
	deps.RewardHandler.RegisterRoutes(router)

	return router
}

func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		storeStatus := "connected"
		if deps.Store == nil || deps.Store.Ping(ctx) != nil {
			storeStatus = "unreachable"
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if deps.Redis.Ping(ctx).Err() != nil {
				redisStatus = "unreachable"
			}
		}

		status := "ok"
		code := http.StatusOK
		if storeStatus == "unreachable" || redisStatus == "unreachable" {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":   status,
			"database": storeStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}

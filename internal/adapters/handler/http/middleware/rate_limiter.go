package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func tooManyRequests(c *gin.Context, retryIn time.Duration) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":      "Demasiadas solicitudes, intenta más tarde",
		"retry_in_s": int(retryIn.Seconds()),
	})
}

// RateLimiterMiddleware counts requests per client IP in fixed Redis
// windows. Redis errors let the request through.
func RateLimiterMiddleware(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("rate_limit:%s", c.ClientIP())

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter skipped, redis unavailable", zap.Error(err))
			c.Next()
			return
		}

		if count == 1 {
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				logger.Warn("rate limiter expire failed, dropping key", zap.String("key", key), zap.Error(err))
				rdb.Del(ctx, key)
				c.Next()
				return
			}
		}

		ttl, err := rdb.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = window
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", max(0, int64(limit)-count)))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(ttl).Unix()))

		if count > int64(limit) {
			tooManyRequests(c, ttl)
			return
		}

		c.Next()
	}
}

// LocalRateLimiter is the in-process variant used when Redis is disabled:
// a token bucket per client IP refilling limit tokens every window.
func LocalRateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLocalLimiter(limit, window, time.Now).handle
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localLimiter drops buckets idle for a whole window. Such a bucket has
// refilled completely, so a fresh one behaves the same.
type localLimiter struct {
	limit  int
	window time.Duration
	every  rate.Limit
	now    func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

func newLocalLimiter(limit int, window time.Duration, now func() time.Time) *localLimiter {
	return &localLimiter{
		limit:     limit,
		window:    window,
		every:     rate.Every(window / time.Duration(max(1, limit))),
		now:       now,
		visitors:  make(map[string]*visitor),
		lastSweep: now(),
	}
}

func (l *localLimiter) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.window {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) >= l.window {
				delete(l.visitors, key)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.limit)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (l *localLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func (l *localLimiter) handle(c *gin.Context) {
	now := l.now()
	limiter := l.get(c.ClientIP(), now)

	c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", l.limit))

	r := limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		tooManyRequests(c, delay)
		return
	}

	c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", max(0, int(limiter.TokensAt(now)))))
	c.Next()
}

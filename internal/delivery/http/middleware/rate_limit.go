package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"go-ideadaily-backend/internal/delivery/http/response"
	"go-ideadaily-backend/pkg/logger"
	"go-ideadaily-backend/pkg/redis"

	"github.com/gin-gonic/gin"
)

type RateLimitConfig struct {
	KeyPrefix     string
	WindowSeconds int
	Threshold     int
}

// memoryWindow is the fallback counter used when Redis is unavailable. It is
// per-process only, which is acceptable for a degraded mode.
type memoryWindow struct {
	mu      sync.Mutex
	counts  map[string]int
	resetAt time.Time
	window  time.Duration
}

func newMemoryWindow(window time.Duration) *memoryWindow {
	return &memoryWindow{
		counts:  make(map[string]int),
		resetAt: time.Now().Add(window),
		window:  window,
	}
}

func (w *memoryWindow) increment(key string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if time.Now().After(w.resetAt) {
		w.counts = make(map[string]int)
		w.resetAt = time.Now().Add(w.window)
	}
	w.counts[key]++
	return w.counts[key]
}

// RateLimitMiddleware applies a fixed-window counter per client IP, backed
// by Redis so the window is shared across instances, with an in-memory
// fallback when Redis is not configured.
func RateLimitMiddleware(cfg RateLimitConfig) gin.HandlerFunc {
	window := time.Duration(cfg.WindowSeconds) * time.Second
	fallback := newMemoryWindow(window)

	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", cfg.KeyPrefix, c.ClientIP())

		var count int
		if client := redis.Client(); client != nil {
			ctx := c.Request.Context()
			n, err := client.Incr(ctx, key).Result()
			if err != nil {
				logger.Log.Warn("rate limit counter failed, falling back to memory", "error", err)
				count = fallback.increment(key)
			} else {
				if n == 1 {
					client.Expire(ctx, key, window)
				}
				count = int(n)
			}
		} else {
			count = fallback.increment(key)
		}

		if count > cfg.Threshold {
			response.Error(c, http.StatusTooManyRequests, "Too many requests. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

/**
 * 中间件:限流器中间件
 * @author: sun977
 * @date: 2025.10.10
 * @description: 按客户端IP限流，每个IP一个令牌桶
 * @func:
 *   - IPRateLimiter 按key划分的令牌桶集合，空闲的桶定期清理
 *   - GinRateLimitMiddleware 默认限流器中间件[根据客户端IP进行限流]
 */
package middleware

import (
	"net/http"
	"sync"
	"time"

	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/logger"
	"neomonitor/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const limiterIdleTimeout = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter 按key划分的令牌桶限流器
type IPRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewIPRateLimiter 创建限流器，rps 为每秒生成的令牌数，burst 为桶容量
func NewIPRateLimiter(rps, burst int) *IPRateLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst < rps {
		burst = rps
	}
	return &IPRateLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow 检查是否允许请求，每次调用顺带清理空闲的桶
func (l *IPRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now
	l.cleanupLocked(now)
	return entry.limiter.AllowN(now, 1)
}

// Reset 重置指定key的限流状态
func (l *IPRateLimiter) Reset(key string) {
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
}

func (l *IPRateLimiter) cleanupLocked(now time.Time) {
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > limiterIdleTimeout {
			delete(l.entries, key)
		}
	}
}

// GinRateLimitMiddleware 默认限流中间件
// 使用配置文件中的限流策略
func (m *MiddlewareManager) GinRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := m.securityConfig.RateLimit
		if !cfg.Enabled || m.shouldSkipRateLimit(c.Request.URL.Path) {
			c.Next()
			return
		}

		m.rateLimiterOnce.Do(func() {
			m.rateLimiter = NewIPRateLimiter(cfg.RequestsPerSecond, cfg.BurstSize)
		})

		clientIP := utils.GetClientIP(c)
		if !m.rateLimiter.Allow(clientIP) {
			logger.LogSystemEvent("middleware", "rate_limit_exceeded", "Rate limit exceeded for client", logrus.WarnLevel, map[string]interface{}{
				"client_ip": clientIP,
				"path":      c.Request.URL.Path,
				"method":    c.Request.Method,
				"func_name": "middleware.ratelimit.GinRateLimitMiddleware",
			})
			c.JSON(http.StatusTooManyRequests, system.APIResponse{
				Code:    http.StatusTooManyRequests,
				Status:  "failed",
				Message: "Too many requests, please try again later",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// shouldSkipRateLimit 检查是否应该跳过限流
func (m *MiddlewareManager) shouldSkipRateLimit(path string) bool {
	for _, skipPath := range m.securityConfig.RateLimit.SkipPaths {
		if path == skipPath {
			return true
		}
	}
	return false
}

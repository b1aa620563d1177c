/**
 * 中间件:日志相关中间件
 * @author: sun977
 * @date: 2025.10.10
 * @description: 定义日志中间件
 * @func:
 *   - GinLoggingMiddleware Gin日志中间件[同时把客户端IP存储到Gin上下文和标准上下文,供后续使用]
 */
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"neomonitor/internal/pkg/logger"
	"neomonitor/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GinLoggingMiddleware Gin日志中间件
// 记录所有HTTP请求的访问日志，错误状态码和慢请求额外记录
// 使用方式: router.Use(middlewareManager.GinLoggingMiddleware())
func (m *MiddlewareManager) GinLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		clientIP := utils.GetClientIP(c)

		// 标准化后的客户端IP同时写入Gin上下文和标准上下文，service层只拿得到标准上下文
		c.Set("client_ip", clientIP)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), utils.ContextKeyClientIP, clientIP))

		c.Next()

		if !m.securityConfig.Logging.EnableRequestLog || m.shouldSkipLogging(c.Request.URL.Path) {
			return
		}

		XRequestID := c.GetString("request_id")
		if XRequestID == "" {
			XRequestID = c.GetHeader("X-Request-ID")
		}
		userID := uint(utils.GetCurrentUserID(c))
		logger.LogAccessRequest(c, start, XRequestID, userID)

		duration := time.Since(start)
		if threshold := m.securityConfig.Logging.SlowRequestThreshold; threshold > 0 && duration > threshold {
			logger.LogSystemEvent("http", "slow_request", "Slow request detected", logrus.WarnLevel, map[string]interface{}{
				"method":      c.Request.Method,
				"path":        c.Request.URL.Path,
				"duration_ms": duration.Milliseconds(),
				"request_id":  XRequestID,
			})
		}

		statusCode := c.Writer.Status()
		if statusCode >= http.StatusInternalServerError {
			errorMsg := http.StatusText(statusCode)
			if len(c.Errors) > 0 {
				errorMsg = c.Errors.String()
			}
			logger.LogError(fmt.Errorf("HTTP %d: %s", statusCode, errorMsg), XRequestID, userID, clientIP, c.Request.URL.Path, c.Request.Method, map[string]interface{}{
				"operation":   "http_request",
				"status_code": statusCode,
				"user_agent":  c.GetHeader("User-Agent"),
				"timestamp":   logger.NowFormatted(),
			})
		}
	}
}

func (m *MiddlewareManager) shouldSkipLogging(path string) bool {
	for _, skipPath := range m.securityConfig.Logging.SkipPaths {
		if path == skipPath {
			return true
		}
	}
	return false
}

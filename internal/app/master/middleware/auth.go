/**
 * 中间件:认证相关中间件
 * @author: sun977
 * @date: 2025.10.10
 * @description: 定义认证相关中间件
 * @func:
 *   - GinJWTAuthMiddleware: Gin JWT认证中间件
 *   - GinEditorMiddleware: 检查用户是否允许修改监控配置
 */
package middleware

import (
	"errors"
	"net/http"

	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/auth"
	"neomonitor/internal/pkg/logger"
	"neomonitor/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GinJWTAuthMiddleware Gin JWT认证中间件
// 验证请求头中的JWT令牌，并将用户信息存储到Gin上下文中
// 使用方式: router.Use(middlewareManager.GinJWTAuthMiddleware())
func (m *MiddlewareManager) GinJWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := utils.GetClientIP(c)
		XRequestID := c.GetHeader("X-Request-ID")

		accessToken := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if accessToken == "" {
			c.JSON(http.StatusUnauthorized, system.APIResponse{
				Code:    http.StatusUnauthorized,
				Status:  "failed",
				Message: "missing or invalid authorization header",
			})
			c.Abort()
			return
		}

		user, err := m.sessionService.ValidateSession(c.Request.Context(), accessToken)
		if err != nil {
			logger.LogBusinessError(err, XRequestID, 0, clientIP, c.Request.URL.Path, c.Request.Method, map[string]interface{}{
				"operation":  "token_validation",
				"user_agent": c.GetHeader("User-Agent"),
				"timestamp":  logger.NowFormatted(),
			})
			statusCode := http.StatusUnauthorized
			message := "invalid or expired token"
			if errors.Is(err, system.ErrUserDisabled) {
				statusCode = http.StatusForbidden
				message = "user account is disabled"
			}
			c.JSON(statusCode, system.APIResponse{
				Code:    statusCode,
				Status:  "failed",
				Message: message,
				Error:   err.Error(),
			})
			c.Abort()
			return
		}

		// 后续处理器通过 utils.GetCurrentUserID 读取，类型固定为 uint64
		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Set("user_type", user.UserType)
		c.Next()
	}
}

// GinEditorMiddleware 只允许管理员及以上用户通过
func (m *MiddlewareManager) GinEditorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("user_type")
		userType, _ := v.(system.UserType)
		if !exists || !userType.CanEditConfiguration() {
			c.JSON(http.StatusForbidden, system.APIResponse{
				Code:    http.StatusForbidden,
				Status:  "failed",
				Message: "No permissions to referred object or it does not exist!",
				Error:   system.ErrPermissionDenied.Error(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

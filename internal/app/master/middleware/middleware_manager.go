package middleware

import (
	"sync"

	"neomonitor/internal/config"
	"neomonitor/internal/service/auth"
)

// MiddlewareManager 中间件管理器
// 负责管理所有Gin框架的中间件，提供统一的中间件接口
type MiddlewareManager struct {
	sessionService  *auth.SessionService   // 会话服务，用于JWT令牌验证
	securityConfig  *config.SecurityConfig // 安全配置，用于中间件配置
	rateLimiter     *IPRateLimiter
	rateLimiterOnce sync.Once
}

// NewMiddlewareManager 创建中间件管理器
// 参数:
//   - sessionService: 会话服务实例
//   - securityConfig: 安全配置实例
//
// 返回: 中间件管理器实例
func NewMiddlewareManager(sessionService *auth.SessionService, securityConfig *config.SecurityConfig) *MiddlewareManager {
	return &MiddlewareManager{
		sessionService: sessionService,
		securityConfig: securityConfig,
	}
}

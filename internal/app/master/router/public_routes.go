/**
 * 路由:公共路由
 * @author: sun977
 * @date: 2025.10.10
 * @description: 公共路由，只有登录不需要认证
 * @func:
 */
package router

import (
	"github.com/gin-gonic/gin"
)

// setupPublicRoutes 设置公共路由
func (r *Router) setupPublicRoutes(v1 *gin.RouterGroup) {
	auth := v1.Group("/auth")
	{
		// 用户登录
		auth.POST("/login", r.authModule.LoginHandler.GinLogin) // handler\auth\login.go
	}
}

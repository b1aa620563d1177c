/**
 * 路由:路由管理器
 * @author: sun977
 * @date: 2025.10.10
 * @description: 路由管理器，包含Router结构体、NewRouter函数和SetupRoutes主函数
 * @func:
 */
package router

import (
	"neomonitor/internal/app/master/middleware"
	"neomonitor/internal/app/master/setup"
	"neomonitor/internal/config"
	"neomonitor/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Router 路由管理器
type Router struct {
	config            *config.Config
	db                *gorm.DB
	engine            *gin.Engine
	middlewareManager *middleware.MiddlewareManager
	authModule        *setup.AuthModule
	monitorModule     *setup.MonitorModule
}

// NewRouter 创建路由管理器实例
// 依赖装配交给 setup 层，这里只取用模块输出
func NewRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) (*Router, error) {
	authModule, err := setup.BuildAuthModule(db, cfg)
	if err != nil {
		return nil, err
	}
	monitorModule, err := setup.BuildMonitorModule(db, redisClient, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	engine := gin.New()

	return &Router{
		config:            cfg,
		db:                db,
		engine:            engine,
		middlewareManager: middleware.NewMiddlewareManager(authModule.SessionService, &cfg.Security),
		authModule:        authModule,
		monitorModule:     monitorModule,
	}, nil
}

// SetupRoutes 设置全局中间件和路由
func (r *Router) SetupRoutes() {
	r.registerGlobalMiddleware()
	r.registerRoutes()
}

// GetEngine 获取Gin引擎实例
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// ReloadCallbacks 需要注册到配置监听器的回调
func (r *Router) ReloadCallbacks() []config.ReloadCallback {
	return []config.ReloadCallback{r.monitorModule.Settings.ReloadCallback}
}

// registerGlobalMiddleware 注册全局中间件
// 请求ID必须在日志之前，限流在CORS之后以免预检请求被计数
func (r *Router) registerGlobalMiddleware() {
	r.engine.Use(gin.Recovery())

	if r.middlewareManager != nil {
		r.engine.Use(r.middlewareManager.GinRequestIDMiddleware())
		r.engine.Use(r.middlewareManager.GinCORSMiddleware())
		r.engine.Use(r.middlewareManager.GinSecurityHeadersMiddleware())
		r.engine.Use(r.middlewareManager.GinLoggingMiddleware())
		r.engine.Use(r.middlewareManager.GinRateLimitMiddleware())
	}

	logger.WithFields(map[string]interface{}{
		"path":      "router_manager.registerGlobalMiddleware",
		"operation": "register_global_middleware",
		"option":    "middlewareManager.attach.done",
		"func_name": "router.registerGlobalMiddleware",
	}).Info("全局中间件注册完成")
}

// registerRoutes 注册路由
func (r *Router) registerRoutes() {
	api := r.engine.Group("/api")
	v1 := api.Group("/v1")

	// 公共路由（不需要认证）
	r.setupPublicRoutes(v1)
	// 监控视图路由（需要 JWT 认证）
	r.setupMonitorRoutes(v1)
	// 健康检查路由
	r.setupHealthRoutes(api)

	logger.WithFields(map[string]interface{}{
		"path":      "router_manager.registerRoutes",
		"operation": "register_routes",
		"option":    "routes.attach.done",
		"func_name": "router.registerRoutes",
	}).Info("路由注册完成")
}

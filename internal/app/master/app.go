/**
 * 应用装配
 * @author: sun977
 * @date: 2025.09.05
 * @description: 加载配置、初始化日志与数据库、构建路由、启动配置监听
 * @func:
 *   - NewApp 按环境创建应用实例
 *   - Close 停止配置监听并释放数据库连接
 */
package master

import (
	"fmt"

	"neomonitor/internal/app/master/router"
	"neomonitor/internal/config"
	"neomonitor/internal/pkg/database"
	"neomonitor/internal/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App 应用程序结构体
type App struct {
	config      *config.Config
	db          *gorm.DB
	redisClient *redis.Client
	router      *router.Router
	watcher     *config.ConfigWatcher
}

// NewApp 创建新的应用程序实例
// configPath 为空时使用默认配置目录，env 为空时从环境变量读取
func NewApp(configPath, env string) (*App, error) {
	cfg, err := config.LoadConfig(configPath, env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if _, err := logger.InitLogger(&cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, err
	}

	app := &App{config: cfg, db: db}
	if cfg.View.ProfileStore == "redis" {
		app.redisClient, err = database.NewRedisConnection(&cfg.Database.Redis)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
	}

	app.router, err = router.NewRouter(db, app.redisClient, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.router.SetupRoutes()

	app.watcher, err = config.NewConfigWatcher(configPath, env)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.watcher.AddCallback(logger.ReloadCallback)
	for _, cb := range app.router.ReloadCallbacks() {
		app.watcher.AddCallback(cb)
	}
	if err := app.watcher.Start(); err != nil {
		// 配置监听失败不影响服务，只是失去热更新
		logger.LogSystemEvent("config", "watcher_start_failed", err.Error(), logrus.WarnLevel, nil)
		app.watcher = nil
	}

	logger.LogSystemEvent("app", "started", "Application initialized", logrus.InfoLevel, map[string]interface{}{
		"environment":   cfg.App.Environment,
		"db_driver":     cfg.Database.Driver,
		"profile_store": cfg.View.ProfileStore,
	})
	return app, nil
}

// GetConfig 获取配置
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetRouter 获取路由器实例
func (a *App) GetRouter() *router.Router {
	return a.router
}

// Close 停止配置监听并关闭数据库、Redis连接
func (a *App) Close() error {
	var result *multierror.Error
	if a.watcher != nil {
		if err := a.watcher.Stop(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	return result.ErrorOrNil()
}

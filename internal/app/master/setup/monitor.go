package setup

import (
	"fmt"

	"neomonitor/internal/config"
	monitorHandler "neomonitor/internal/handler/monitor"
	pkgDatabase "neomonitor/internal/pkg/database"
	"neomonitor/internal/pkg/listview"
	"neomonitor/internal/pkg/logger"
	"neomonitor/internal/repo/memory"
	monitorRepo "neomonitor/internal/repo/mysql/monitor"
	systemRepo "neomonitor/internal/repo/mysql/system"
	redisRepo "neomonitor/internal/repo/redis"
	monitorService "neomonitor/internal/service/monitor"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// BuildMonitorModule 构建监控视图模块
// redisClient 为 nil 且 view.profile_store 为 redis 时按 cfg.Database.Redis 建立连接
func BuildMonitorModule(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) (*MonitorModule, error) {
	logger.WithFields(map[string]interface{}{
		"path":          "internal.app.master.setup.monitor.BuildMonitorModule",
		"operation":     "setup",
		"option":        "setup.monitor.begin",
		"func_name":     "setup.monitor.BuildMonitorModule",
		"profile_store": cfg.View.ProfileStore,
	}).Info("开始构建监控视图模块")

	store, err := BuildProfileStore(db, redisClient, cfg)
	if err != nil {
		return nil, err
	}
	settings := monitorService.NewSettings(cfg)

	hostRepo := monitorRepo.NewHostRepository(db)
	proxyRepo := monitorRepo.NewProxyRepository(db)
	triggerRepo := monitorRepo.NewTriggerRepository(db)
	graphRepo := monitorRepo.NewGraphRepository(db)
	itemRepo := monitorRepo.NewItemRepository(db)
	actionRepo := monitorRepo.NewActionRepository(db)

	hostService := monitorService.NewHostService(hostRepo, proxyRepo, store, settings)
	templateService := monitorService.NewTemplateService(hostRepo, itemRepo, store, settings)
	proxyService := monitorService.NewProxyService(proxyRepo, store, settings)
	availabilityService := monitorService.NewAvailabilityService(triggerRepo, hostRepo, store, settings)
	graphService := monitorService.NewGraphService(graphRepo, hostRepo, store, settings)
	actionService := monitorService.NewActionService(actionRepo, hostRepo, proxyRepo, triggerRepo)
	topHostsService := monitorService.NewTopHostsService(hostRepo, itemRepo, settings)

	module := &MonitorModule{
		ListHandler:   monitorHandler.NewListHandler(hostService, templateService, proxyService, availabilityService, graphService),
		ConfigHandler: monitorHandler.NewConfigHandler(actionService, graphService, topHostsService),
		Settings:      settings,
		ProfileStore:  store,
	}

	logger.WithFields(map[string]interface{}{
		"path":      "internal.app.master.setup.monitor.BuildMonitorModule",
		"operation": "setup",
		"option":    "setup.monitor.done",
		"func_name": "setup.monitor.BuildMonitorModule",
	}).Info("监控视图模块构建完成")
	return module, nil
}

// BuildProfileStore 根据 view.profile_store 选择过滤条件存储
func BuildProfileStore(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) (listview.ProfileStore, error) {
	switch cfg.View.ProfileStore {
	case "memory":
		return memory.NewProfileRepository(), nil
	case "mysql":
		return systemRepo.NewProfileRepository(db), nil
	case "redis", "":
		if redisClient == nil {
			cli, err := pkgDatabase.NewRedisConnection(&cfg.Database.Redis)
			if err != nil {
				logger.WithFields(map[string]interface{}{
					"path":      "internal.app.master.setup.monitor.BuildProfileStore",
					"operation": "setup",
					"option":    "setup.monitor.profile.redis.connect_error",
					"func_name": "setup.monitor.BuildProfileStore",
					"error":     err.Error(),
				}).Error("Redis连接失败")
				return nil, err
			}
			redisClient = cli
		}
		return redisRepo.NewProfileRepository(redisClient, cfg.View.ProfileTTL), nil
	default:
		return nil, fmt.Errorf("unsupported profile store: %s", cfg.View.ProfileStore)
	}
}

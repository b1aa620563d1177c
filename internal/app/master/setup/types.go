/**
 * 初始化
 * @author: sun977
 * @date: 2025.11.05
 * @description: 包含master程序初始化相关的类型定义
 * @func: Handler 本身包含 Service,但是Service本身又重新暴露一遍,方便中间件与配置热更新使用
 */
package setup

import (
	authHandler "neomonitor/internal/handler/auth"
	monitorHandler "neomonitor/internal/handler/monitor"
	"neomonitor/internal/pkg/listview"
	authService "neomonitor/internal/service/auth"
	monitorService "neomonitor/internal/service/monitor"
)

// AuthModule 是认证模块的聚合输出
// setup 层只负责依赖装配(Handler → Service → Repository)，不侵入业务逻辑
type AuthModule struct {
	// Handlers
	LoginHandler *authHandler.LoginHandler

	// Services(中间件与迁移工具复用)
	SessionService *authService.SessionService
	UserService    *authService.UserService
}

// MonitorModule 是监控视图模块的聚合输出
//
// 字段说明:
// - ListHandler：主机/模板/代理/可用性报表/图形列表以及导出接口
// - ConfigHandler：动作、图形复制、主机排行组件
// - Settings：视图配置，注册到配置监听器以支持热更新
// - ProfileStore：当前使用的过滤条件存储
type MonitorModule struct {
	// Handlers
	ListHandler   *monitorHandler.ListHandler
	ConfigHandler *monitorHandler.ConfigHandler

	// Services
	Settings     *monitorService.Settings
	ProfileStore listview.ProfileStore
}

/**
 * 路由:监控视图路由
 * @author: sun977
 * @date: 2025.12.09
 * @description: 列表视图、导出、动作、图形复制、主机排行组件
 *   读接口对所有已认证用户开放，写接口要求管理员及以上
 * @func:
 */
package router

import (
	"github.com/gin-gonic/gin"
)
func (r *Router) setupMonitorRoutes(v1 *gin.RouterGroup) {
	lists := r.monitorModule.ListHandler
	configs := r.monitorModule.ConfigHandler

	monitor := v1.Group("/monitor")
	monitor.Use(r.middlewareManager.GinJWTAuthMiddleware())
	{
		monitor.GET("/hosts", lists.Hosts)
		monitor.GET("/templates", lists.Templates)
		monitor.GET("/templates/export", lists.ExportTemplates) // YAML
		monitor.GET("/proxies", lists.Proxies)
		monitor.GET("/graphs", lists.Graphs)
		monitor.GET("/availability", lists.Availability)
		monitor.GET("/availability/export", lists.ExportAvailability)
		monitor.POST("/actions/conditions/check", configs.CheckCondition)
		monitor.POST("/widgets/tophosts", configs.TopHosts)
	}

	editor := monitor.Group("")
	editor.Use(r.middlewareManager.GinEditorMiddleware())
	{
		editor.POST("/actions", configs.CreateAction)
		editor.PUT("/actions/:id", configs.UpdateAction)
		// 部分成功返回 207
		editor.POST("/graphs/copy", configs.CopyGraphs)
	}
}

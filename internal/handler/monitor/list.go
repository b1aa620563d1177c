/**
 * 监控处理器:列表视图
 * @author: sun977
 * @date: 2025.12.09
 * @description: 主机、模板、代理、可用性报表、图形五个列表接口以及两个导出接口
 *   列表接口统一为: 解析请求 -> 服务层规范化/查询/后处理/组装 -> 返回 ListResponse
 * @func:
 *   - Hosts / Templates / Proxies / Availability / Graphs 列表
 *   - ExportTemplates 模板导出为 YAML
 *   - ExportAvailability 可用性报表导出为 XLSX
 */
package monitor

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"neomonitor/internal/pkg/listview"
	"neomonitor/internal/pkg/logger"
	"neomonitor/internal/pkg/utils"
	monitorService "neomonitor/internal/service/monitor"
)

// ListHandler 列表视图处理器
type ListHandler struct {
	hostService         *monitorService.HostService
	templateService     *monitorService.TemplateService
	proxyService        *monitorService.ProxyService
	availabilityService *monitorService.AvailabilityService
	graphService        *monitorService.GraphService
}

// NewListHandler 创建列表视图处理器
func NewListHandler(
	hostService *monitorService.HostService,
	templateService *monitorService.TemplateService,
	proxyService *monitorService.ProxyService,
	availabilityService *monitorService.AvailabilityService,
	graphService *monitorService.GraphService,
) *ListHandler {
	return &ListHandler{
		hostService:         hostService,
		templateService:     templateService,
		proxyService:        proxyService,
		availabilityService: availabilityService,
		graphService:        graphService,
	}
}

// Hosts 主机列表
func (h *ListHandler) Hosts(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		respondBindError(c, err, "list_hosts")
		return
	}
	resp, err := h.hostService.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to list hosts", "list_hosts")
		return
	}
	respondOK(c, "Hosts retrieved successfully", resp)
}

// Templates 模板列表
func (h *ListHandler) Templates(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		respondBindError(c, err, "list_templates")
		return
	}
	resp, err := h.templateService.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to list templates", "list_templates")
		return
	}
	respondOK(c, "Templates retrieved successfully", resp)
}

// Proxies 代理列表
func (h *ListHandler) Proxies(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		respondBindError(c, err, "list_proxies")
		return
	}
	resp, err := h.proxyService.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to list proxies", "list_proxies")
		return
	}
	respondOK(c, "Proxies retrieved successfully", resp)
}

// Availability 可用性报表
func (h *ListHandler) Availability(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		respondBindError(c, err, "availability_report")
		return
	}
	resp, err := h.availabilityService.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to build availability report", "availability_report")
		return
	}
	respondOK(c, "Availability report retrieved successfully", resp)
}

// Graphs 图形列表
func (h *ListHandler) Graphs(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		respondBindError(c, err, "list_graphs")
		return
	}
	resp, err := h.graphService.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to list graphs", "list_graphs")
		return
	}
	respondOK(c, "Graphs retrieved successfully", resp)
}

// ExportTemplates 导出模板
// GET /templates/export?templateids[]=1&templateids[]=2
func (h *ListHandler) ExportTemplates(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	XRequestID := c.GetHeader("X-Request-ID")

	var ids []uint64
	listview.ParamsFromRequest(c.Request).IDs("templateids", &ids)

	out, err := h.templateService.Export(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err, "Failed to export templates", "export_templates")
		return
	}

	logger.LogBusinessOperation("export_templates", uint(utils.GetCurrentUserID(c)), "", clientIP, XRequestID, "success", "Templates exported successfully", map[string]interface{}{
		"func_name": "handler.monitor.list.ExportTemplates",
		"count":     len(ids),
	})
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="zbx_export_templates_%s.yaml"`, utils.GenerateShortID()))
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", out)
}

// ExportAvailability 导出可用性报表
func (h *ListHandler) ExportAvailability(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	XRequestID := c.GetHeader("X-Request-ID")

	req, err := bindListRequest(c)
	if err != nil {
		respondBindError(c, err, "export_availability")
		return
	}
	out, err := h.availabilityService.ExportXLSX(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to export availability report", "export_availability")
		return
	}

	logger.LogBusinessOperation("export_availability", uint(req.UserID), "", clientIP, XRequestID, "success", "Availability report exported successfully", map[string]interface{}{
		"func_name": "handler.monitor.list.ExportAvailability",
		"size":      len(out),
	})
	filename := fmt.Sprintf("availability_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", out)
}

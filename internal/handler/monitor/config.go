/**
 * 监控处理器:配置修改与组件
 * @author: sun977
 * @date: 2025.12.09
 * @description: 动作条件校验、动作创建/更新、图形批量复制、Top Hosts 组件
 * @func:
 *   - CheckCondition 校验动作条件
 *   - CreateAction / UpdateAction 创建/更新动作
 *   - CopyGraphs 批量复制图形: 全部成功 200，部分成功 207，全部失败 500
 *   - TopHosts 主机排行组件数据
 */
package monitor

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/logger"
	"neomonitor/internal/pkg/utils"
	monitorService "neomonitor/internal/service/monitor"
)

// ConfigHandler 配置修改处理器
type ConfigHandler struct {
	actionService   *monitorService.ActionService
	graphService    *monitorService.GraphService
	topHostsService *monitorService.TopHostsService
}

// NewConfigHandler 创建配置修改处理器
func NewConfigHandler(actionService *monitorService.ActionService, graphService *monitorService.GraphService, topHostsService *monitorService.TopHostsService) *ConfigHandler {
	return &ConfigHandler{
		actionService:   actionService,
		graphService:    graphService,
		topHostsService: topHostsService,
	}
}

// CheckCondition 校验动作条件
func (h *ConfigHandler) CheckCondition(c *gin.Context) {
	var req monitorModel.ConditionCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "check_condition")
		return
	}
	resp, err := h.actionService.CheckCondition(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Invalid condition", "check_condition")
		return
	}
	respondOK(c, "Condition is valid", resp)
}

// CreateAction 创建动作
func (h *ConfigHandler) CreateAction(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	XRequestID := c.GetHeader("X-Request-ID")
	actor := actorFromContext(c)

	var req monitorModel.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "create_action")
		return
	}
	action, err := h.actionService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err, "Failed to create action", "create_action")
		return
	}

	logger.LogAuditOperation(uint(actor.UserID), actor.Username, "create_action", "action:"+strconv.FormatUint(action.ID, 10), "success", clientIP, c.GetHeader("User-Agent"), XRequestID, map[string]interface{}{
		"name": action.Name,
	})
	c.JSON(http.StatusCreated, system.APIResponse{
		Code:    http.StatusCreated,
		Status:  "success",
		Message: "Action created successfully",
		Data:    action,
	})
}

// UpdateAction 更新动作
func (h *ConfigHandler) UpdateAction(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	XRequestID := c.GetHeader("X-Request-ID")
	actor := actorFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, system.NewFieldValidationError("actionid", "动作ID无效"), "Invalid ID", "update_action")
		return
	}
	var req monitorModel.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "update_action")
		return
	}
	action, err := h.actionService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err, "Failed to update action", "update_action")
		return
	}

	logger.LogAuditOperation(uint(actor.UserID), actor.Username, "update_action", "action:"+strconv.FormatUint(id, 10), "success", clientIP, c.GetHeader("User-Agent"), XRequestID, map[string]interface{}{
		"name": action.Name,
	})
	respondOK(c, "Action updated successfully", action)
}

// CopyGraphs 批量复制图形
func (h *ConfigHandler) CopyGraphs(c *gin.Context) {
	actor := actorFromContext(c)

	var req monitorModel.GraphCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "copy_graphs")
		return
	}
	result, err := h.graphService.Copy(c.Request.Context(), actor, &req)
	if err != nil && result == nil {
		respondError(c, err, "Failed to copy graphs", "copy_graphs")
		return
	}

	switch {
	case err == nil:
		respondOK(c, "Graphs copied", result)
	case result.Copied > 0:
		c.JSON(http.StatusMultiStatus, system.APIResponse{
			Code:    http.StatusMultiStatus,
			Status:  "partial",
			Message: "Graphs copied with errors",
			Data:    result,
			Errors:  result.Errors,
		})
	default:
		c.JSON(http.StatusInternalServerError, system.APIResponse{
			Code:    http.StatusInternalServerError,
			Status:  "failed",
			Message: "Cannot copy graph",
			Error:   err.Error(),
			Data:    result,
			Errors:  result.Errors,
		})
	}
}

// TopHosts 主机排行组件数据
func (h *ConfigHandler) TopHosts(c *gin.Context) {
	var req monitorModel.TopHostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "top_hosts")
		return
	}
	resp, err := h.topHostsService.Get(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to get top hosts", "top_hosts")
		return
	}
	respondOK(c, "Top hosts retrieved successfully", resp)
}

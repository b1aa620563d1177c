/**
 * 监控处理器:公共方法
 * @author: sun977
 * @date: 2025.12.09
 * @description: 当前用户提取、列表请求解析、错误到HTTP状态码的映射
 *   校验失败 400，权限不足 403，对象不存在 404，名称冲突 409，其他外部调用失败 500
 */
package monitor

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/listview"
	"neomonitor/internal/pkg/logger"
	"neomonitor/internal/pkg/utils"
	monitorService "neomonitor/internal/service/monitor"
)

// actorFromContext 从JWT中间件写入的上下文构造当前操作人
func actorFromContext(c *gin.Context) monitorService.Actor {
	actor := monitorService.Actor{UserID: utils.GetCurrentUserID(c)}
	if v, ok := c.Get("username"); ok {
		actor.Username, _ = v.(string)
	}
	if v, ok := c.Get("user_type"); ok {
		actor.UserType, _ = v.(system.UserType)
	}
	return actor
}

// bindListRequest 解析列表请求: 排序分页参数走 gin 绑定，其余参数交给规范化器
func bindListRequest(c *gin.Context) (monitorService.ListRequest, error) {
	var q listview.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return monitorService.ListRequest{}, err
	}
	return monitorService.ListRequest{
		UserID: utils.GetCurrentUserID(c),
		Params: listview.ParamsFromRequest(c.Request),
		Query:  q,
	}, nil
}

// errorStatus 错误对应的HTTP状态码
func errorStatus(err error) int {
	switch {
	case system.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, system.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, system.ErrUnauthorized), errors.Is(err, system.ErrTokenInvalid), errors.Is(err, system.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, system.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, system.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse 错误转换为统一响应体
func errorResponse(status int, message string, err error) system.APIResponse {
	resp := system.APIResponse{
		Code:    status,
		Status:  "failed",
		Message: message,
		Error:   err.Error(),
	}
	var ve *system.ValidationError
	var opErr *system.OperationError
	switch {
	case errors.As(err, &ve):
		resp.Errors = []system.ErrorDetail{{Field: ve.Field, Message: ve.Message}}
	case errors.As(err, &opErr):
		resp.Message = opErr.Title
		resp.Errors = opErr.Details
	}
	return resp
}

// respondError 记录并返回错误，所有错误都在这里终止
func respondError(c *gin.Context, err error, message, operation string) {
	status := errorStatus(err)
	fields := map[string]interface{}{
		"operation":   operation,
		"status_code": status,
		"user_agent":  c.GetHeader("User-Agent"),
	}
	if status >= http.StatusInternalServerError {
		logger.LogError(err, c.GetHeader("X-Request-ID"), uint(utils.GetCurrentUserID(c)), utils.GetClientIP(c), c.Request.URL.String(), c.Request.Method, fields)
	} else {
		logger.LogBusinessError(err, c.GetHeader("X-Request-ID"), uint(utils.GetCurrentUserID(c)), utils.GetClientIP(c), c.Request.URL.String(), c.Request.Method, fields)
	}
	c.JSON(status, errorResponse(status, message, err))
}

// respondBindError 请求体或参数绑定失败
func respondBindError(c *gin.Context, err error, operation string) {
	logger.LogBusinessError(err, c.GetHeader("X-Request-ID"), uint(utils.GetCurrentUserID(c)), utils.GetClientIP(c), c.Request.URL.String(), c.Request.Method, map[string]interface{}{
		"operation": operation,
		"option":    "bind",
	})
	c.JSON(http.StatusBadRequest, system.APIResponse{
		Code:    http.StatusBadRequest,
		Status:  "failed",
		Message: "Invalid request",
		Error:   err.Error(),
	})
}

// respondOK 成功响应
func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, system.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

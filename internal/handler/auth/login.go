package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/logger"
	"neomonitor/internal/pkg/utils"
	"neomonitor/internal/service/auth"
)

// LoginHandler 登录接口处理器
type LoginHandler struct {
	sessionService *auth.SessionService
}

// NewLoginHandler 创建登录处理器实例
func NewLoginHandler(sessionService *auth.SessionService) *LoginHandler {
	return &LoginHandler{
		sessionService: sessionService,
	}
}

// getErrorStatusCode 根据错误类型获取HTTP状态码
func (h *LoginHandler) getErrorStatusCode(err error) int {
	switch {
	case system.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, system.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, system.ErrUserDisabled):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// GinLogin Gin登录处理器
// @Router /api/v1/auth/login [post]
func (h *LoginHandler) GinLogin(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	XRequestID := c.GetHeader("X-Request-ID")
	pathUrl := c.Request.URL.String()

	var req system.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.LogBusinessError(err, XRequestID, 0, clientIP, pathUrl, "POST", map[string]interface{}{
			"operation": "login",
			"option":    "ShouldBindJSON",
			"func_name": "handler.auth.login.GinLogin",
		})
		c.JSON(http.StatusBadRequest, system.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "failed",
			Message: "invalid request body",
			Error:   err.Error(),
		})
		return
	}

	resp, err := h.sessionService.Login(c.Request.Context(), &req, clientIP, XRequestID)
	if err != nil {
		statusCode := h.getErrorStatusCode(err)
		c.JSON(statusCode, system.APIResponse{
			Code:    statusCode,
			Status:  "failed",
			Message: "login failed",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, system.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "login successful",
		Data:    resp,
	})
}

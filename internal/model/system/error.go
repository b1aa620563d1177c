/**
 * 模型:错误定义
 * @author: sun977
 * @date: 2025.08.29
 * @description: 系统错误常量和错误类型定义
 *   错误分为四类: 参数校验失败(ValidationError)、权限不足(ErrPermissionDenied)、
 *   外部调用失败(OperationError, 携带错误明细列表)、部分成功(由调用方以聚合错误返回)
 * @func: 错误常量、ValidationError、OperationError、ErrorDetail
 */
package system

import (
	"errors"
	"strings"
)

// 通用错误
var (
	// 认证错误
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserDisabled       = errors.New("用户已被禁用")
	ErrTokenInvalid       = errors.New("令牌无效")

	// 权限错误
	ErrPermissionDenied = errors.New("权限不足")
	ErrUnauthorized     = errors.New("未授权访问")

	// 数据错误
	ErrNotFound      = errors.New("对象不存在或无权访问")
	ErrAlreadyExists = errors.New("对象已存在")
)

// ErrorDetail 单条错误明细
type ErrorDetail struct {
	Field   string `json:"field,omitempty"` // 字段名(可选)
	Message string `json:"message"`         // 错误消息
}

// ValidationError 验证错误结构体
type ValidationError struct {
	Field   string `json:"field"`   // 字段名
	Message string `json:"message"` // 错误消息
}

// NewValidationError 创建验证错误
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		Message: message,
	}
}

// NewFieldValidationError 创建带字段名的验证错误
func NewFieldValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error 实现error接口
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// IsValidationError 检查是否为验证错误
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// OperationError 外部调用(仓库/存储)失败
// Title 为面向用户的标题(如 "无法创建动作")，Details 为收集到的明细，Err 为底层原因
type OperationError struct {
	Title   string
	Details []ErrorDetail
	Err     error
}

// NewOperationError 创建外部调用错误
func NewOperationError(title string, err error, details ...ErrorDetail) *OperationError {
	if len(details) == 0 && err != nil {
		details = []ErrorDetail{{Message: err.Error()}}
	}
	return &OperationError{Title: title, Details: details, Err: err}
}

// Error 实现error接口
func (e *OperationError) Error() string {
	msgs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		msgs = append(msgs, d.Message)
	}
	if len(msgs) == 0 {
		return e.Title
	}
	return e.Title + ": " + strings.Join(msgs, "; ")
}

// Unwrap 支持 errors.Is / errors.As
func (e *OperationError) Unwrap() error {
	return e.Err
}

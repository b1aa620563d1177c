/**
 * 模型:响应模型
 * @author: sun977
 * @date: 2025.08.29
 * @description: 统一的API响应结构
 * @func: APIResponse
 */
package system

// APIResponse 通用API响应结构
type APIResponse struct {
	Code    int           `json:"code,omitempty"`   // 响应状态码，可选
	Status  string        `json:"status"`           // 响应状态："success"、"failed" 或 "partial"
	Message string        `json:"message"`          // 响应消息
	Data    interface{}   `json:"data,omitempty"`   // 响应数据，可选
	Error   string        `json:"error,omitempty"`  // 错误信息，可选
	Errors  []ErrorDetail `json:"errors,omitempty"` // 错误明细列表，可选
}

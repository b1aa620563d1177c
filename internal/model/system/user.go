/**
 * 模型:用户模型
 * @author: sun977
 * @date: 2025.08.29
 * @description: 前端用户，权限只区分用户类型
 * @func: User 结构体及相关方法
 */
package system

import (
	"neomonitor/internal/model/basemodel"
)

// UserType 用户类型
type UserType int

const (
	UserTypeUser       UserType = 1 // 普通用户: 只读监控数据
	UserTypeAdmin      UserType = 2 // 管理员: 可修改配置(动作、图形等)
	UserTypeSuperAdmin UserType = 3 // 超级管理员
)

// UserStatus 用户状态枚举
type UserStatus int

const (
	UserStatusDisabled UserStatus = 0 // 禁用状态
	UserStatusEnabled  UserStatus = 1 // 启用状态
)

// User 用户模型
type User struct {
	basemodel.BaseModel

	Username string     `json:"username" gorm:"uniqueIndex;not null;size:100;comment:登录名"`
	Name     string     `json:"name" gorm:"size:100;comment:名"`
	Surname  string     `json:"surname" gorm:"size:100;comment:姓"`
	Password string     `json:"-" gorm:"not null;size:255;comment:密码哈希"`
	UserType UserType   `json:"user_type" gorm:"default:1;comment:用户类型:1-用户,2-管理员,3-超级管理员"`
	Status   UserStatus `json:"status" gorm:"not null;comment:用户状态:0-禁用,1-启用"`
}

// TableName 指定用户表名
func (User) TableName() string {
	return "users"
}

// CanEditConfiguration 是否允许修改监控配置
func (t UserType) CanEditConfiguration() bool {
	return t >= UserTypeAdmin
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=255"`
}

// LoginResponse 登录响应结构
type LoginResponse struct {
	User        *User  `json:"user"`         // 用户信息
	AccessToken string `json:"access_token"` // 访问令牌
	ExpiresIn   int64  `json:"expires_in"`   // 令牌过期时间（秒）
}

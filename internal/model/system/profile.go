package system

import "neomonitor/internal/model/basemodel"

// Profile 用户列表视图偏好(过滤条件、排序、分页)的持久化记录
// 每个 (user_id, view_id) 只有一条，内容为 JSON
type Profile struct {
	basemodel.BaseModel

	UserID uint64 `json:"user_id" gorm:"not null;uniqueIndex:uk_profile_user_view;comment:用户ID"`
	ViewID string `json:"view_id" gorm:"not null;size:64;uniqueIndex:uk_profile_user_view;comment:视图标识"`
	Data   string `json:"data" gorm:"type:text;comment:偏好内容(JSON)"`
}

// TableName 定义数据库表名
func (Profile) TableName() string {
	return "profiles"
}

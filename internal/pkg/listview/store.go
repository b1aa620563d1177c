/**
 * 列表视图:偏好存储接口
 * @author: sun977
 * @date: 2025.12.02
 * @description: 过滤条件/排序/分页按 (用户, 视图) 持久化，内容为 JSON，具体存储由 repo 层实现(redis/mysql/memory)
 */
package listview

import (
	"context"
	"fmt"
)

// ProfileKey 偏好存储键
type ProfileKey struct {
	UserID uint64
	ViewID string
}

// String 便于日志和缓存键拼接
func (k ProfileKey) String() string {
	return fmt.Sprintf("%d:%s", k.UserID, k.ViewID)
}

// ProfileStore 偏好存储
// Get 在记录不存在时返回 nil, nil；并发写入时后写覆盖先写
type ProfileStore interface {
	Get(ctx context.Context, key ProfileKey) ([]byte, error)
	Put(ctx context.Context, key ProfileKey, data []byte) error
	Delete(ctx context.Context, key ProfileKey) error
	// DeleteUser 清除用户在全部视图上的偏好
	DeleteUser(ctx context.Context, userID uint64) error
}

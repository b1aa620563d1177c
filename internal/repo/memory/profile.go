/**
 * 仓库层:视图偏好存储(内存)
 * @author: sun977
 * @date: 2025.12.03
 * @description: 视图偏好内存存储，适合单实例部署和测试(可在配置文件中配置,与 redis/mysql 三选一)
 * @func:单纯数据访问,不应该包含业务逻辑
 */
package memory

import (
	"context"
	"sync"

	"neomonitor/internal/pkg/listview"
)

// ProfileRepository 内存视图偏好存储库
type ProfileRepository struct {
	profiles map[listview.ProfileKey][]byte
	mutex    sync.RWMutex
}

// NewProfileRepository 创建内存视图偏好存储库实例
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{
		profiles: make(map[listview.ProfileKey][]byte),
	}
}

// Get 获取视图偏好，返回副本
func (r *ProfileRepository) Get(_ context.Context, key listview.ProfileKey) ([]byte, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	data, ok := r.profiles[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

// Put 保存视图偏好
func (r *ProfileRepository) Put(_ context.Context, key listview.ProfileKey, data []byte) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.profiles[key] = append([]byte(nil), data...)
	return nil
}

// Delete 删除视图偏好
func (r *ProfileRepository) Delete(_ context.Context, key listview.ProfileKey) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.profiles, key)
	return nil
}

// DeleteUser 删除用户的全部视图偏好
func (r *ProfileRepository) DeleteUser(_ context.Context, userID uint64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for key := range r.profiles {
		if key.UserID == userID {
			delete(r.profiles, key)
		}
	}
	return nil
}

// Len 当前保存的偏好数量
func (r *ProfileRepository) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.profiles)
}

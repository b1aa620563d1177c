/**
 * 仓库层:视图偏好存储(Redis)
 * @author: sun977
 * @date: 2025.12.03
 * @description: 过滤条件/排序/分页按 (用户, 视图) 存储在 Redis，适合多实例部署
 * @func:单纯数据访问,不应该包含业务逻辑
 */
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"neomonitor/internal/pkg/listview"

	"github.com/go-redis/redis/v8"
)

const profileKeyPrefix = "neomonitor:profile:"

// ProfileRepository Redis视图偏好存储库
type ProfileRepository struct {
	client *redis.Client
	ttl    time.Duration // 0 表示不过期
}

// NewProfileRepository 创建视图偏好存储库实例
func NewProfileRepository(client *redis.Client, ttl time.Duration) *ProfileRepository {
	return &ProfileRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get 获取视图偏好，不存在时返回 nil, nil
func (r *ProfileRepository) Get(ctx context.Context, key listview.ProfileKey) ([]byte, error) {
	data, err := r.client.Get(ctx, r.profileKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return data, nil
}

// Put 保存视图偏好，每次写入刷新过期时间
func (r *ProfileRepository) Put(ctx context.Context, key listview.ProfileKey, data []byte) error {
	if err := r.client.Set(ctx, r.profileKey(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store profile: %w", err)
	}
	return nil
}

// Delete 删除视图偏好，不存在时不报错
func (r *ProfileRepository) Delete(ctx context.Context, key listview.ProfileKey) error {
	if err := r.client.Del(ctx, r.profileKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

// DeleteUser 删除用户的全部视图偏好
func (r *ProfileRepository) DeleteUser(ctx context.Context, userID uint64) error {
	pattern := fmt.Sprintf("%s%d:*", profileKeyPrefix, userID)
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan profiles: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete profiles: %w", err)
	}
	return nil
}

// profileKey 生成键 [KEY:neomonitor:profile:{userID}:{viewID}]
func (r *ProfileRepository) profileKey(key listview.ProfileKey) string {
	return profileKeyPrefix + key.String()
}

/**
 * 系统仓库层:视图偏好数据访问
 * @author: sun977
 * @date: 2025.12.03
 * @description: 视图偏好持久化到 profiles 表，(user_id, view_id) 唯一，写入使用 upsert
 * @func:单纯数据访问,不应该包含业务逻辑
 */
package system

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/listview"
	"neomonitor/internal/pkg/logger"
)

// ProfileRepository 数据库视图偏好存储库
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建视图偏好存储库实例
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get 获取视图偏好，不存在时返回 nil, nil
func (r *ProfileRepository) Get(ctx context.Context, key listview.ProfileKey) ([]byte, error) {
	var profile system.Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND view_id = ?", key.UserID, key.ViewID).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.LogError(err, "", uint(key.UserID), "", "repo.profile.Get", "REPO", map[string]interface{}{
			"view_id": key.ViewID,
		})
		return nil, err
	}
	return []byte(profile.Data), nil
}

// Put 保存视图偏好，已存在时更新内容
func (r *ProfileRepository) Put(ctx context.Context, key listview.ProfileKey, data []byte) error {
	profile := &system.Profile{
		UserID: key.UserID,
		ViewID: key.ViewID,
		Data:   string(data),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "view_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		logger.LogError(err, "", uint(key.UserID), "", "repo.profile.Put", "REPO", map[string]interface{}{
			"view_id": key.ViewID,
		})
		return err
	}
	return nil
}

// Delete 删除视图偏好
func (r *ProfileRepository) Delete(ctx context.Context, key listview.ProfileKey) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND view_id = ?", key.UserID, key.ViewID).
		Delete(&system.Profile{}).Error
	if err != nil {
		logger.LogError(err, "", uint(key.UserID), "", "repo.profile.Delete", "REPO", map[string]interface{}{
			"view_id": key.ViewID,
		})
		return err
	}
	return nil
}

// DeleteUser 删除用户的全部视图偏好
func (r *ProfileRepository) DeleteUser(ctx context.Context, userID uint64) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&system.Profile{}).Error; err != nil {
		logger.LogError(err, "", uint(userID), "", "repo.profile.DeleteUser", "REPO", nil)
		return err
	}
	return nil
}

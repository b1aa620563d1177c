/**
 * 系统仓库层:用户数据访问
 * @author: sun977
 * @date: 2025.09.05
 * @description: 用户数据交互层
 * @func:单纯数据访问,不应该包含业务逻辑
 */
package system

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/logger"
)

// UserRepository 用户仓库
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库实例
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUserByUsername 根据用户名获取用户，不存在时返回 nil, nil
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*system.User, error) {
	var user system.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.LogError(err, "", 0, "", "repo.user.GetUserByUsername", "REPO", map[string]interface{}{
			"username": username,
		})
		return nil, err
	}
	return &user, nil
}

// GetUserByID 根据ID获取用户，不存在时返回 nil, nil
func (r *UserRepository) GetUserByID(ctx context.Context, userID uint64) (*system.User, error) {
	var user system.User
	err := r.db.WithContext(ctx).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.LogError(err, "", uint(userID), "", "repo.user.GetUserByID", "REPO", nil)
		return nil, err
	}
	return &user, nil
}

// CreateUser 创建用户
func (r *UserRepository) CreateUser(ctx context.Context, user *system.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		logger.LogError(err, "", 0, "", "repo.user.CreateUser", "REPO", map[string]interface{}{
			"username": user.Username,
		})
		return err
	}
	return nil
}

// UpdatePassword 更新用户密码哈希
func (r *UserRepository) UpdatePassword(ctx context.Context, userID uint64, passwordHash string) error {
	result := r.db.WithContext(ctx).Model(&system.User{}).Where("id = ?", userID).Update("password", passwordHash)
	if result.Error != nil {
		logger.LogError(result.Error, "", uint(userID), "", "repo.user.UpdatePassword", "REPO", nil)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return system.ErrNotFound
	}
	return nil
}

// SetStatus 更新用户状态
func (r *UserRepository) SetStatus(ctx context.Context, userID uint64, status system.UserStatus) error {
	result := r.db.WithContext(ctx).Model(&system.User{}).Where("id = ?", userID).Update("status", status)
	if result.Error != nil {
		logger.LogError(result.Error, "", uint(userID), "", "repo.user.SetStatus", "REPO", nil)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return system.ErrNotFound
	}
	return nil
}

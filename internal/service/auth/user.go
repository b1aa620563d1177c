/*
 * @author: sun977
 * @date: 2025.09.04
 * @description: 用户服务，供初始化命令创建账号
 */
package auth

import (
	"context"
	"fmt"

	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/auth"
	"neomonitor/internal/pkg/logger"
	systemrepo "neomonitor/internal/repo/mysql/system"
)

// UserService 用户服务
type UserService struct {
	userRepo        *systemrepo.UserRepository
	passwordManager *auth.PasswordManager
}

// NewUserService 创建用户服务实例
func NewUserService(userRepo *systemrepo.UserRepository, passwordManager *auth.PasswordManager) *UserService {
	return &UserService{
		userRepo:        userRepo,
		passwordManager: passwordManager,
	}
}

// EnsureUser 用户不存在时创建，已存在时返回现有用户且不修改密码
func (s *UserService) EnsureUser(ctx context.Context, username, password string, userType system.UserType) (*system.User, bool, error) {
	if username == "" {
		return nil, false, system.NewFieldValidationError("username", "用户名不能为空")
	}
	if userType < system.UserTypeUser || userType > system.UserTypeSuperAdmin {
		return nil, false, system.NewFieldValidationError("user_type", "用户类型无效")
	}

	existing, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	hash, err := s.passwordManager.HashPassword(password)
	if err != nil {
		return nil, false, system.NewFieldValidationError("password", err.Error())
	}
	user := &system.User{
		Username: username,
		Password: hash,
		UserType: userType,
		Status:   system.UserStatusEnabled,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	logger.LogBusinessOperation("create_user", uint(user.ID), user.Username, "", "", "success", "用户创建成功", map[string]interface{}{
		"user_type": user.UserType,
	})
	return user, true, nil
}

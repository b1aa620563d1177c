/*
 * @author: sun977
 * @date: 2025.09.04
 * @description: 会话管理服务
 * @func:
 * 1.登录
 * 2.校验访问令牌
 */
package auth

import (
	"context"
	"errors"
	"fmt"

	"neomonitor/internal/model/system"
	"neomonitor/internal/pkg/auth"
	"neomonitor/internal/pkg/logger"
	systemrepo "neomonitor/internal/repo/mysql/system"
)

// SessionService 会话管理服务
type SessionService struct {
	userRepo        *systemrepo.UserRepository
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewSessionService 创建会话服务实例
func NewSessionService(
	userRepo *systemrepo.UserRepository,
	passwordManager *auth.PasswordManager,
	jwtManager *auth.JWTManager,
) *SessionService {
	return &SessionService{
		userRepo:        userRepo,
		passwordManager: passwordManager,
		jwtManager:      jwtManager,
	}
}

// Login 用户登录
// 用户不存在与密码错误返回同一个错误，避免暴露用户名是否存在
func (s *SessionService) Login(ctx context.Context, req *system.LoginRequest, clientIP, requestID string) (*system.LoginResponse, error) {
	if req == nil {
		return nil, system.NewValidationError("登录请求不能为空")
	}
	if req.Username == "" {
		return nil, system.NewFieldValidationError("username", "用户名不能为空")
	}
	if req.Password == "" {
		return nil, system.NewFieldValidationError("password", "密码不能为空")
	}

	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		logger.LogBusinessError(errors.New("user not found"), requestID, 0, clientIP, "user_login", "POST", map[string]interface{}{
			"operation": "login",
			"username":  req.Username,
			"timestamp": logger.NowFormatted(),
		})
		return nil, system.ErrInvalidCredentials
	}

	isValid, err := s.passwordManager.VerifyPassword(req.Password, user.Password)
	if err != nil {
		logger.LogError(err, requestID, uint(user.ID), clientIP, "user_login", "POST", map[string]interface{}{
			"operation": "login",
			"username":  user.Username,
			"timestamp": logger.NowFormatted(),
		})
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !isValid {
		logger.LogBusinessError(errors.New("password is incorrect"), requestID, uint(user.ID), clientIP, "user_login", "POST", map[string]interface{}{
			"operation": "login",
			"username":  user.Username,
			"timestamp": logger.NowFormatted(),
		})
		return nil, system.ErrInvalidCredentials
	}

	// 密码正确之后再检查状态
	if user.Status != system.UserStatusEnabled {
		logger.LogBusinessError(errors.New("user account is disabled"), requestID, uint(user.ID), clientIP, "user_login", "POST", map[string]interface{}{
			"operation": "login",
			"username":  user.Username,
			"status":    user.Status,
			"timestamp": logger.NowFormatted(),
		})
		return nil, system.ErrUserDisabled
	}

	s.upgradePasswordHash(ctx, user, req.Password, clientIP, requestID)

	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, int(user.UserType))
	if err != nil {
		logger.LogError(err, requestID, uint(user.ID), clientIP, "user_login", "POST", map[string]interface{}{
			"operation": "login",
			"username":  user.Username,
			"timestamp": logger.NowFormatted(),
		})
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.LogBusinessOperation("user_login", uint(user.ID), user.Username, clientIP, requestID, "success", "用户登录成功", map[string]interface{}{
		"user_type": user.UserType,
		"timestamp": logger.NowFormatted(),
	})

	return &system.LoginResponse{
		User:        user,
		AccessToken: token,
		ExpiresIn:   int64(s.jwtManager.AccessTokenTTL().Seconds()),
	}, nil
}

// ValidateSession 校验访问令牌，并确认用户仍然存在且启用
// 用户类型以数据库为准，令牌签发后的权限变化立即生效
func (s *SessionService) ValidateSession(ctx context.Context, accessToken string) (*system.User, error) {
	if accessToken == "" {
		return nil, system.ErrUnauthorized
	}
	claims, err := s.jwtManager.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", system.ErrTokenInvalid, err)
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, system.ErrTokenInvalid
	}
	if user.Status != system.UserStatusEnabled {
		return nil, system.ErrUserDisabled
	}
	return user, nil
}

// upgradePasswordHash 导入的 bcrypt 或旧参数的哈希在登录成功后按当前参数重新生成，失败不影响登录
func (s *SessionService) upgradePasswordHash(ctx context.Context, user *system.User, password, clientIP, requestID string) {
	if !s.passwordManager.NeedsRehash(user.Password) {
		return
	}
	hash, err := s.passwordManager.HashPassword(password)
	if err == nil {
		err = s.userRepo.UpdatePassword(ctx, user.ID, hash)
	}
	if err != nil {
		logger.LogError(err, requestID, uint(user.ID), clientIP, "user_login", "POST", map[string]interface{}{
			"operation": "password_rehash",
			"username":  user.Username,
			"timestamp": logger.NowFormatted(),
		})
		return
	}
	user.Password = hash
	logger.LogBusinessOperation("password_rehash", uint(user.ID), user.Username, clientIP, requestID, "success", "密码哈希已升级", nil)
}

package setup

import (
	"neomonitor/internal/config"
	authHandler "neomonitor/internal/handler/auth"
	authPkg "neomonitor/internal/pkg/auth"
	"neomonitor/internal/pkg/logger"
	systemRepo "neomonitor/internal/repo/mysql/system"
	authService "neomonitor/internal/service/auth"

	"gorm.io/gorm"
)

// BuildAuthModule 构建认证模块（Auth）
// 责任边界：
// - 初始化认证相关的工具、仓库与服务（JWT、Password、Session、User）
// - 初始化登录处理器
//
// 参数说明：
// - db：数据库连接（gorm.DB），用于构建系统用户仓库
// - cfg：全局配置；用于初始化 JWT 参数
func BuildAuthModule(db *gorm.DB, cfg *config.Config) (*AuthModule, error) {
	logger.WithFields(map[string]interface{}{
		"path":      "internal.app.master.setup.auth.BuildAuthModule",
		"operation": "setup",
		"option":    "setup.auth.begin",
		"func_name": "setup.auth.BuildAuthModule",
	}).Info("开始构建认证模块")

	jwtCfg := cfg.Security.JWT
	jwtManager := authPkg.NewJWTManager(jwtCfg.Secret, jwtCfg.Issuer, jwtCfg.AccessTokenExpire)

	// 测试环境使用轻量参数，避免 argon2 拖慢用例
	passwordConfig := authPkg.DefaultPasswordConfig
	if cfg.App.IsTest() {
		passwordConfig = authPkg.LightPasswordConfig
	}
	passwordManager := authPkg.NewPasswordManager(passwordConfig)

	userRepo := systemRepo.NewUserRepository(db)
	sessionService := authService.NewSessionService(userRepo, passwordManager, jwtManager)
	userService := authService.NewUserService(userRepo, passwordManager)

	module := &AuthModule{
		LoginHandler:   authHandler.NewLoginHandler(sessionService),
		SessionService: sessionService,
		UserService:    userService,
	}

	logger.WithFields(map[string]interface{}{
		"path":      "internal.app.master.setup.auth.BuildAuthModule",
		"operation": "setup",
		"option":    "setup.auth.done",
		"func_name": "setup.auth.BuildAuthModule",
	}).Info("认证模块构建完成")

	return module, nil
}

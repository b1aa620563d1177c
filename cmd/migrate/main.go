/*
*
  - 数据库迁移工具
  - @author: Sun977
  - @date: 2025.10.15
  - @description: 数据库模型迁移、初始用户填充、重置用户密码
  - @usage:
    migrate migrate --env=test [--drop]     迁移表结构
    migrate seed --env=test                 创建初始用户 Admin / guest
    migrate passwd Admin <new-password>     重置用户密码
    migrate reset-views guest               清除用户保存的列表过滤条件
*/
package main

import (
	"context"
	"fmt"
	"os"

	"neomonitor/internal/app/master/setup"
	"neomonitor/internal/config"
	monitorModel "neomonitor/internal/model/monitor"
	"neomonitor/internal/model/system"
	authPkg "neomonitor/internal/pkg/auth"
	"neomonitor/internal/pkg/database"
	"neomonitor/internal/pkg/listview"
	"neomonitor/internal/pkg/logger"
	systemRepo "neomonitor/internal/repo/mysql/system"
	authService "neomonitor/internal/service/auth"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// MigrateOptions 迁移选项配置
type MigrateOptions struct {
	ConfigPath  string // 配置目录
	Environment string // 环境标识: test, development, production
	DropFirst   bool   // 是否先删除表（危险操作）
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &MigrateOptions{}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "NeoMonitor 数据库迁移工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "配置文件目录")
	root.PersistentFlags().StringVar(&opts.Environment, "env", "", "环境标识 (test, development, production)")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "迁移表结构",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDatabase(opts)
			if err != nil {
				return err
			}
			return performMigration(db, opts)
		},
	}
	migrateCmd.Flags().BoolVar(&opts.DropFirst, "drop", false, "先删除所有表（危险操作）")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "创建初始用户",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDatabase(opts)
			if err != nil {
				return err
			}
			return seedUsers(cmd.Context(), db)
		},
	}

	passwdCmd := &cobra.Command{
		Use:   "passwd <username> <password>",
		Short: "重置用户密码",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDatabase(opts)
			if err != nil {
				return err
			}
			return resetPassword(cmd.Context(), db, args[0], args[1])
		},
	}

	resetViewsCmd := &cobra.Command{
		Use:   "reset-views <username>",
		Short: "清除用户保存的列表过滤条件",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := openDatabase(opts)
			if err != nil {
				return err
			}
			store, err := setup.BuildProfileStore(db, nil, cfg)
			if err != nil {
				return err
			}
			return resetViews(cmd.Context(), db, store, args[0])
		},
	}

	root.AddCommand(migrateCmd, seedCmd, passwdCmd, resetViewsCmd)
	return root
}

// openDatabase 加载 .env 与配置，初始化日志并连接数据库
func openDatabase(opts *MigrateOptions) (*gorm.DB, *config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, fmt.Errorf("加载 .env 失败: %w", err)
	}
	cfg, err := config.LoadConfig(opts.ConfigPath, opts.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("配置加载失败: %w", err)
	}
	if _, err := logger.InitLogger(&cfg.Log); err != nil {
		return nil, nil, fmt.Errorf("日志初始化失败: %w", err)
	}
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	opts.Environment = cfg.App.Environment
	return db, cfg, nil
}

// allModels 需要迁移的全部模型
func allModels() []interface{} {
	return append([]interface{}{&system.User{}, &system.Profile{}}, monitorModel.Models()...)
}

// performMigration 执行迁移
func performMigration(db *gorm.DB, opts *MigrateOptions) error {
	logger.WithFields(logrus.Fields{
		"path":        "cmd/migrate/main.go",
		"operation":   "database_migration",
		"option":      "migrate.start",
		"func_name":   "performMigration",
		"environment": opts.Environment,
		"drop_first":  opts.DropFirst,
	}).Info("开始数据库迁移")

	if opts.DropFirst {
		if opts.Environment == "production" || opts.Environment == "prod" {
			return fmt.Errorf("生产环境禁止删除表")
		}
		if err := db.Migrator().DropTable(allModels()...); err != nil {
			return fmt.Errorf("删除表失败: %w", err)
		}
	}

	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("迁移表结构失败: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"path":      "cmd/migrate/main.go",
		"operation": "database_migration",
		"option":    "migrate.complete",
		"func_name": "performMigration",
		"models":    len(allModels()),
	}).Info("数据库迁移完成")
	return nil
}

// seedUsers 创建初始用户，已存在的用户保持不变
func seedUsers(ctx context.Context, db *gorm.DB) error {
	users := authService.NewUserService(systemRepo.NewUserRepository(db), authPkg.NewPasswordManager(authPkg.DefaultPasswordConfig))

	seeds := []struct {
		username string
		password string
		userType system.UserType
	}{
		{"Admin", "zabbix", system.UserTypeSuperAdmin},
		{"guest", "guest", system.UserTypeUser},
	}
	for _, s := range seeds {
		user, created, err := users.EnsureUser(ctx, s.username, s.password, s.userType)
		if err != nil {
			return fmt.Errorf("创建用户 %s 失败: %w", s.username, err)
		}
		logger.WithFields(logrus.Fields{
			"path":      "cmd/migrate/main.go",
			"operation": "seed",
			"func_name": "seedUsers",
			"user_id":   user.ID,
			"username":  user.Username,
			"created":   created,
		}).Info("初始用户就绪")
	}
	return nil
}

// resetPassword 重置用户密码
func resetPassword(ctx context.Context, db *gorm.DB, username, password string) error {
	if password == "" {
		return system.NewFieldValidationError("password", "密码不能为空")
	}
	repo := systemRepo.NewUserRepository(db)
	user, err := repo.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("用户 %s: %w", username, system.ErrNotFound)
	}
	hash, err := authPkg.NewPasswordManager(authPkg.DefaultPasswordConfig).HashPassword(password)
	if err != nil {
		return err
	}
	if err := repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"path":      "cmd/migrate/main.go",
		"operation": "passwd",
		"func_name": "resetPassword",
		"user_id":   user.ID,
	}).Info("用户密码已重置")
	return nil
}

// resetViews 清除用户在全部列表视图上保存的过滤条件、排序和分页
func resetViews(ctx context.Context, db *gorm.DB, store listview.ProfileStore, username string) error {
	user, err := systemRepo.NewUserRepository(db).GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("用户 %s: %w", username, system.ErrNotFound)
	}
	if err := store.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("清除视图偏好失败: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"path":      "cmd/migrate/main.go",
		"operation": "reset-views",
		"func_name": "resetViews",
		"user_id":   user.ID,
	}).Info("用户视图偏好已清除")
	return nil
}

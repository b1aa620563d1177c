package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置文件
// configPath: 配置文件目录，如果为空则使用默认路径
// env: 环境标识，支持 development, test, production
func LoadConfig(configPath, env string) (*Config, error) {
	// 设置默认环境
	if env == "" {
		env = getEnvFromEnvironment()
	}

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	// 根据环境选择配置文件
	configFile := getConfigFileName(configPath, env)
	v.SetConfigFile(configFile)

	// 设置环境变量前缀
	v.SetEnvPrefix("NEOMONITOR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvironmentVariables(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	GlobalConfig = &config
	return &config, nil
}

// LoadDotEnv 加载 .env 文件中的环境变量(文件不存在时忽略)
// 已存在的环境变量不会被覆盖
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// getEnvFromEnvironment 从环境变量获取环境标识
func getEnvFromEnvironment() string {
	env := os.Getenv("NEOMONITOR_ENV")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}
	if env == "" {
		env = "development" // 默认开发环境
	}
	return env
}

// getDefaultConfigPath 获取默认配置文件路径
func getDefaultConfigPath() string {
	if configPath := os.Getenv("NEOMONITOR_CONFIG_PATH"); configPath != "" {
		return configPath
	}
	return "configs"
}

// getConfigFileName 根据环境获取配置文件名
func getConfigFileName(configPath, env string) string {
	var configFile string

	switch env {
	case "production", "prod":
		configFile = filepath.Join(configPath, "config.prod.yaml")
	case "test", "testing":
		configFile = filepath.Join(configPath, "config.test.yaml")
	default:
		configFile = filepath.Join(configPath, "config.yaml")
	}

	// 检查文件是否存在，如果不存在则使用默认配置文件
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		defaultConfig := filepath.Join(configPath, "config.yaml")
		if _, err := os.Stat(defaultConfig); err == nil {
			return defaultConfig
		}
	}

	return configFile
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("view.search_limit", 1000)
	v.SetDefault("view.rows_per_page", 50)
	v.SetDefault("view.profile_store", "redis")
	v.SetDefault("view.report_period", 7*24*time.Hour)
	v.SetDefault("widget.top_hosts_max_lines", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
}

// bindEnvironmentVariables 绑定环境变量
func bindEnvironmentVariables(v *viper.Viper) {
	// 数据库配置
	v.BindEnv("database.driver", "NEOMONITOR_DB_DRIVER")
	v.BindEnv("database.mysql.host", "NEOMONITOR_MYSQL_HOST")
	v.BindEnv("database.mysql.port", "NEOMONITOR_MYSQL_PORT")
	v.BindEnv("database.mysql.username", "NEOMONITOR_MYSQL_USERNAME")
	v.BindEnv("database.mysql.password", "NEOMONITOR_MYSQL_PASSWORD")
	v.BindEnv("database.mysql.database", "NEOMONITOR_MYSQL_DATABASE")
	v.BindEnv("database.sqlite.path", "NEOMONITOR_SQLITE_PATH")

	v.BindEnv("database.redis.host", "NEOMONITOR_REDIS_HOST")
	v.BindEnv("database.redis.port", "NEOMONITOR_REDIS_PORT")
	v.BindEnv("database.redis.password", "NEOMONITOR_REDIS_PASSWORD")
	v.BindEnv("database.redis.database", "NEOMONITOR_REDIS_DATABASE")

	// JWT配置
	v.BindEnv("security.jwt.secret", "NEOMONITOR_JWT_SECRET")
	v.BindEnv("security.jwt.access_token_expire", "NEOMONITOR_JWT_ACCESS_TOKEN_EXPIRE")
	v.BindEnv("security.jwt.issuer", "NEOMONITOR_JWT_ISSUER")

	v.BindEnv("security.cors.allow_origins", "NEOMONITOR_CORS_ALLOW_ORIGINS")

	// 服务器配置
	v.BindEnv("server.host", "NEOMONITOR_SERVER_HOST")
	v.BindEnv("server.port", "NEOMONITOR_SERVER_PORT")
	v.BindEnv("server.mode", "NEOMONITOR_SERVER_MODE")

	// 视图配置
	v.BindEnv("view.search_limit", "NEOMONITOR_SEARCH_LIMIT")
	v.BindEnv("view.profile_store", "NEOMONITOR_PROFILE_STORE")

	v.BindEnv("app.environment", "NEOMONITOR_APP_ENVIRONMENT")
	v.BindEnv("app.debug", "NEOMONITOR_APP_DEBUG")
}

// validateConfig 验证配置
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if !contains([]string{"debug", "release", "test"}, config.Server.Mode) {
		return fmt.Errorf("invalid server mode: %s", config.Server.Mode)
	}

	// 验证数据库配置
	switch config.Database.Driver {
	case "mysql":
		if config.Database.MySQL.Host == "" {
			return fmt.Errorf("mysql host is required")
		}
		if config.Database.MySQL.Database == "" {
			return fmt.Errorf("mysql database name is required")
		}
	case "sqlite":
		if config.Database.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("invalid database driver: %s", config.Database.Driver)
	}

	if config.View.ProfileStore == "redis" && config.Database.Redis.Host == "" {
		return fmt.Errorf("redis host is required when profile_store is redis")
	}

	if config.Security.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if len(config.Security.JWT.Secret) < 32 {
		return fmt.Errorf("jwt secret must be at least 32 characters long")
	}

	// 验证日志配置
	if !contains([]string{"debug", "info", "warn", "error", "fatal", "panic"}, config.Log.Level) {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}
	if !contains([]string{"json", "text"}, config.Log.Format) {
		return fmt.Errorf("invalid log format: %s", config.Log.Format)
	}
	if !contains([]string{"stdout", "stderr", "file"}, config.Log.Output) {
		return fmt.Errorf("invalid log output: %s", config.Log.Output)
	}
	if config.Log.Output == "file" && config.Log.FilePath == "" {
		return fmt.Errorf("log file path is required when output is file")
	}

	// 验证视图配置
	if !contains([]string{"redis", "mysql", "memory"}, config.View.ProfileStore) {
		return fmt.Errorf("invalid profile store: %s", config.View.ProfileStore)
	}
	if config.View.SearchLimit <= 0 {
		return fmt.Errorf("view.search_limit must be positive")
	}
	if config.View.RowsPerPage <= 0 {
		return fmt.Errorf("view.rows_per_page must be positive")
	}

	return nil
}

// contains 检查切片是否包含指定元素
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	return GlobalConfig
}

// MustLoadConfig 加载配置，如果失败则panic
func MustLoadConfig(configPath, env string) *Config {
	config, err := LoadConfig(configPath, env)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	return config
}

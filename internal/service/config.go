package service

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm/logger"

	"familygraph_go/internal/repository"
)

// ServerConfig 服务器配置
type ServerConfig struct {
	Port      string // 监听端口
	JWTSecret string // JWT密钥
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string // 地址
	Password string // 密码
	DB       int    // 库编号
}

// AppConfig 应用配置，全部来自环境变量（.env由main加载）
type AppConfig struct {
	Server   ServerConfig
	Database repository.DBConfig
	Redis    RedisConfig
	Log      LoggerConfig
}

// LoadConfig 从环境变量加载应用配置
func LoadConfig() (*AppConfig, error) {
	config := &AppConfig{
		Server: ServerConfig{
			Port:      envOr("PORT", "8080"),
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Database: repository.DBConfig{
			Type:         envOr("DB_TYPE", "postgres"),
			Host:         envOr("DB_HOST", "localhost"),
			Port:         envInt("DB_PORT", 5432),
			Username:     os.Getenv("DB_USER"),
			Password:     os.Getenv("DB_PASSWORD"),
			Database:     envOr("DB_NAME", "familygraph"),
			MaxIdleConns: envInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 100),
			MaxLifetime:  envDuration("DB_MAX_LIFETIME", time.Hour),
			LogLevel:     logger.Warn,
		},
		Redis: RedisConfig{
			Addr:     envOr("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		Log: LoggerConfig{
			Level:  LogLevel(envOr("LOG_LEVEL", string(LogLevelInfo))),
			Format: LogFormat(envOr("LOG_FORMAT", string(LogFormatText))),
		},
	}

	if config.Server.JWTSecret == "" {
		return nil, NewError(ErrConfig, "JWT_SECRET is required", nil)
	}
	return config, nil
}

// envOr 读取环境变量，缺省时返回备用值
func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// envInt 读取整型环境变量
func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		fmt.Printf("Invalid value for %s, using default %d\n", key, fallback)
		return fallback
	}
	return parsed
}

// envDuration 读取时长环境变量
func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		fmt.Printf("Invalid value for %s, using default %v\n", key, fallback)
		return fallback
	}
	return parsed
}

package repository

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"familygraph_go/internal/model"
)

// DBConfig 数据库配置
type DBConfig struct {
	Type         string          // 数据库类型：mysql, postgres, sqlite
	Host         string          // 主机地址
	Port         int             // 端口
	Username     string          // 用户名
	Password     string          // 密码
	Database     string          // 数据库名
	MaxIdleConns int             // 最大空闲连接数
	MaxOpenConns int             // 最大打开连接数
	MaxLifetime  time.Duration   // 连接最大生命周期
	LogLevel     logger.LogLevel // 日志级别
}

// DB 数据库连接实例
type DB struct {
	*gorm.DB
}

// InitDB 初始化数据库连接
func InitDB(config *DBConfig) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(config.LogLevel),
	}

	// 连接数据库
	var gormDB *gorm.DB
	var err error
	switch config.Type {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			config.Username, config.Password, config.Host, config.Port, config.Database)
		gormDB, err = gorm.Open(mysql.Open(dsn), gormConfig)
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			config.Host, config.Port, config.Username, config.Password, config.Database)
		gormDB, err = gorm.Open(postgres.Open(dsn), gormConfig)
	case "sqlite":
		gormDB, err = gorm.Open(sqlite.Open(config.Database), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	// 配置连接池
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %v", err)
	}
	if config.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(config.MaxLifetime)
	}

	// 自动迁移数据库表
	err = gormDB.AutoMigrate(
		&model.Member{},
		&model.User{},
		&model.ActivityRecord{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	return &DB{gormDB}, nil
}

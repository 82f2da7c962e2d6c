package gormdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hexagonal/config"
	"hexagonal/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 10
	DefaultConnMaxLifetime = 10 * time.Minute
	DefaultConnMaxIdleTime = 5 * time.Minute
)

// Config 数据库连接配置，支持 mysql / postgres / sqlite
type Config struct {
	Type            string        `mapstructure:"type" json:"type"`
	Host            string        `mapstructure:"host" json:"host"`
	Port            string        `mapstructure:"port" json:"port"`
	Username        string        `mapstructure:"username" json:"username"`
	Password        string        `mapstructure:"password" json:"password"`
	Database        string        `mapstructure:"database" json:"database"` // sqlite: 文件路径或 file::memory:
	SSLMode         string        `mapstructure:"ssl_mode" json:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" json:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level" json:"log_level"`
}

// ConfigFrom 从应用配置构建连接配置
func ConfigFrom(cfg *config.Config) *Config {
	return &Config{
		Type:            cfg.Database.Type,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Log.Level,
	}
}

// DSN 按数据库类型生成连接串
func (c *Config) DSN() string {
	switch c.Type {
	case "postgres":
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			c.Host, c.Port, c.Username, c.Password, c.Database, sslMode)
	case "sqlite":
		return c.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=Local&charset=utf8mb4&collation=utf8mb4_unicode_ci&readTimeout=10s&writeTimeout=10s",
			c.Username, c.Password, c.Host, c.Port, c.Database)
	}
}

func (c *Config) dialector() (gorm.Dialector, error) {
	switch c.Type {
	case "", "mysql":
		return mysql.Open(c.DSN()), nil
	case "postgres":
		return postgres.Open(c.DSN()), nil
	case "sqlite":
		return sqlite.Open(c.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", c.Type)
	}
}

func (c *Config) parseLogLevel() gormlogger.LogLevel {
	switch c.LogLevel {
	case "debug", "info":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	case "silent":
		return gormlogger.Silent
	default:
		return gormlogger.Warn
	}
}

func (c *Config) applyDefaults() {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = DefaultMaxOpenConns
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = DefaultMaxIdleConns
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = DefaultConnMaxLifetime
	}
	if c.ConnMaxIdleTime <= 0 {
		c.ConnMaxIdleTime = DefaultConnMaxIdleTime
	}
	// sqlite 只允许一个写连接
	if c.Type == "sqlite" {
		c.MaxOpenConns = 1
		c.MaxIdleConns = 1
		// 内存库随连接关闭而消失
		if strings.Contains(c.Database, ":memory:") {
			c.ConnMaxLifetime = 0
			c.ConnMaxIdleTime = 0
		}
	}
}

// Connect 打开连接池
// TranslateError 打开后唯一键冲突会返回 gorm.ErrDuplicatedKey，与具体方言无关
func (c *Config) Connect() (*gorm.DB, error) {
	c.applyDefaults()
	dialector, err := c.dialector()
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		Logger:         logger.NewGormLoggerAdapter(c.parseLogLevel()),
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(c.ConnMaxIdleTime)

	logger.Info("Database connected",
		zap.String("type", c.Type),
		zap.String("host", c.Host),
		zap.String("database", c.Database),
		zap.Int("max_open_conns", c.MaxOpenConns),
		zap.Int("max_idle_conns", c.MaxIdleConns),
		zap.Duration("conn_max_lifetime", c.ConnMaxLifetime),
	)

	return db, nil
}

// Ping 检查连接可用
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

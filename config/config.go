package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config Application Configuration
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Identifiers IdentifiersConfig `mapstructure:"identifiers"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Worker      WorkerConfig      `mapstructure:"worker"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Log         LogConfig         `mapstructure:"log"`
	CORS        CORSConfig        `mapstructure:"cors"`
}

// AppConfig Application Configuration
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"` // development, staging, production
}

// ServerConfig Server Configuration
type ServerConfig struct {
	Port            string          `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig Rate Limiting Configuration
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Rate    float64 `mapstructure:"rate"`  // Requests per second
	Burst   int     `mapstructure:"burst"` // Burst capacity
}

// DatabaseConfig Database Configuration
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"` // mysql, postgres, sqlite
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"` // sqlite: file path
	SSLMode         string        `mapstructure:"ssl_mode"` // postgres only
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	Retry           RetryConfig   `mapstructure:"retry"`
}

// RetryConfig Retry configuration for optimistic concurrency control
type RetryConfig struct {
	Enabled                       bool          `mapstructure:"enabled"`
	MaxAttempts                   int           `mapstructure:"max_attempts"`
	InitialDelay                  time.Duration `mapstructure:"initial_delay"`
	MaxDelay                      time.Duration `mapstructure:"max_delay"`
	BackoffFactor                 float64       `mapstructure:"backoff_factor"`
	JitterEnabled                 bool          `mapstructure:"jitter_enabled"`
	RetryOnConcurrentModification bool          `mapstructure:"retry_on_concurrent_modification"`
	RetryOnDeadlock               bool          `mapstructure:"retry_on_deadlock"`
	RetryOnLockTimeout            bool          `mapstructure:"retry_on_lock_timeout"`
}

// IdentifiersConfig 标识符生成策略，每种数值型标识符一个序列
type IdentifiersConfig struct {
	User SequenceConfig `mapstructure:"user"`
}

// SequenceConfig 序列配置
type SequenceConfig struct {
	Backend string `mapstructure:"backend"` // memory, table, pgx, redis
	Name    string `mapstructure:"name"`
	Start   int64  `mapstructure:"start"`
	Step    int64  `mapstructure:"step"`
}

// RedisConfig Redis Configuration (sequence backend)
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// WorkerConfig Outbox relay worker configuration
type WorkerConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// MetricsConfig Prometheus configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig Log Configuration
type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`
}

// CORSConfig CORS Configuration
type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// IsDevelopment Whether it's development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction Whether it's production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Load Load Configuration
// 优先级：环境变量（HEX_ 前缀，如 HEX_DATABASE_TYPE）> 配置文件 > 默认值
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("HEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Use default values when config file doesn't exist
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate 校验无法靠默认值修正的配置
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	switch c.Identifiers.User.Backend {
	case "memory", "redis":
	case "table":
		// 表序列在独立事务中分配号段，sqlite 只有一个连接
		if c.Database.Type == "sqlite" {
			return fmt.Errorf("sequence backend table needs a second connection, not available on sqlite")
		}
	case "pgx":
		if c.Database.Type != "postgres" {
			return fmt.Errorf("sequence backend pgx requires database type postgres, got %q", c.Database.Type)
		}
	default:
		return fmt.Errorf("unsupported sequence backend %q", c.Identifiers.User.Backend)
	}
	if c.Identifiers.User.Step < 1 {
		return fmt.Errorf("sequence step must be positive, got %d", c.Identifiers.User.Step)
	}
	return nil
}

// setDefaults Set default configuration
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "hexagonal")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.env", "development")

	// Server
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.rate", 100)
	v.SetDefault("server.rate_limit.burst", 200)

	// Database
	v.SetDefault("database.type", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "hexagonal")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.auto_migrate", true)

	// Retry configuration defaults
	v.SetDefault("database.retry.enabled", true)
	v.SetDefault("database.retry.max_attempts", 3)
	v.SetDefault("database.retry.initial_delay", "100ms")
	v.SetDefault("database.retry.max_delay", "2s")
	v.SetDefault("database.retry.backoff_factor", 2.0)
	v.SetDefault("database.retry.jitter_enabled", true)
	v.SetDefault("database.retry.retry_on_concurrent_modification", true)
	v.SetDefault("database.retry.retry_on_deadlock", true)
	v.SetDefault("database.retry.retry_on_lock_timeout", true)

	// Identifiers
	v.SetDefault("identifiers.user.backend", "table")
	v.SetDefault("identifiers.user.name", "user_id_seq")
	v.SetDefault("identifiers.user.start", 1)
	v.SetDefault("identifiers.user.step", 50)

	// Redis
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "hexagonal:seq:")
	v.SetDefault("redis.dial_timeout", "5s")

	// Worker
	v.SetDefault("worker.poll_interval", "5s")
	v.SetDefault("worker.batch_size", 100)
	v.SetDefault("worker.max_retries", 5)

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/app.log")

	// CORS
	v.SetDefault("cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allow_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allow_headers", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 86400)
}

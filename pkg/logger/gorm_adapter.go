/*
Package logger 提供 GORM 到 Zap 的日志适配。
*/
package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hexagonal/infrastructure/persistence"

	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

type GormLoggerConfig struct {
	SlowThreshold             time.Duration
	IgnoreRecordNotFoundError bool
	AddCaller                 bool
}

// DefaultGormLoggerConfig 仓储里 Take/First 未命中是正常分支，默认不记错误
func DefaultGormLoggerConfig() *GormLoggerConfig {
	return &GormLoggerConfig{
		SlowThreshold:             200 * time.Millisecond,
		IgnoreRecordNotFoundError: true,
		AddCaller:                 true,
	}
}

// GormLoggerAdapter 实现 gorm logger.Interface
// 未显式指定 zap logger 时，每次输出都读取当前的包级 logger，因此可以在 Init 之前创建
type GormLoggerAdapter struct {
	logLevel logger.LogLevel
	logger   *zap.Logger
	config   *GormLoggerConfig
}

func NewGormLoggerAdapter(logLevel logger.LogLevel) *GormLoggerAdapter {
	return NewGormLoggerAdapterWithConfig(logLevel, DefaultGormLoggerConfig())
}

func NewGormLoggerAdapterWithConfig(logLevel logger.LogLevel, config *GormLoggerConfig) *GormLoggerAdapter {
	if config == nil {
		config = DefaultGormLoggerConfig()
	}
	return &GormLoggerAdapter{logLevel: logLevel, config: config}
}

// WithLogger 固定使用指定的 zap logger
func (l *GormLoggerAdapter) WithLogger(z *zap.Logger) *GormLoggerAdapter {
	return &GormLoggerAdapter{logLevel: l.logLevel, logger: z, config: l.config}
}

func (l *GormLoggerAdapter) LogMode(logLevel logger.LogLevel) logger.Interface {
	return &GormLoggerAdapter{logLevel: logLevel, logger: l.logger, config: l.config}
}

func (l *GormLoggerAdapter) loggerFor(ctx context.Context) *zap.Logger {
	z := l.logger
	if z == nil {
		z = base()
	}
	z = z.Named("gorm")
	if requestID := persistence.RequestIDFromContext(ctx); requestID != "" {
		z = z.With(zap.String("request_id", requestID))
	}
	if l.config.AddCaller {
		z = z.WithOptions(zap.AddCaller())
	}
	return z
}

func (l *GormLoggerAdapter) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.logLevel >= logger.Info {
		l.loggerFor(ctx).Info(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLoggerAdapter) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.loggerFor(ctx).Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLoggerAdapter) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.logLevel >= logger.Error {
		l.loggerFor(ctx).Error(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}

	sql, rows := fc()
	elapsed := time.Since(begin)
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	}
	log := l.loggerFor(ctx)

	switch {
	case err != nil && l.logLevel >= logger.Error:
		if errors.Is(err, logger.ErrRecordNotFound) && l.config.IgnoreRecordNotFoundError {
			return
		}
		log.Error("Database operation failed", append(fields, zap.Error(err))...)
	case l.config.SlowThreshold != 0 && elapsed > l.config.SlowThreshold && l.logLevel >= logger.Warn:
		log.Warn("Slow SQL query", append(fields, zap.String("type", "slow_query"))...)
	case l.logLevel >= logger.Info:
		log.Info("SQL query executed", fields...)
	}
}

var _ logger.Interface = (*GormLoggerAdapter)(nil)

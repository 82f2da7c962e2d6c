/*
Package logger 提供项目统一日志能力。

包级 logger 在 Init 之前为 nil，此时所有输出函数都是空操作；
持久化适配层（Store / UnitOfWork / 序列 / outbox）统一通过这里输出。
*/
package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hexagonal/config"
	"hexagonal/infrastructure/persistence"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	log       *zap.Logger
	atomLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init 根据配置构建包级 logger
// output=file 时通过 lumberjack 滚动切分
func Init(cfg *config.LogConfig, env string) error {
	atomLevel = zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	switch {
	case cfg.Format == "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case cfg.Format == "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case env == "dev" || env == "development" || atomLevel.Level() == zapcore.DebugLevel:
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	var writeSyncer zapcore.WriteSyncer
	switch cfg.Output {
	case "file":
		if cfg.FilePath == "" {
			return fmt.Errorf("log output file requires file_path")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		writeSyncer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     7,
			Compress:   true,
		})
	default:
		writeSyncer = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder, writeSyncer, atomLevel)
	log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

// SetLogger 替换包级 logger，返回恢复函数（测试中配合 zaptest/observer 使用）
func SetLogger(l *zap.Logger) (restore func()) {
	previous := log
	log = l
	return func() { log = previous }
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Get 未初始化时返回 nil
func Get() *zap.Logger { return log }

func UpdateLevel(level string) {
	atomLevel.SetLevel(parseLevel(level))
}

func Sync() error {
	if log == nil {
		return nil
	}
	if err := log.Sync(); err != nil {
		errStr := err.Error()
		if !strings.Contains(errStr, "inappropriate ioctl for device") &&
			!strings.Contains(errStr, "invalid argument") &&
			!strings.Contains(errStr, "bad file descriptor") {
			return err
		}
	}
	return nil
}

func base() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

func With(fields ...zap.Field) *zap.Logger {
	return base().With(fields...)
}

// Named 组件级 logger，例如 Named("outbox")
func Named(component string) *zap.Logger {
	return base().Named(component)
}

func WithRequestID(requestID string) *zap.Logger {
	return base().With(zap.String("request_id", requestID))
}

// Ctx 带上 context 中的 request_id
func Ctx(ctx context.Context) *zap.Logger {
	if requestID := persistence.RequestIDFromContext(ctx); requestID != "" {
		return WithRequestID(requestID)
	}
	return base()
}

func Debug(msg string, fields ...zap.Field) {
	if log != nil {
		log.Debug(msg, fields...)
	}
}

func Info(msg string, fields ...zap.Field) {
	if log != nil {
		log.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...zap.Field) {
	if log != nil {
		log.Warn(msg, fields...)
	}
}

func Error(msg string, fields ...zap.Field) {
	if log != nil {
		log.Error(msg, fields...)
	}
}

func Fatal(msg string, fields ...zap.Field) {
	if log != nil {
		log.Fatal(msg, fields...)
	}
}

package cmd

import (
	"context"
	"fmt"

	"hexagonal/config"
	"hexagonal/domain/user"
	"hexagonal/infrastructure/persistence/gormdb"
	"hexagonal/infrastructure/persistence/gormdb/po"
	"hexagonal/infrastructure/persistence/idgen"
	"hexagonal/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infrastructure 服务进程和 worker 进程共用的外部连接
// Pool 只在 postgres + pgx 序列时打开，Redis 只在 redis 序列时打开
type Infrastructure struct {
	DB    *gorm.DB
	Pool  *pgxpool.Pool
	Redis *redis.Client
}

// OpenInfrastructure 按配置打开数据库及序列后端
func OpenInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	db, err := gormdb.ConfigFrom(cfg).Connect()
	if err != nil {
		return nil, err
	}
	if err := gormdb.Ping(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	infra := &Infrastructure{DB: db}

	if cfg.Database.AutoMigrate {
		if err := gormdb.AutoMigrate(db); err != nil {
			infra.Close()
			return nil, fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	switch cfg.Identifiers.User.Backend {
	case "pgx":
		pool, err := pgxpool.New(ctx, gormdb.ConfigFrom(cfg).DSN())
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("failed to open pgx pool: %w", err)
		}
		infra.Pool = pool
		seq := cfg.Identifiers.User
		if err := idgen.EnsurePgxSequence(ctx, pool, seq.Name, seq.Start, seq.Step); err != nil {
			infra.Close()
			return nil, err
		}
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			infra.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		infra.Redis = rdb
	}

	return infra, nil
}

// UserIDGenerator 用户标识符来自配置的序列
func (i *Infrastructure) UserIDGenerator(cfg *config.Config) (idgen.Generator[user.ID], error) {
	b := idgen.Backends{DB: i.DB, Pool: i.Pool}
	// ⚠️ 注意：nil *redis.Client 放进接口后不再是 nil
	if i.Redis != nil {
		b.Redis = i.Redis
	}
	seq, err := idgen.NewSequence(idgen.SequenceConfigFrom(cfg.Identifiers.User, cfg.Redis), b)
	if err != nil {
		return nil, err
	}
	logger.Info("User identifier sequence ready",
		zap.String("backend", cfg.Identifiers.User.Backend),
		zap.String("name", seq.Name()),
	)
	gen := idgen.NewSequenceGenerator(seq, po.UserIDCodec.FromStorage)
	return idgen.Instrument[user.ID](gen, user.AggregateKind), nil
}

// Close 关闭所有已打开的连接
func (i *Infrastructure) Close() {
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	if i.Pool != nil {
		i.Pool.Close()
	}
	if i.DB != nil {
		if sqlDB, err := i.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("Failed to close database", zap.Error(err))
			}
		}
	}
}

package idgen

import (
	"fmt"

	"hexagonal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SequenceConfig selects and parameterises one sequence backend.
type SequenceConfig struct {
	Backend   string // memory, table, pgx, redis
	Name      string
	Start     int64
	Step      int64
	KeyPrefix string // redis only
}

func SequenceConfigFrom(seq config.SequenceConfig, redisCfg config.RedisConfig) SequenceConfig {
	return SequenceConfig{
		Backend:   seq.Backend,
		Name:      seq.Name,
		Start:     seq.Start,
		Step:      seq.Step,
		KeyPrefix: redisCfg.KeyPrefix,
	}
}

// Backends are the connections a sequence may run on; only the one the
// configured backend needs must be set.
type Backends struct {
	DB    *gorm.DB
	Pool  *pgxpool.Pool
	Redis redis.Cmdable
}

// NewSequence builds the configured sequence.
func NewSequence(cfg SequenceConfig, b Backends) (Sequence, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("sequence name is required")
	}
	switch cfg.Backend {
	case "memory":
		return NewMemorySequence(cfg.Name, cfg.Start, cfg.Step), nil
	case "table":
		if b.DB == nil {
			return nil, fmt.Errorf("sequence %s: table backend requires a database", cfg.Name)
		}
		return NewTableSequence(b.DB, cfg.Name, cfg.Start, cfg.Step), nil
	case "pgx":
		if b.Pool == nil {
			return nil, fmt.Errorf("sequence %s: pgx backend requires a postgres pool", cfg.Name)
		}
		return NewPgxSequence(b.Pool, cfg.Name), nil
	case "redis":
		if b.Redis == nil {
			return nil, fmt.Errorf("sequence %s: redis backend requires a redis client", cfg.Name)
		}
		return NewRedisSequence(b.Redis, cfg.KeyPrefix, cfg.Name, cfg.Start, cfg.Step), nil
	default:
		return nil, fmt.Errorf("unknown sequence backend %q", cfg.Backend)
	}
}

package gormdb

import (
	"context"
	"errors"
	"fmt"

	"hexagonal/domain/shared"
	"hexagonal/infrastructure/persistence"
	"hexagonal/infrastructure/persistence/idgen"
	"hexagonal/pkg/logger"
	"hexagonal/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Persistable 可由 Store 保存的聚合根
// BaseAggregateRoot[ID] 的指针已经满足这些方法
type Persistable[ID shared.DomainObjectID] interface {
	shared.AggregateRoot
	Identifier() (ID, error)
	AssignIdentifier(id ID) error
	RecordVersion(version int64)
}

// Mapper 聚合根与持久化对象之间的转换
type Mapper[A Persistable[ID], ID shared.DomainObjectID, R any] interface {
	// ToRow 构建待写入的行；id 与 version 由 Store 给出，聚合根本身此时可能仍是瞬态
	ToRow(aggregate A, id ID, version int64) (*R, error)
	FromRow(row *R) (A, error)
	// RowKey 标识符在主键列中的原始值
	RowKey(id ID) (any, error)
}

// Store 一种聚合根的通用 GORM 存储
//
// 保存协议：
//   - Version() 不存在 → INSERT。已有标识符直接使用；否则调用一次 generator。
//     行写入成功后才 AssignIdentifier + RecordVersion(0)，写入失败时实体保持瞬态
//   - Version() 存在 → UPDATE ... WHERE id = ? AND version = ?，影响 0 行即乐观锁冲突
//
// ⚠️ 注意：标识符在行写入后立即分配。外层事务随后回滚时，实体仍然持有该标识符和版本号，
// 调用方应丢弃该实例并重新加载（UnitOfWork 重试时业务函数会重新执行）
type Store[A Persistable[ID], ID shared.DomainObjectID, R any] struct {
	db        *gorm.DB
	kind      string
	generator idgen.Generator[ID]
	mapper    Mapper[A, ID, R]
	sink      shared.EventSink
}

// NewStore sink 可为 nil；在 UnitOfWork 之外保存时用它发布事件
func NewStore[A Persistable[ID], ID shared.DomainObjectID, R any](
	db *gorm.DB,
	kind string,
	generator idgen.Generator[ID],
	mapper Mapper[A, ID, R],
	sink shared.EventSink,
) *Store[A, ID, R] {
	return &Store[A, ID, R]{
		db:        db,
		kind:      kind,
		generator: generator,
		mapper:    mapper,
		sink:      sink,
	}
}

// DB returns the transaction from context if available, otherwise the default db
func (s *Store[A, ID, R]) DB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

// Save 插入或更新
// 在 UnitOfWork 内调用时使用上下文中的事务，并登记聚合根等待提交后发布；
// 单独调用时开启自己的事务，提交后通过 sink 发布
func (s *Store[A, ID, R]) Save(ctx context.Context, aggregate A) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		if err := s.save(ctx, tx, aggregate); err != nil {
			return err
		}
		if tracker := persistence.TrackerFromContext(ctx); tracker != nil {
			tracker.Track(aggregate)
		}
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.save(ctx, tx, aggregate)
	})
	if err != nil {
		return err
	}
	return PublishPending(ctx, s.sink, []shared.AggregateRoot{aggregate})
}

func (s *Store[A, ID, R]) save(ctx context.Context, tx *gorm.DB, aggregate A) error {
	if _, persisted := aggregate.Version(); persisted {
		return s.update(tx, aggregate)
	}
	return s.insert(ctx, tx, aggregate)
}

func (s *Store[A, ID, R]) insert(ctx context.Context, tx *gorm.DB, aggregate A) error {
	id, err := s.identifierFor(ctx, aggregate)
	if err != nil {
		return err
	}
	row, err := s.mapper.ToRow(aggregate, id, 0)
	if err != nil {
		return err
	}
	if err := tx.Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewConflictError(s.kind, fmt.Sprintf("%s %s already exists", s.kind, id))
		}
		return fmt.Errorf("failed to insert %s: %w", s.kind, err)
	}

	if err := aggregate.AssignIdentifier(id); err != nil {
		return err
	}
	aggregate.RecordVersion(0)
	logger.Debug("Aggregate inserted", zap.String("aggregate", s.kind), zap.String("id", id.String()))
	return nil
}

// identifierFor 已有标识符时不调用生成器
func (s *Store[A, ID, R]) identifierFor(ctx context.Context, aggregate A) (ID, error) {
	if aggregate.HasIdentifier() {
		return aggregate.Identifier()
	}
	var zero ID
	if s.generator == nil {
		return zero, shared.NewIllegalStateError(s.kind, "no identifier generator configured for "+s.kind)
	}
	id, err := s.generator.Generate(ctx, idgen.GenerationContext{Kind: s.kind, Entity: aggregate})
	if err != nil {
		return zero, fmt.Errorf("failed to generate %s identifier: %w", s.kind, err)
	}
	if id.IsZero() {
		return zero, shared.NewIllegalStateError(s.kind, "generator returned an absent identifier")
	}
	return id, nil
}

func (s *Store[A, ID, R]) update(tx *gorm.DB, aggregate A) error {
	id, err := aggregate.Identifier()
	if err != nil {
		return err
	}
	version, _ := aggregate.Version()
	row, err := s.mapper.ToRow(aggregate, id, version+1)
	if err != nil {
		return err
	}

	// 严格乐观锁：必须使用聚合当前版本作为更新条件，避免静默覆盖并发写入
	result := tx.Model(row).
		Where("version = ?", version).
		Select("*").
		Omit("created_at").
		Updates(row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return shared.NewConflictError(s.kind, fmt.Sprintf("%s %s conflicts with an existing row", s.kind, id))
		}
		return fmt.Errorf("failed to update %s: %w", s.kind, result.Error)
	}
	if result.RowsAffected == 0 {
		metrics.OptimisticConflicts.WithLabelValues(s.kind).Inc()
		return shared.NewOptimisticLockError(s.kind, id.String(), version)
	}

	aggregate.RecordVersion(version + 1)
	return nil
}

// FindByID 未找到返回 ErrNotFound
func (s *Store[A, ID, R]) FindByID(ctx context.Context, id ID) (A, error) {
	var zero A
	key, err := s.mapper.RowKey(id)
	if err != nil {
		return zero, err
	}
	var row R
	if err := s.DB(ctx).Where("id = ?", key).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, shared.NewNotFoundError(s.kind, id.String())
		}
		return zero, err
	}
	return s.mapper.FromRow(&row)
}

// Find 按查询条件加载；scopes 通常来自规格翻译
func (s *Store[A, ID, R]) Find(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) ([]A, error) {
	var rows []R
	if err := s.DB(ctx).Scopes(scopes...).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]A, len(rows))
	for i := range rows {
		a, err := s.mapper.FromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

// FindOne 无匹配时返回 ErrNotFound
func (s *Store[A, ID, R]) FindOne(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (A, error) {
	var zero A
	var row R
	if err := s.DB(ctx).Scopes(scopes...).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, shared.NewNotFoundError(s.kind, "")
		}
		return zero, err
	}
	return s.mapper.FromRow(&row)
}

// Remove 删除行；版本号已过期时返回乐观锁冲突
// 聚合根上登记的事件（例如删除前的状态变化）照常发布
func (s *Store[A, ID, R]) Remove(ctx context.Context, aggregate A) error {
	id, err := aggregate.Identifier()
	if err != nil {
		return err
	}
	key, err := s.mapper.RowKey(id)
	if err != nil {
		return err
	}
	version, _ := aggregate.Version()

	remove := func(tx *gorm.DB) error {
		var row R
		result := tx.Where("id = ? AND version = ?", key, version).Delete(&row)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&row).Where("id = ?", key).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.NewNotFoundError(s.kind, id.String())
			}
			metrics.OptimisticConflicts.WithLabelValues(s.kind).Inc()
			return shared.NewOptimisticLockError(s.kind, id.String(), version)
		}
		return nil
	}

	if tx := persistence.TxFromContext(ctx); tx != nil {
		if err := remove(tx); err != nil {
			return err
		}
		if tracker := persistence.TrackerFromContext(ctx); tracker != nil {
			tracker.Track(aggregate)
		}
		return nil
	}
	if err := s.db.WithContext(ctx).Transaction(remove); err != nil {
		return err
	}
	return PublishPending(ctx, s.sink, []shared.AggregateRoot{aggregate})
}

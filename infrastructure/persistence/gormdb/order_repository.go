package gormdb

import (
	"context"
	"errors"

	"hexagonal/domain/order"
	"hexagonal/domain/shared"
	"hexagonal/domain/user"
	"hexagonal/infrastructure/persistence/gormdb/po"
	"hexagonal/infrastructure/persistence/idgen"
	"hexagonal/infrastructure/persistence/specification"

	"gorm.io/gorm"
)

type orderMapper struct{}

func (orderMapper) ToRow(o *order.Order, id order.ID, version int64) (*po.OrderPO, error) {
	return po.FromOrderDomain(o, id, version)
}

func (orderMapper) FromRow(row *po.OrderPO) (*order.Order, error) { return row.ToDomain() }

func (orderMapper) RowKey(id order.ID) (any, error) { return po.OrderIDCodec.ToStorage(id) }

// OrderRepository GORM implementation of order.Repository
// GORM usage specification: Association features are prohibited to maintain DDD aggregate boundaries
type OrderRepository struct {
	store      *Store[*order.Order, order.ID, po.OrderPO]
	translator *specification.GormTranslator[*order.Order]
}

// NewOrderRepository 订单标识符在本地生成，generator 通常是 idgen.UUIDGenerator
func NewOrderRepository(db *gorm.DB, generator idgen.Generator[order.ID], sink shared.EventSink) *OrderRepository {
	return &OrderRepository{
		store:      NewStore[*order.Order, order.ID, po.OrderPO](db, order.AggregateKind, generator, orderMapper{}, sink),
		translator: specification.NewGormTranslator[*order.Order](translateOrderSpecification),
	}
}

func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.store.Save(ctx, o)
}

func (r *OrderRepository) FindByID(ctx context.Context, id order.ID) (*order.Order, error) {
	o, err := r.store.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, order.NewOrderNotFoundError(id.String())
	}
	return o, err
}

// FindByUserID Find user's orders, newest first
func (r *OrderRepository) FindByUserID(ctx context.Context, userID user.ID) ([]*order.Order, error) {
	scope, _ := r.translator.Translate(order.NewByUserIDSpecification(userID))
	return r.store.Find(ctx, scope, func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") })
}

func (r *OrderRepository) FindBySpecification(ctx context.Context, spec shared.Specification[*order.Order]) ([]*order.Order, error) {
	if scope, ok := r.translator.Translate(spec); ok {
		return r.store.Find(ctx, scope)
	}
	all, err := r.store.Find(ctx)
	if err != nil {
		return nil, err
	}
	orders := make([]*order.Order, 0, len(all))
	for _, o := range all {
		if spec.IsSatisfiedBy(ctx, o) {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (r *OrderRepository) Remove(ctx context.Context, o *order.Order) error {
	return r.store.Remove(ctx, o)
}

func translateOrderSpecification(spec shared.Specification[*order.Order], negate bool) (specification.Scope, bool) {
	switch s := spec.(type) {
	case order.ByUserIDSpecification:
		raw, err := po.UserIDCodec.ToStorage(s.UserID)
		if err != nil || raw == nil {
			return nil, false
		}
		op := "user_id = ?"
		if negate {
			op = "user_id <> ?"
		}
		return func(db *gorm.DB) *gorm.DB { return db.Where(op, raw) }, true
	case order.ByStatusSpecification:
		op := "status = ?"
		if negate {
			op = "status <> ?"
		}
		return func(db *gorm.DB) *gorm.DB { return db.Where(op, string(s.Status)) }, true
	case order.ByDateRangeSpecification:
		if negate {
			// 开区间的取反交给内存过滤
			return nil, false
		}
		return func(db *gorm.DB) *gorm.DB {
			if !s.Start.IsZero() {
				db = db.Where("created_at >= ?", s.Start)
			}
			if !s.End.IsZero() {
				db = db.Where("created_at <= ?", s.End)
			}
			return db
		}, true
	}
	return nil, false
}

var _ order.Repository = (*OrderRepository)(nil)

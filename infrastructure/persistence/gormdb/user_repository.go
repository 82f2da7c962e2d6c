package gormdb

import (
	"context"
	"errors"

	"hexagonal/domain/shared"
	"hexagonal/domain/user"
	"hexagonal/infrastructure/persistence/gormdb/po"
	"hexagonal/infrastructure/persistence/idgen"
	"hexagonal/infrastructure/persistence/specification"

	"gorm.io/gorm"
)

type userMapper struct{}

func (userMapper) ToRow(u *user.User, id user.ID, version int64) (*po.UserPO, error) {
	return po.FromUserDomain(u, id, version)
}

func (userMapper) FromRow(row *po.UserPO) (*user.User, error) { return row.ToDomain() }

func (userMapper) RowKey(id user.ID) (any, error) { return po.UserIDCodec.ToStorage(id) }

// UserRepository GORM implementation of user.Repository
// 用户标识符来自序列生成器（table / pgx / redis / memory）
type UserRepository struct {
	store      *Store[*user.User, user.ID, po.UserPO]
	translator *specification.GormTranslator[*user.User]
}

func NewUserRepository(db *gorm.DB, generator idgen.Generator[user.ID], sink shared.EventSink) *UserRepository {
	return &UserRepository{
		store:      NewStore[*user.User, user.ID, po.UserPO](db, user.AggregateKind, generator, userMapper{}, sink),
		translator: specification.NewGormTranslator[*user.User](translateUserSpecification),
	}
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	err := r.store.Save(ctx, u)
	if errors.Is(err, shared.ErrConflict) {
		return user.NewEmailAlreadyExistsError(u.Email().Value())
	}
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, id user.ID) (*user.User, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	u, err := r.store.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, user.NewUserNotFoundError(id.String())
	}
	return u, err
}

// FindByEmail 未找到返回 ErrNotFound
func (r *UserRepository) FindByEmail(ctx context.Context, email user.Email) (*user.User, error) {
	scope, _ := r.translator.Translate(user.NewByEmailSpecification(email))
	u, err := r.store.FindOne(ctx, scope)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, user.NewUserNotFoundError(email.Value())
	}
	return u, err
}

// FindBySpecification 能翻译成 SQL 的规格在数据库中过滤，其余在内存中过滤
func (r *UserRepository) FindBySpecification(ctx context.Context, spec shared.Specification[*user.User]) ([]*user.User, error) {
	if scope, ok := r.translator.Translate(spec); ok {
		return r.store.Find(ctx, scope)
	}
	all, err := r.store.Find(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]*user.User, 0, len(all))
	for _, u := range all {
		if spec.IsSatisfiedBy(ctx, u) {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *UserRepository) Remove(ctx context.Context, u *user.User) error {
	return r.store.Remove(ctx, u)
}

// IsUserActive 供订单领域服务检查下单用户（order.UserChecker）
func (r *UserRepository) IsUserActive(ctx context.Context, userID user.ID) (bool, error) {
	u, err := r.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return u.IsActive(), nil
}

func translateUserSpecification(spec shared.Specification[*user.User], negate bool) (specification.Scope, bool) {
	switch s := spec.(type) {
	case user.ByEmailSpecification:
		op := "email = ?"
		if negate {
			op = "email <> ?"
		}
		return func(db *gorm.DB) *gorm.DB { return db.Where(op, s.Email.Value()) }, true
	case user.ByStatusSpecification:
		active := s.Active
		if negate {
			active = !active
		}
		return func(db *gorm.DB) *gorm.DB { return db.Where("is_active = ?", active) }, true
	case user.ByAgeRangeSpecification:
		return func(db *gorm.DB) *gorm.DB {
			switch {
			case !negate:
				if s.Min > 0 {
					db = db.Where("age >= ?", s.Min)
				}
				if s.Max > 0 {
					db = db.Where("age <= ?", s.Max)
				}
				return db
			case s.Min > 0 && s.Max > 0:
				return db.Where("(age < ? OR age > ?)", s.Min, s.Max)
			case s.Min > 0:
				return db.Where("age < ?", s.Min)
			case s.Max > 0:
				return db.Where("age > ?", s.Max)
			default:
				return db.Where("1 = 0")
			}
		}, true
	}
	return nil, false
}

var _ user.Repository = (*UserRepository)(nil)

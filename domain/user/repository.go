package user

import (
	"context"

	"hexagonal/domain/shared"
)

// Repository User repository interface
type Repository interface {
	// Save 插入（首次保存，分配 ID）或更新（乐观锁校验版本号）
	Save(ctx context.Context, user *User) error

	// FindByID Find user aggregate root by ID
	FindByID(ctx context.Context, id ID) (*User, error)

	// FindByEmail Find user by email (business uniqueness constraint)
	FindByEmail(ctx context.Context, email Email) (*User, error)

	// FindBySpecification Find users by specification
	FindBySpecification(ctx context.Context, spec shared.Specification[*User]) ([]*User, error)

	// Remove 删除用户，版本号过期时返回 ErrOptimisticLockConflict
	Remove(ctx context.Context, user *User) error
}

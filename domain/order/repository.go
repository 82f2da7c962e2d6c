package order

import (
	"context"

	"hexagonal/domain/shared"
	"hexagonal/domain/user"
)

// Repository Order repository interface
type Repository interface {
	// Save Save or update order aggregate root
	// A transient order gets its identifier from the configured generator on first save;
	// events are published by the unit of work after commit
	Save(ctx context.Context, order *Order) error

	// FindByID Find order aggregate root by ID
	FindByID(ctx context.Context, id ID) (*Order, error)

	// FindByUserID Find user's orders (controlled query)
	FindByUserID(ctx context.Context, userID user.ID) ([]*Order, error)

	// FindBySpecification Find orders matching specification
	FindBySpecification(ctx context.Context, spec shared.Specification[*Order]) ([]*Order, error)

	// Remove Delete order aggregate root
	Remove(ctx context.Context, order *Order) error
}

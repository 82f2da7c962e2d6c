package order

import (
	"context"

	"hexagonal/domain/user"
)

// UserChecker User status checker interface
// Keeps the order domain service independent of the user repository
type UserChecker interface {
	IsUserActive(ctx context.Context, userID user.ID) (bool, error)
}

// DomainService Order domain service
// Domain service can use Repository interfaces to query data but does not call Save for persistence
type DomainService struct {
	userChecker     UserChecker
	orderRepository Repository
}

// NewDomainService Create order domain service
func NewDomainService(userChecker UserChecker, orderRepo Repository) *DomainService {
	return &DomainService{
		userChecker:     userChecker,
		orderRepository: orderRepo,
	}
}

// CanPlaceOrder Check the user is allowed to place orders
func (s *DomainService) CanPlaceOrder(ctx context.Context, userID user.ID) error {
	isActive, err := s.userChecker.IsUserActive(ctx, userID)
	if err != nil {
		return err
	}
	if !isActive {
		return NewUserCannotPlaceOrderError(userID.String(), "user is not active")
	}
	return nil
}

// CanProcessOrder Check if order can be processed
// Actual state changes and persistence handled by application service
func (s *DomainService) CanProcessOrder(ctx context.Context, orderID ID) (*Order, error) {
	order, err := s.orderRepository.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.CanPlaceOrder(ctx, order.UserID()); err != nil {
		return nil, err
	}
	if order.Status() != StatusPending {
		return nil, NewInvalidOrderStateError(string(order.Status()), string(StatusConfirmed))
	}
	return order, nil
}

/*
Domain Service

Domain services handle business logic that doesn't fit well in single entities, typically:
1. Business rule validation across multiple aggregate roots
2. Complex business calculations requiring access to multiple repositories
3. Stateless business rules

Core principle: Domain service only reads, does not write
*/
package user

import (
	"context"
)

// DomainService User domain service - handles user-related business logic
type DomainService struct {
	userRepository Repository
}

// NewDomainService Create user domain service
func NewDomainService(userRepo Repository) *DomainService {
	return &DomainService{
		userRepository: userRepo,
	}
}

// CanUserPlaceOrder Check if user can place order
func (s *DomainService) CanUserPlaceOrder(ctx context.Context, userID ID) (bool, error) {
	user, err := s.userRepository.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}

	if !user.IsActive() {
		return false, NewUserNotActiveError(userID.String())
	}

	if user.Age() < 18 {
		return false, ErrUserTooYoung
	}

	return true, nil
}

// IsEmailTaken 邮箱唯一性检查
func (s *DomainService) IsEmailTaken(ctx context.Context, email Email) (bool, error) {
	existing, err := s.userRepository.FindBySpecification(ctx, NewByEmailSpecification(email))
	if err != nil {
		return false, err
	}
	return len(existing) > 0, nil
}

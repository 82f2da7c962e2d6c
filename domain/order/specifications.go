package order

import (
	"context"
	"time"

	"hexagonal/domain/shared"
	"hexagonal/domain/user"
)

// ByUserIDSpecification filters orders by user ID
type ByUserIDSpecification struct {
	UserID user.ID
}

func (spec ByUserIDSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	return entity.UserID() == spec.UserID
}

// ByStatusSpecification filters orders by status
type ByStatusSpecification struct {
	Status Status
}

func (spec ByStatusSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	return entity.Status() == spec.Status
}

// ByDateRangeSpecification filters orders by creation date range
// Both Start and End are optional - if zero, they are ignored
type ByDateRangeSpecification struct {
	Start time.Time
	End   time.Time
}

func (spec ByDateRangeSpecification) IsSatisfiedBy(ctx context.Context, entity *Order) bool {
	createdAt := entity.CreatedAt()
	if !spec.Start.IsZero() && createdAt.Before(spec.Start) {
		return false
	}
	if !spec.End.IsZero() && createdAt.After(spec.End) {
		return false
	}
	return true
}

func NewByUserIDSpecification(userID user.ID) shared.Specification[*Order] {
	return ByUserIDSpecification{UserID: userID}
}

func NewByStatusSpecification(status Status) shared.Specification[*Order] {
	return ByStatusSpecification{Status: status}
}

func NewByDateRangeSpecification(start, end time.Time) shared.Specification[*Order] {
	return ByDateRangeSpecification{Start: start, End: end}
}

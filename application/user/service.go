package user

import (
	"context"
	"time"

	"hexagonal/application/stereotype"
	apporder "hexagonal/application/order"
	"hexagonal/domain/order"
	"hexagonal/domain/shared"
	"hexagonal/domain/user"
	"hexagonal/pkg/logger"

	"go.uber.org/zap"
)

func init() {
	stereotype.MustRegister[ApplicationService](stereotype.ApplicationService, "userApplicationService")
}

// ApplicationService User application service - coordinates user-related business processes
type ApplicationService struct {
	userRepo          user.Repository
	orderRepo         order.Repository
	userDomainService *user.DomainService
	specs             apporder.Specifications
	uowFactory        shared.UnitOfWorkFactory
}

// NewApplicationService Create user application service
// 每个用例从 factory 取一个新的 UnitOfWork，登记的聚合根不会跨请求共享
func NewApplicationService(
	userRepo user.Repository,
	orderRepo order.Repository,
	uowFactory shared.UnitOfWorkFactory,
) *ApplicationService {
	return &ApplicationService{
		userRepo:          userRepo,
		orderRepo:         orderRepo,
		userDomainService: user.NewDomainService(userRepo),
		uowFactory:        uowFactory,
	}
}

// CreateUserRequest Create user request DTO
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Age   int    `json:"age" binding:"required,min=0,max=150"`
}

// UserResponse User response DTO
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	IsActive  bool      `json:"is_active"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r UserResponse) ResourceID() string     { return r.ID }
func (r UserResponse) ResourceVersion() int64 { return r.Version }

// CreateUser Create user
// 标识符由仓储在首次保存时分配，事件在提交后发布
func (s *ApplicationService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	var u *user.User

	uow := s.uowFactory.New()
	err := uow.Execute(ctx, func(ctx context.Context) error {
		email, err := user.NewEmail(req.Email)
		if err != nil {
			return err
		}
		taken, err := s.userDomainService.IsEmailTaken(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return user.NewEmailAlreadyExistsError(email.Value())
		}

		u, err = user.NewUser(req.Name, req.Email, req.Age)
		if err != nil {
			return err
		}
		return s.userRepo.Save(ctx, u)
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info("User created", zap.String("user_id", u.IdentifierString()))
	return s.convertToResponse(u), nil
}

// GetUser Get user information
func (s *ApplicationService) GetUser(ctx context.Context, userID string) (*UserResponse, error) {
	id, err := user.ParseID(userID)
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.convertToResponse(u), nil
}

// UpdateUserStatusRequest Update user status request DTO
type UpdateUserStatusRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Active bool   `json:"active"`
}

// UpdateUserStatus Update user status
// 版本号冲突时 UnitOfWork 会重新执行整个函数（重新加载用户）
func (s *ApplicationService) UpdateUserStatus(ctx context.Context, req UpdateUserStatusRequest) error {
	id, err := user.ParseID(req.UserID)
	if err != nil {
		return err
	}

	uow := s.uowFactory.New()
	return uow.Execute(ctx, func(ctx context.Context) error {
		u, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Active {
			err = u.Activate()
		} else {
			err = u.Deactivate()
		}
		if err != nil {
			return err
		}

		return s.userRepo.Save(ctx, u)
	})
}

// GetUserTotalSpentResponse Get user total spent response DTO
type GetUserTotalSpentResponse struct {
	UserID      string `json:"user_id"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency"`
}

// GetUserTotalSpent Get user total spent amount
// Note: This is a cross-subdomain query, handled at application layer
func (s *ApplicationService) GetUserTotalSpent(ctx context.Context, userID string) (*GetUserTotalSpentResponse, error) {
	id, err := user.ParseID(userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.FindBySpecification(ctx, s.specs.DeliveredOrdersOf(id))
	if err != nil {
		return nil, err
	}

	total, _ := shared.NewMoney(0, "CNY")
	for i, o := range orders {
		if i == 0 {
			total = o.TotalAmount()
			continue
		}
		if total, err = total.Add(o.TotalAmount()); err != nil {
			return nil, err
		}
	}

	return &GetUserTotalSpentResponse{
		UserID:      id.String(),
		TotalAmount: total.Amount(),
		Currency:    total.Currency(),
	}, nil
}

// CanUserPlaceOrder Check if user can place order (delegated to domain service)
func (s *ApplicationService) CanUserPlaceOrder(ctx context.Context, userID string) (bool, error) {
	id, err := user.ParseID(userID)
	if err != nil {
		return false, err
	}
	return s.userDomainService.CanUserPlaceOrder(ctx, id)
}

// convertToResponse Convert user entity to response DTO
func (s *ApplicationService) convertToResponse(u *user.User) *UserResponse {
	version, _ := u.Version()
	return &UserResponse{
		ID:        u.IdentifierString(),
		Name:      u.Name(),
		Email:     u.Email().Value(),
		Age:       u.Age(),
		IsActive:  u.IsActive(),
		Version:   version,
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}

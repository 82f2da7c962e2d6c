/*
Package order Application Layer - Order Business Process Orchestration

Responsibilities of Application Layer:
1. Receive external requests (usually from Controller)
2. Call domain services for business rule validation
3. Call aggregate root methods to execute business operations
4. Use UoW to manage transactions and event publication
5. Return results to caller

Important: Application services do not directly publish events!
- Repositories save aggregates inside the UoW transaction
- After commit the UoW hands pending events to the configured sink (outbox or bus)
- Events of a rolled back transaction stay on the aggregate and are never published
*/
package order

import (
	"context"

	"hexagonal/application/stereotype"
	"hexagonal/domain/order"
	"hexagonal/domain/shared"
	"hexagonal/domain/user"
	"hexagonal/pkg/logger"

	"go.uber.org/zap"
)

func init() {
	stereotype.MustRegister[ApplicationService](stereotype.ApplicationService, "orderApplicationService")
	stereotype.MustRegister[ApplicationService](stereotype.Orchestrator, "")
}

// ApplicationService Order application service - coordinates order-related business processes
type ApplicationService struct {
	orderRepo          order.Repository
	userRepo           user.Repository
	orderDomainService *order.DomainService
	userDomainService  *user.DomainService
	specs              Specifications
	uowFactory         shared.UnitOfWorkFactory
}

// NewApplicationService Create order application service
func NewApplicationService(
	orderRepo order.Repository,
	userRepo user.Repository,
	uowFactory shared.UnitOfWorkFactory,
) *ApplicationService {
	userChecker := &userCheckerAdapter{userRepo: userRepo}
	return &ApplicationService{
		orderRepo:          orderRepo,
		userRepo:           userRepo,
		orderDomainService: order.NewDomainService(userChecker, orderRepo),
		userDomainService:  user.NewDomainService(userRepo),
		uowFactory:         uowFactory,
	}
}

// ============================================================================
// Application Service Methods - Business Process Orchestration
// ============================================================================

// CreateOrder Create order
// 订单标识符在本地生成（UUID），首次保存时分配
func (s *ApplicationService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	userID, err := user.ParseID(req.UserID)
	if err != nil {
		return nil, err
	}
	requests, err := toItemRequests(req.Items)
	if err != nil {
		return nil, err
	}

	var o *order.Order
	uow := s.uowFactory.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		if _, err := s.userDomainService.CanUserPlaceOrder(ctx, userID); err != nil {
			return err
		}

		o, err = order.NewOrder(userID, requests)
		if err != nil {
			return err
		}
		return s.orderRepo.Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info("Order created",
		zap.String("order_id", o.IdentifierString()),
		zap.String("user_id", userID.String()),
		zap.Int64("total_amount", o.TotalAmount().Amount()),
	)
	return toOrderResponse(o), nil
}

// GetOrder Get order information
func (s *ApplicationService) GetOrder(ctx context.Context, orderID string) (*OrderResponse, error) {
	id, err := order.ParseID(orderID)
	if err != nil {
		return nil, err
	}
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// GetUserOrders Get all orders for user
func (s *ApplicationService) GetUserOrders(ctx context.Context, userID string) ([]*OrderResponse, error) {
	id, err := user.ParseID(userID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindByUserID(ctx, id)
	if err != nil {
		return nil, err
	}

	responses := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		responses[i] = toOrderResponse(o)
	}
	return responses, nil
}

// GetOpenOrders 未送达且未取消的订单
func (s *ApplicationService) GetOpenOrders(ctx context.Context, userID string) ([]*OrderResponse, error) {
	id, err := user.ParseID(userID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindBySpecification(ctx, s.specs.OpenOrdersOf(id))
	if err != nil {
		return nil, err
	}

	responses := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		responses[i] = toOrderResponse(o)
	}
	return responses, nil
}

// UpdateOrderStatus Update order status
func (s *ApplicationService) UpdateOrderStatus(ctx context.Context, req UpdateOrderStatusRequest) error {
	id, err := order.ParseID(req.OrderID)
	if err != nil {
		return err
	}

	uow := s.uowFactory.New()
	return uow.Execute(ctx, func(ctx context.Context) error {
		o, err := s.orderRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := applyStatus(o, order.Status(req.Status), req.Reason); err != nil {
			return err
		}
		return s.orderRepo.Save(ctx, o)
	})
}

func applyStatus(o *order.Order, status order.Status, reason string) error {
	switch status {
	case o.Status():
		return nil
	case order.StatusConfirmed:
		return o.Confirm()
	case order.StatusShipped:
		return o.Ship()
	case order.StatusDelivered:
		return o.Deliver()
	case order.StatusCancelled:
		return o.Cancel(reason)
	default:
		return order.NewInvalidOrderStateError(string(o.Status()), string(status))
	}
}

// ProcessOrder Process order
// 跨用户、订单两个子领域校验后确认订单
func (s *ApplicationService) ProcessOrder(ctx context.Context, orderID string) error {
	id, err := order.ParseID(orderID)
	if err != nil {
		return err
	}

	uow := s.uowFactory.New()
	return uow.Execute(ctx, func(ctx context.Context) error {
		// 1. Verify if order can be processed through domain service
		o, err := s.orderDomainService.CanProcessOrder(ctx, id)
		if err != nil {
			return err
		}

		// 2. Execute status change (aggregate root method)
		if err := o.Confirm(); err != nil {
			return err
		}

		// 3. Save (uses transaction from context)
		return s.orderRepo.Save(ctx, o)
	})
}

// RemoveOrder 删除订单，只允许删除已取消的订单
func (s *ApplicationService) RemoveOrder(ctx context.Context, orderID string) error {
	id, err := order.ParseID(orderID)
	if err != nil {
		return err
	}

	uow := s.uowFactory.New()
	return uow.Execute(ctx, func(ctx context.Context) error {
		o, err := s.orderRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status() != order.StatusCancelled {
			return order.NewInvalidOrderStateError(string(o.Status()), "REMOVED")
		}
		uow.RegisterRemoved(o)
		return s.orderRepo.Remove(ctx, o)
	})
}

package order

import (
	"time"

	"hexagonal/application/stereotype"
	"hexagonal/domain/order"
	"hexagonal/domain/shared"
	"hexagonal/domain/user"
)

func init() {
	stereotype.MustRegister[Specifications](stereotype.SpecificationFactory, "")
}

// Specifications 用例常用的订单查询条件组合
type Specifications struct{}

// OrdersOf 某个用户的全部订单
func (Specifications) OrdersOf(userID user.ID) shared.Specification[*order.Order] {
	return order.NewByUserIDSpecification(userID)
}

// DeliveredOrdersOf 已送达订单，用于统计消费金额
func (Specifications) DeliveredOrdersOf(userID user.ID) shared.Specification[*order.Order] {
	return shared.And(
		order.NewByUserIDSpecification(userID),
		order.NewByStatusSpecification(order.StatusDelivered),
	)
}

// OpenOrdersOf 尚未完结（未送达且未取消）的订单
func (Specifications) OpenOrdersOf(userID user.ID) shared.Specification[*order.Order] {
	return shared.And(
		order.NewByUserIDSpecification(userID),
		shared.And(
			shared.Not(order.NewByStatusSpecification(order.StatusDelivered)),
			shared.Not(order.NewByStatusSpecification(order.StatusCancelled)),
		),
	)
}

// PlacedBetween 按下单时间过滤
func (Specifications) PlacedBetween(start, end time.Time) shared.Specification[*order.Order] {
	return order.NewByDateRangeSpecification(start, end)
}

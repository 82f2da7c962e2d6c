package order

import (
	"time"

	"hexagonal/domain/shared"
	"hexagonal/domain/user"
)

// OrderPlacedEvent order placed; the order id is stamped by the event sink
type OrderPlacedEvent struct {
	UserID        string    `json:"user_id"`
	TotalAmount   int64     `json:"total_amount"`
	TotalCurrency string    `json:"total_currency"`
	ItemCount     int       `json:"item_count"`
	Occurred      time.Time `json:"occurred_on"`
}

func NewOrderPlacedEvent(userID user.ID, total shared.Money, itemCount int) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		UserID:        userID.String(),
		TotalAmount:   total.Amount(),
		TotalCurrency: total.Currency(),
		ItemCount:     itemCount,
		Occurred:      time.Now(),
	}
}

func (e *OrderPlacedEvent) EventName() string     { return "order.placed" }
func (e *OrderPlacedEvent) OccurredOn() time.Time { return e.Occurred }

type OrderConfirmedEvent struct {
	Occurred time.Time `json:"occurred_on"`
}

func NewOrderConfirmedEvent() *OrderConfirmedEvent {
	return &OrderConfirmedEvent{Occurred: time.Now()}
}

func (e *OrderConfirmedEvent) EventName() string     { return "order.confirmed" }
func (e *OrderConfirmedEvent) OccurredOn() time.Time { return e.Occurred }

type OrderShippedEvent struct {
	Occurred time.Time `json:"occurred_on"`
}

func NewOrderShippedEvent() *OrderShippedEvent {
	return &OrderShippedEvent{Occurred: time.Now()}
}

func (e *OrderShippedEvent) EventName() string     { return "order.shipped" }
func (e *OrderShippedEvent) OccurredOn() time.Time { return e.Occurred }

type OrderDeliveredEvent struct {
	Occurred time.Time `json:"occurred_on"`
}

func NewOrderDeliveredEvent() *OrderDeliveredEvent {
	return &OrderDeliveredEvent{Occurred: time.Now()}
}

func (e *OrderDeliveredEvent) EventName() string     { return "order.delivered" }
func (e *OrderDeliveredEvent) OccurredOn() time.Time { return e.Occurred }

type OrderCancelledEvent struct {
	Reason   string    `json:"reason"`
	Occurred time.Time `json:"occurred_on"`
}

func NewOrderCancelledEvent(reason string) *OrderCancelledEvent {
	return &OrderCancelledEvent{Reason: reason, Occurred: time.Now()}
}

func (e *OrderCancelledEvent) EventName() string     { return "order.cancelled" }
func (e *OrderCancelledEvent) OccurredOn() time.Time { return e.Occurred }

/*
Package order Order subdomain - Core layer of DDD architecture

The domain layer is the core of the entire application, containing:
- Aggregate Roots: Entities that maintain consistency boundaries
- Entity: Objects with unique identity
- Value Objects: Immutable objects identified by their attributes
- Domain Services: Business logic spanning multiple entities
- Domain Events: Important events recorded in the business system
- Repository Interfaces: Abstraction for aggregate root persistence

Orders are identified by a UUID generated locally on the first save; the owning
user is referenced by its numeric identifier only.
*/
package order

import (
	"fmt"
	"time"

	"hexagonal/domain/shared"
	"hexagonal/domain/user"

	"github.com/google/uuid"
)

// AggregateKind Declared kind name of the order aggregate
const AggregateKind = "Order"

// Kind Marker type of order identifiers
type Kind struct{}

func (Kind) IDKind() string { return "OrderID" }

// ID Order identifier
type ID = shared.UUIDID[Kind]

// ParseID Parse an order identifier from its canonical text form
func ParseID(s string) (ID, error) { return shared.ParseUUIDID[Kind](s) }

// Order Order aggregate root
// All modifications to Order and Item must go through the Order aggregate root
type Order struct {
	shared.BaseAggregateRoot[ID]

	userID      user.ID
	items       []Item
	totalAmount shared.Money
	status      Status
	createdAt   time.Time
	updatedAt   time.Time
}

// Item Order item - Entity within the aggregate (non-aggregate root)
// Item has no global identity, its id is only unique within the order
type Item struct {
	id          string
	productID   string
	productName string
	quantity    int
	unitPrice   shared.Money
	subtotal    shared.Money
}

// Status Order status enum
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// ItemRequest Create order item request
type ItemRequest struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   shared.Money
}

// ============================================================================
// Factory Methods
// ============================================================================

// NewOrder Create new (transient) Order aggregate root
func NewOrder(userID user.ID, requests []ItemRequest) (*Order, error) {
	if userID.IsZero() {
		return nil, NewInvalidOrderError("user_id", "order must belong to a user")
	}
	if len(requests) == 0 {
		return nil, NewEmptyOrderItemsError()
	}

	now := time.Now()
	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot[ID](AggregateKind),
		userID:            userID,
		status:            StatusPending,
		createdAt:         now,
		updatedAt:         now,
	}
	for _, req := range requests {
		item, err := newItem(req)
		if err != nil {
			return nil, err
		}
		o.items = append(o.items, item)
	}
	if err := o.recalculate(); err != nil {
		return nil, err
	}
	if o.totalAmount.Amount() <= 0 {
		return nil, ErrOrderTotalAmountNotPositive
	}

	if err := o.RegisterEvent(NewOrderPlacedEvent(userID, o.totalAmount, len(o.items))); err != nil {
		return nil, err
	}
	return o, nil
}

func newItem(req ItemRequest) (Item, error) {
	if req.Quantity <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	if req.UnitPrice.IsZero() {
		return Item{}, NewInvalidOrderError("unit_price", "unit price is required")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Item{}, fmt.Errorf("failed to generate order item ID: %w", err)
	}
	return Item{
		id:          id.String(),
		productID:   req.ProductID,
		productName: req.ProductName,
		quantity:    req.Quantity,
		unitPrice:   req.UnitPrice,
		subtotal:    req.UnitPrice.Multiply(req.Quantity),
	}, nil
}

// recalculate total amount; all items must share one currency
func (o *Order) recalculate() error {
	if len(o.items) == 0 {
		o.totalAmount = shared.Money{}
		return nil
	}
	total := o.items[0].subtotal
	for _, it := range o.items[1:] {
		sum, err := total.Add(it.subtotal)
		if err != nil {
			return err
		}
		total = sum
	}
	o.totalAmount = total
	return nil
}

// ============================================================================
// ReconstructionDTO - For Repository Layer Use Only
// ============================================================================

// ReconstructionDTO Order reconstruction data transfer object
// ⚠️ Note: This DTO should only be used in repository implementation, not called from application layer
type ReconstructionDTO struct {
	ID          ID
	UserID      user.ID
	Items       []ItemReconstructionDTO
	TotalAmount shared.Money
	Status      Status
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemReconstructionDTO Order item reconstruction data transfer object
type ItemReconstructionDTO struct {
	ID          string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   shared.Money
	Subtotal    shared.Money
}

// RebuildFromDTO Reconstruct a persisted Order aggregate root
func RebuildFromDTO(dto ReconstructionDTO) (*Order, error) {
	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot[ID](AggregateKind),
		userID:            dto.UserID,
		totalAmount:       dto.TotalAmount,
		status:            dto.Status,
		createdAt:         dto.CreatedAt,
		updatedAt:         dto.UpdatedAt,
	}
	o.items = make([]Item, len(dto.Items))
	for i, it := range dto.Items {
		o.items[i] = Item{
			id:          it.ID,
			productID:   it.ProductID,
			productName: it.ProductName,
			quantity:    it.Quantity,
			unitPrice:   it.UnitPrice,
			subtotal:    it.Subtotal,
		}
	}
	if err := o.Rehydrate(dto.ID, dto.Version); err != nil {
		return nil, err
	}
	return o, nil
}

// ============================================================================
// Aggregate Root Behavior Methods
// ============================================================================

// AddItem Add order item through aggregate root
func (o *Order) AddItem(req ItemRequest) error {
	if o.status != StatusPending {
		return ErrCannotModifyNonPendingOrder
	}
	item, err := newItem(req)
	if err != nil {
		return err
	}
	o.items = append(o.items, item)
	if err := o.recalculate(); err != nil {
		o.items = o.items[:len(o.items)-1]
		_ = o.recalculate()
		return err
	}
	o.updatedAt = time.Now()
	return nil
}

// RemoveItem Remove order item through aggregate root
// The last item cannot be removed: an order must have at least one item
func (o *Order) RemoveItem(itemID string) error {
	if o.status != StatusPending {
		return ErrCannotModifyNonPendingOrder
	}
	for i, item := range o.items {
		if item.id != itemID {
			continue
		}
		if len(o.items) == 1 {
			return NewEmptyOrderItemsError()
		}
		o.items = append(o.items[:i:i], o.items[i+1:]...)
		_ = o.recalculate()
		o.updatedAt = time.Now()
		return nil
	}
	return ErrItemNotFound
}

// Confirm Confirm order (PENDING -> CONFIRMED)
func (o *Order) Confirm() error {
	return o.transition(StatusPending, StatusConfirmed, NewOrderConfirmedEvent())
}

// Ship Ship order (CONFIRMED -> SHIPPED)
func (o *Order) Ship() error {
	return o.transition(StatusConfirmed, StatusShipped, NewOrderShippedEvent())
}

// Deliver Deliver order (SHIPPED -> DELIVERED)
func (o *Order) Deliver() error {
	return o.transition(StatusShipped, StatusDelivered, NewOrderDeliveredEvent())
}

// Cancel Cancel order
// Business rule: Delivered or cancelled orders cannot be cancelled again
func (o *Order) Cancel(reason string) error {
	if o.status == StatusDelivered || o.status == StatusCancelled {
		return NewInvalidOrderStateError(string(o.status), string(StatusCancelled))
	}
	o.status = StatusCancelled
	o.updatedAt = time.Now()
	return o.RegisterEvent(NewOrderCancelledEvent(reason))
}

func (o *Order) transition(from, to Status, event shared.DomainEvent) error {
	if o.status != from {
		return NewInvalidOrderStateError(string(o.status), string(to))
	}
	o.status = to
	o.updatedAt = time.Now()
	return o.RegisterEvent(event)
}

// ============================================================================
// Getters
// ============================================================================

func (o *Order) UserID() user.ID { return o.userID }

// Items Return copy of order items
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

func (o *Order) TotalAmount() shared.Money { return o.totalAmount }
func (o *Order) Status() Status            { return o.status }
func (o *Order) CreatedAt() time.Time      { return o.createdAt }
func (o *Order) UpdatedAt() time.Time      { return o.updatedAt }

func (item Item) ID() string              { return item.id }
func (item Item) ProductID() string       { return item.productID }
func (item Item) ProductName() string     { return item.productName }
func (item Item) Quantity() int           { return item.quantity }
func (item Item) UnitPrice() shared.Money { return item.unitPrice }
func (item Item) Subtotal() shared.Money  { return item.subtotal }

// Compile-time check that Order implements AggregateRoot interface
var _ = shared.IsAggregateRoot(&Order{})

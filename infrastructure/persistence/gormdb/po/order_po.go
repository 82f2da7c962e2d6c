package po

import (
	"encoding/json"
	"fmt"
	"time"

	"hexagonal/domain/order"
	"hexagonal/domain/shared"
	"hexagonal/domain/user"

	"gorm.io/datatypes"
)

// OrderPO Order persistence object
// Note: Only used for database mapping, does not contain any business logic
// Order items live inside the aggregate and are stored as a JSON column, no GORM associations
type OrderPO struct {
	ID            string         `gorm:"primaryKey;size:36"`
	UserID        user.ID        `gorm:"serializer:user_id;type:bigint;index;not null"` // Only store ID, no association with User
	Items         datatypes.JSON `gorm:"not null"`
	Status        string         `gorm:"size:20;index;not null"`
	TotalAmount   int64          `gorm:"not null"`
	TotalCurrency string         `gorm:"size:3;not null"`
	Version       int64          `gorm:"not null"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (OrderPO) TableName() string {
	return "orders"
}

// OrderItemRecord JSON form of an order item
type OrderItemRecord struct {
	ID               string `json:"id"`
	ProductID        string `json:"product_id"`
	ProductName      string `json:"product_name"`
	Quantity         int    `json:"quantity"`
	UnitPrice        int64  `json:"unit_price"`
	UnitCurrency     string `json:"unit_currency"`
	Subtotal         int64  `json:"subtotal"`
	SubtotalCurrency string `json:"subtotal_currency"`
}

// FromOrderDomain Convert domain model to persistence object
func FromOrderDomain(o *order.Order, id order.ID, version int64) (*OrderPO, error) {
	raw, err := OrderIDCodec.ToStorage(id)
	if err != nil {
		return nil, err
	}

	items := o.Items()
	records := make([]OrderItemRecord, len(items))
	for i, item := range items {
		records[i] = OrderItemRecord{
			ID:               item.ID(),
			ProductID:        item.ProductID(),
			ProductName:      item.ProductName(),
			Quantity:         item.Quantity(),
			UnitPrice:        item.UnitPrice().Amount(),
			UnitCurrency:     item.UnitPrice().Currency(),
			Subtotal:         item.Subtotal().Amount(),
			SubtotalCurrency: item.Subtotal().Currency(),
		}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order items: %w", err)
	}

	return &OrderPO{
		ID:            raw.(string),
		UserID:        o.UserID(),
		Items:         datatypes.JSON(payload),
		Status:        string(o.Status()),
		TotalAmount:   o.TotalAmount().Amount(),
		TotalCurrency: o.TotalAmount().Currency(),
		Version:       version,
		CreatedAt:     o.CreatedAt(),
		UpdatedAt:     o.UpdatedAt(),
	}, nil
}

// ToDomain Convert persistence object to domain model
func (po *OrderPO) ToDomain() (*order.Order, error) {
	id, err := OrderIDCodec.FromStorage(po.ID)
	if err != nil {
		return nil, err
	}

	var records []OrderItemRecord
	if err := json.Unmarshal(po.Items, &records); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	items := make([]order.ItemReconstructionDTO, len(records))
	for i, r := range records {
		unitPrice, err := shared.NewMoney(r.UnitPrice, r.UnitCurrency)
		if err != nil {
			return nil, err
		}
		subtotal, err := shared.NewMoney(r.Subtotal, r.SubtotalCurrency)
		if err != nil {
			return nil, err
		}
		items[i] = order.ItemReconstructionDTO{
			ID:          r.ID,
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			UnitPrice:   unitPrice,
			Subtotal:    subtotal,
		}
	}
	total, err := shared.NewMoney(po.TotalAmount, po.TotalCurrency)
	if err != nil {
		return nil, err
	}

	return order.RebuildFromDTO(order.ReconstructionDTO{
		ID:          id,
		UserID:      po.UserID,
		Items:       items,
		TotalAmount: total,
		Status:      order.Status(po.Status),
		Version:     po.Version,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	})
}

package order

import (
	"hexagonal/domain/order"
	"hexagonal/domain/shared"
)

func toItemRequests(items []OrderItemRequest) ([]order.ItemRequest, error) {
	requests := make([]order.ItemRequest, len(items))
	for i, item := range items {
		price, err := shared.NewMoney(item.UnitPrice, item.Currency)
		if err != nil {
			return nil, err
		}
		requests[i] = order.ItemRequest{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   price,
		}
	}
	return requests, nil
}

func toMoneyResponse(m shared.Money) MoneyResponse {
	return MoneyResponse{Amount: m.Amount(), Currency: m.Currency()}
}

func toOrderResponse(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(o.Items()))
	for i, item := range o.Items() {
		items[i] = OrderItemResponse{
			ID:          item.ID(),
			ProductID:   item.ProductID(),
			ProductName: item.ProductName(),
			Quantity:    item.Quantity(),
			UnitPrice:   toMoneyResponse(item.UnitPrice()),
			Subtotal:    toMoneyResponse(item.Subtotal()),
		}
	}

	version, _ := o.Version()
	return &OrderResponse{
		ID:          o.IdentifierString(),
		UserID:      o.UserID().String(),
		Items:       items,
		TotalAmount: toMoneyResponse(o.TotalAmount()),
		Status:      string(o.Status()),
		Version:     version,
		CreatedAt:   o.CreatedAt(),
		UpdatedAt:   o.UpdatedAt(),
	}
}

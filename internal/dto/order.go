package dto

import (
	"time"

	"bistro/internal/domain"
	"bistro/internal/pricing"
)

type CreateOrderRequest struct {
	CustomerName string `json:"customerName"`
	ItemIDs      []int  `json:"itemIds"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type OrderDTO struct {
	ID           uint          `json:"id"`
	CustomerName string        `json:"customerName"`
	Items        []MenuItemDTO `json:"items"`
	TotalPrice   int64         `json:"totalPrice"`
	Status       string        `json:"status"`
	OrderTime    time.Time     `json:"orderTime"`
	Message      string        `json:"message,omitempty"`
	// UnresolvedItemIDs lists requested ids that were dropped because they
	// did not match an available menu item.
	UnresolvedItemIDs []int `json:"unresolvedItemIds,omitempty"`
}

type BillDTO struct {
	OrderID       uint  `json:"orderId"`
	Subtotal      int64 `json:"subtotal"`
	Tax           int64 `json:"tax"`
	ServiceCharge int64 `json:"serviceCharge"`
	Total         int64 `json:"total"`
	LoyaltyPoints int64 `json:"loyaltyPoints"`
}

func FromOrder(o domain.Order) OrderDTO {
	return OrderDTO{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Items:        FromMenuItems(o.Items),
		TotalPrice:   o.TotalPrice,
		Status:       string(o.Status),
		OrderTime:    o.OrderTime,
	}
}

func FromOrders(orders []domain.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromOrder(o))
	}
	return out
}

func FromBill(orderID uint, b pricing.Bill) BillDTO {
	return BillDTO{
		OrderID:       orderID,
		Subtotal:      b.Subtotal,
		Tax:           b.Tax,
		ServiceCharge: b.ServiceCharge,
		Total:         b.Total,
		LoyaltyPoints: b.LoyaltyPoints,
	}
}

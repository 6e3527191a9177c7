package http

import (
	"encoding/json"
	"time"

	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	Customer CustomerRequest    `json:"customer"`
	Items    []OrderItemRequest `json:"items"`
}

type CustomerRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type OrderItemRequest struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

type CreateOrderResponse struct {
	OrderID string        `json:"orderId"`
	Status  domain.Status `json:"status"`
	Total   json.Number   `json:"total"`
}

type CreateMenuItemRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Image       string      `json:"image"`
}

// UpdateMenuItemRequest is a partial update; absent fields keep their value.
type UpdateMenuItemRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Price       *json.Number `json:"price"`
	Image       *string      `json:"image"`
}

type CustomerResponse struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type OrderItemResponse struct {
	MenuItemID string      `json:"menuItemId"`
	Name       string      `json:"name"`
	Price      json.Number `json:"price"`
	Quantity   int         `json:"quantity"`
}

type OrderResponse struct {
	ID        string              `json:"id"`
	Customer  CustomerResponse    `json:"customer"`
	Items     []OrderItemResponse `json:"items"`
	Total     json.Number         `json:"total"`
	Status    domain.Status       `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

type MenuItemResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Image       string      `json:"image"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type StatusLogResponse struct {
	Status    domain.Status `json:"status"`
	ChangedBy string        `json:"changedBy"`
	ChangedAt time.Time     `json:"changedAt"`
}

// money renders an amount as a JSON number with two decimals.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func toOrderResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Price:      money(it.Price),
			Quantity:   it.Quantity,
		}
	}
	return OrderResponse{
		ID: o.ID,
		Customer: CustomerResponse{
			Name:    o.Customer.Name,
			Address: o.Customer.Address,
			Phone:   o.Customer.Phone,
		},
		Items:     items,
		Total:     money(o.Total),
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toMenuItemResponse(m *domain.MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       money(m.Price),
		Image:       m.Image,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

package interfaces

import (
	"context"

	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/shopspring/decimal"
)

// Интерфейсы Сервисов (Business Logic)
type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error)
}

type TrackingService interface {
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, status *domain.Status) ([]*domain.Order, error)
	GetOrderHistory(ctx context.Context, id string) ([]*domain.StatusLog, error)
}

type CatalogService interface {
	ListMenu(ctx context.Context) ([]*domain.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, error)
	GetMenuItemsByIDs(ctx context.Context, ids []string) ([]*domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, cmd CreateMenuItemCommand) (*domain.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id string, cmd UpdateMenuItemCommand) (*domain.MenuItem, error)
	Seed(ctx context.Context) (int, error)
}

// ProgressionScheduler advances a freshly created order through its
// lifecycle. Arm must not block.
type ProgressionScheduler interface {
	Arm(orderID string)
}

// Команды для сервисов
type CreateOrderCommand struct {
	Customer domain.Customer
	Items    []CreateOrderItemCommand
}

type CreateOrderItemCommand struct {
	MenuItemID string
	Quantity   int
}

type CreateOrderResult struct {
	OrderID string
	Status  domain.Status
	Total   decimal.Decimal
}

type CreateMenuItemCommand struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
}

// UpdateMenuItemCommand carries optional edits; nil fields stay unchanged.
type UpdateMenuItemCommand struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Image       *string
}

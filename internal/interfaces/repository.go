package interfaces

import (
	"context"

	"github.com/YelzhanWeb/food-delivery/internal/domain"
)

// Интерфейсы Репозиториев (Adapter/Postgres, Adapter/Memory)
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status, changedBy string) (*domain.Order, error)
	FindAll(ctx context.Context) ([]*domain.Order, error)
	FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error)
	GetStatusHistory(ctx context.Context, orderID string) ([]*domain.StatusLog, error)
}

// MenuRepository is the Catalog Store. FindByIDs returns only the items that
// exist; missing ids are not an error.
type MenuRepository interface {
	Create(ctx context.Context, item *domain.MenuItem) error
	Update(ctx context.Context, item *domain.MenuItem) error
	FindByID(ctx context.Context, id string) (*domain.MenuItem, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.MenuItem, error)
	FindAll(ctx context.Context) ([]*domain.MenuItem, error)
}

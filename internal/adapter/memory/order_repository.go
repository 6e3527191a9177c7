// Package memory keeps orders and menu items in process memory. It backs the
// "memory" storage driver and the tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
)

type orderRepository struct {
	mu      sync.RWMutex
	orders  map[string]*domain.Order
	history map[string][]*domain.StatusLog
	logSeq  int
	now     func() time.Time
}

func NewOrderRepository() interfaces.OrderRepository {
	return &orderRepository{
		orders:  make(map[string]*domain.Order),
		history: make(map[string][]*domain.StatusLog),
		now:     time.Now,
	}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		return fmt.Errorf("order id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order %s already exists", order.ID)
	}
	r.orders[order.ID] = order.Clone()
	r.appendLogLocked(order.ID, order.Status, "order-service", order.CreatedAt)
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	return order.Clone(), nil
}

// UpdateStatus overwrites the status unconditionally, last writer wins.
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, changedBy string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}

	now := r.now()
	order.Status = status
	order.UpdatedAt = now
	r.appendLogLocked(id, status, changedBy, now)

	return order.Clone(), nil
}

func (r *orderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	return r.filter(func(*domain.Order) bool { return true }), nil
}

func (r *orderRepository) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	return r.filter(func(o *domain.Order) bool { return o.Status == status }), nil
}

func (r *orderRepository) GetStatusHistory(ctx context.Context, orderID string) ([]*domain.StatusLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logs := r.history[orderID]
	out := make([]*domain.StatusLog, len(logs))
	for i, l := range logs {
		cp := *l
		out[i] = &cp
	}
	return out, nil
}

func (r *orderRepository) filter(keep func(*domain.Order) bool) []*domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	// Новые заказы первыми
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *orderRepository) appendLogLocked(orderID string, status domain.Status, changedBy string, at time.Time) {
	r.logSeq++
	r.history[orderID] = append(r.history[orderID], &domain.StatusLog{
		ID:        r.logSeq,
		OrderID:   orderID,
		Status:    status,
		ChangedBy: changedBy,
		ChangedAt: at,
	})
}

package tracking

import (
	"context"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
)

type Service struct {
	orderRepo interfaces.OrderRepository
	logger    logger.Logger
}

func NewService(orderRepo interfaces.OrderRepository, logger logger.Logger) *Service {
	return &Service{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

// ListOrders returns orders newest first, optionally only those in status.
func (s *Service) ListOrders(ctx context.Context, status *domain.Status) ([]*domain.Order, error) {
	var (
		orders []*domain.Order
		err    error
	)
	if status != nil {
		orders, err = s.orderRepo.FindByStatus(ctx, *status)
	} else {
		orders, err = s.orderRepo.FindAll(ctx)
	}
	if err != nil {
		s.logger.Error("orders_list_failed", "Failed to fetch orders", "", nil, err)
		return nil, err
	}
	return orders, nil
}

func (s *Service) GetOrderHistory(ctx context.Context, id string) ([]*domain.StatusLog, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetStatusHistory(ctx, order.ID)
}

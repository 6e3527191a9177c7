package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/adapter/metrics"
	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
	"github.com/google/uuid"
)

type Service struct {
	repo      interfaces.OrderRepository
	menu      interfaces.MenuRepository
	scheduler interfaces.ProgressionScheduler
	logger    logger.Logger
	now       func() time.Time
}

func NewService(
	repo interfaces.OrderRepository,
	menu interfaces.MenuRepository,
	scheduler interfaces.ProgressionScheduler,
	logger logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		menu:      menu,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*interfaces.CreateOrderResult, error) {
	// 1. Валидация входных данных до обращения к хранилищу
	if err := validateCommand(cmd); err != nil {
		s.logger.Debug("validation_failed", "Order validation failed", "", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	// 2. Проверка, что все блюда существуют
	menuItems, err := s.resolveMenuItems(ctx, cmd.Items)
	if err != nil {
		return nil, err
	}

	// 3. Снимок имени и цены на момент заказа
	items := make([]domain.OrderItem, len(cmd.Items))
	for i, it := range cmd.Items {
		m := menuItems[it.MenuItemID]
		items[i] = domain.OrderItem{
			MenuItemID: m.ID,
			Name:       m.Name,
			Price:      m.Price,
			Quantity:   it.Quantity,
		}
	}

	order, err := domain.NewOrder(cmd.Customer, items, s.now())
	if err != nil {
		s.logger.Debug("validation_failed", "Order validation failed", "", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	order.ID = uuid.NewString()

	// 4. Сохранение
	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.Error("db_transaction_failed", "Failed to create order", "", nil, err)
		return nil, err
	}
	metrics.OrderCreated()

	s.logger.Info("order_created", fmt.Sprintf("Order created: %s", order.ID), "", map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total.StringFixed(2),
		"items":    len(order.Items),
	})

	// 5. Запуск прогрессии статусов, не блокирует ответ
	s.scheduler.Arm(order.ID)

	return &interfaces.CreateOrderResult{
		OrderID: order.ID,
		Status:  order.Status,
		Total:   order.Total,
	}, nil
}

func (s *Service) resolveMenuItems(ctx context.Context, items []interfaces.CreateOrderItemCommand) (map[string]*domain.MenuItem, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.MenuItemID]; ok {
			continue
		}
		seen[it.MenuItemID] = struct{}{}
		ids = append(ids, it.MenuItemID)
	}

	found, err := s.menu.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("menu_lookup_failed", "Failed to resolve menu items", "", nil, err)
		return nil, fmt.Errorf("failed to resolve menu items: %w", err)
	}

	byID := make(map[string]*domain.MenuItem, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}

	if len(byID) != len(ids) {
		var missing []string
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				missing = append(missing, id)
			}
		}
		s.logger.Debug("menu_items_missing", "Some menu items not found", "", map[string]interface{}{"missing": missing})
		return nil, fmt.Errorf("%w: %s", domain.ErrReferenceNotFound, strings.Join(missing, ", "))
	}

	return byID, nil
}

func validateCommand(cmd interfaces.CreateOrderCommand) error {
	ve := &domain.ValidationError{}
	cmd.Customer.Normalize().Validate(ve)

	if len(cmd.Items) == 0 {
		ve.Add("items", "order must contain at least one item")
	}
	for i, it := range cmd.Items {
		if !domain.IsValidID(it.MenuItemID) {
			ve.Add(fmt.Sprintf("items[%d].menuItemId", i), "invalid menu item ID")
		}
		if it.Quantity < 1 {
			ve.Add(fmt.Sprintf("items[%d].quantity", i), "quantity must be at least 1")
		}
	}

	return ve.Err()
}

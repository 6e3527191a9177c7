package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	repo   interfaces.MenuRepository
	logger logger.Logger
	now    func() time.Time
}

func NewService(repo interfaces.MenuRepository, logger logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) ListMenu(ctx context.Context) ([]*domain.MenuItem, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("menu_list_failed", "Failed to fetch menu items", "", nil, err)
		return nil, err
	}
	return items, nil
}

func (s *Service) GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	return s.repo.FindByID(ctx, id)
}

// GetMenuItemsByIDs returns the items that exist; unknown ids are left out.
func (s *Service) GetMenuItemsByIDs(ctx context.Context, ids []string) ([]*domain.MenuItem, error) {
	if len(ids) == 0 {
		return []*domain.MenuItem{}, nil
	}
	return s.repo.FindByIDs(ctx, ids)
}

func (s *Service) CreateMenuItem(ctx context.Context, cmd interfaces.CreateMenuItemCommand) (*domain.MenuItem, error) {
	item, err := domain.NewMenuItem(cmd.Name, cmd.Description, cmd.Price, cmd.Image, s.now())
	if err != nil {
		return nil, err
	}
	item.ID = uuid.NewString()

	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.Error("menu_create_failed", "Failed to create menu item", "", map[string]interface{}{"name": item.Name}, err)
		return nil, err
	}

	s.logger.Info("menu_item_created", fmt.Sprintf("Menu item created: %s", item.Name), "", map[string]interface{}{
		"menu_item_id": item.ID,
		"price":        item.Price.StringFixed(2),
	})
	return item, nil
}

// UpdateMenuItem edits a menu item. Orders already placed keep the name and
// price they were created with.
func (s *Service) UpdateMenuItem(ctx context.Context, id string, cmd interfaces.UpdateMenuItemCommand) (*domain.MenuItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		item.Name = *cmd.Name
	}
	if cmd.Description != nil {
		item.Description = *cmd.Description
	}
	if cmd.Price != nil {
		item.Price = *cmd.Price
	}
	if cmd.Image != nil {
		item.Image = *cmd.Image
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	item.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, item); err != nil {
		s.logger.Error("menu_update_failed", "Failed to update menu item", "", map[string]interface{}{"menu_item_id": id}, err)
		return nil, err
	}

	s.logger.Info("menu_item_updated", fmt.Sprintf("Menu item updated: %s", item.Name), "", map[string]interface{}{
		"menu_item_id": item.ID,
	})
	return item, nil
}

// Seed fills an empty menu with the sample dishes and returns how many were
// inserted. A menu that already has items is left alone.
func (s *Service) Seed(ctx context.Context) (int, error) {
	existing, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read menu: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info("seed_skipped", "Menu already has items, seed skipped", "", map[string]interface{}{"items": len(existing)})
		return 0, nil
	}

	now := s.now()
	for i, d := range sampleMenu {
		// Разные CreatedAt, чтобы порядок меню был стабильным
		item, err := domain.NewMenuItem(d.name, d.description, decimal.RequireFromString(d.price), d.image, now.Add(time.Duration(i)*time.Millisecond))
		if err != nil {
			return i, fmt.Errorf("invalid sample item %q: %w", d.name, err)
		}
		item.ID = uuid.NewString()
		if err := s.repo.Create(ctx, item); err != nil {
			return i, fmt.Errorf("failed to insert %q: %w", d.name, err)
		}
	}

	s.logger.Info("menu_seeded", fmt.Sprintf("Created %d menu items", len(sampleMenu)), "", nil)
	return len(sampleMenu), nil
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
)

type menuRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.MenuItem
}

func NewMenuRepository() interfaces.MenuRepository {
	return &menuRepository{items: make(map[string]*domain.MenuItem)}
}

func (r *menuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	if item.ID == "" {
		return fmt.Errorf("menu item id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("menu item %s already exists", item.ID)
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *menuRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("menu item %s: %w", item.ID, domain.ErrNotFound)
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *menuRepository) FindByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("menu item %s: %w", id, domain.ErrNotFound)
	}
	cp := *item
	return &cp, nil
}

func (r *menuRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(ids))
	out := make([]*domain.MenuItem, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if item, ok := r.items[id]; ok {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *menuRepository) FindAll(ctx context.Context) ([]*domain.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.MenuItem, 0, len(r.items))
	for _, item := range r.items {
		cp := *item
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

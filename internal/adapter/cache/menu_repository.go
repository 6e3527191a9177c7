package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
)

const (
	opMenuItem = "menu_item"
	opMenuAll  = "menu"
)

type cachedMenuRepository struct {
	next   interfaces.MenuRepository
	cache  Cache
	ttl    time.Duration
	logger logger.Logger
}

// NewCachedMenuRepository caches FindByID and FindAll. FindByIDs always hits
// the underlying store so orders are priced from current data. Cache failures
// are logged and the store answers instead.
func NewCachedMenuRepository(next interfaces.MenuRepository, cache Cache, ttl time.Duration, logger logger.Logger) interfaces.MenuRepository {
	return &cachedMenuRepository{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (r *cachedMenuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	if err := r.next.Create(ctx, item); err != nil {
		return err
	}
	r.invalidate(ctx, r.cache.GenerateKey(opMenuAll, "all"))
	return nil
}

func (r *cachedMenuRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	if err := r.next.Update(ctx, item); err != nil {
		return err
	}
	r.invalidate(ctx,
		r.cache.GenerateKey(opMenuItem, item.ID),
		r.cache.GenerateKey(opMenuAll, "all"),
	)
	return nil
}

func (r *cachedMenuRepository) FindByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	key := r.cache.GenerateKey(opMenuItem, id)

	var item domain.MenuItem
	if r.lookup(ctx, key, &item) {
		return &item, nil
	}

	found, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, found)
	return found, nil
}

func (r *cachedMenuRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.MenuItem, error) {
	return r.next.FindByIDs(ctx, ids)
}

func (r *cachedMenuRepository) FindAll(ctx context.Context) ([]*domain.MenuItem, error) {
	key := r.cache.GenerateKey(opMenuAll, "all")

	var items []*domain.MenuItem
	if r.lookup(ctx, key, &items) {
		return items, nil
	}

	found, err := r.next.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, found)
	return found, nil
}

func (r *cachedMenuRepository) lookup(ctx context.Context, key string, dest interface{}) bool {
	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("cache_get_failed", "Failed to read menu cache", "", map[string]interface{}{"key": key})
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		r.logger.Warn("cache_decode_failed", "Corrupt menu cache entry ignored", "", map[string]interface{}{"key": key})
		return false
	}
	return true
}

func (r *cachedMenuRepository) store(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, raw, r.ttl); err != nil {
		r.logger.Warn("cache_set_failed", "Failed to write menu cache", "", map[string]interface{}{"key": key})
	}
}

func (r *cachedMenuRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.logger.Error("cache_invalidate_failed", "Failed to invalidate menu cache", "", map[string]interface{}{"keys": keys}, err)
	}
}

package postgres

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
)

const menuColumns = `id, name, description, price_cents, image, created_at, updated_at`

type menuRepository struct {
	db DB
}

func NewMenuRepository(db DB) interfaces.MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	query := `
		INSERT INTO menu_items (id, name, description, price_cents, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		item.ID, item.Name, item.Description, toCents(item.Price), item.Image, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return storeError("failed to create menu item", err)
	}
	return nil
}

func (r *menuRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	query := `
		UPDATE menu_items
		SET name = $1, description = $2, price_cents = $3, image = $4, updated_at = $5
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, query,
		item.Name, item.Description, toCents(item.Price), item.Image, item.UpdatedAt, item.ID,
	)
	if err != nil {
		return storeError("failed to update menu item", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("menu item %s: %w", item.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *menuRepository) FindByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	query := `SELECT ` + menuColumns + ` FROM menu_items WHERE id = $1`

	item, err := scanMenuItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, storeError("failed to find menu item", err)
	}
	return item, nil
}

// FindByIDs returns the subset of ids that exist.
func (r *menuRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.MenuItem, error) {
	if len(ids) == 0 {
		return []*domain.MenuItem{}, nil
	}
	query := `SELECT ` + menuColumns + ` FROM menu_items WHERE id = ANY($1)`
	return r.list(ctx, query, ids)
}

func (r *menuRepository) FindAll(ctx context.Context) ([]*domain.MenuItem, error) {
	query := `SELECT ` + menuColumns + ` FROM menu_items ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *menuRepository) list(ctx context.Context, query string, args ...any) ([]*domain.MenuItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("failed to query menu items", err)
	}
	defer rows.Close()

	items := []*domain.MenuItem{}
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, storeError("failed to scan menu item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("failed to read menu items", err)
	}
	return items, nil
}

func scanMenuItem(row Row) (*domain.MenuItem, error) {
	var (
		item       domain.MenuItem
		priceCents int64
	)
	err := row.Scan(&item.ID, &item.Name, &item.Description, &priceCents, &item.Image, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Price = fromCents(priceCents)
	return &item, nil
}

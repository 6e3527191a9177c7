package postgres

import (
	"context"
	"time"

	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
)

const orderColumns = `id, customer_name, customer_address, customer_phone, total_cents, status, created_at, updated_at`

type orderRepository struct {
	db  DB
	now func() time.Time
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db, now: time.Now}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storeError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (id, customer_name, customer_address, customer_phone,
		                    total_cents, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.Exec(ctx, query,
		order.ID, order.Customer.Name, order.Customer.Address, order.Customer.Phone,
		toCents(order.Total), order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return storeError("failed to insert order", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, position, menu_item_id, name, price_cents, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, item := range order.Items {
		_, err = tx.Exec(ctx, itemQuery,
			order.ID, i, item.MenuItemID, item.Name, toCents(item.Price), item.Quantity,
		)
		if err != nil {
			return storeError("failed to insert order item", err)
		}
	}

	// Начальный статус в журнал
	logQuery := `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err = tx.Exec(ctx, logQuery, order.ID, order.Status, "order-service", order.CreatedAt); err != nil {
		return storeError("failed to log status", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeError("failed to commit order", err)
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, storeError("failed to find order", err)
	}

	if err := r.loadItems(ctx, r.db, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus writes status without checking the current one. Concurrent
// writers resolve as last writer wins.
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, changedBy string) (*domain.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, storeError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	now := r.now()
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + orderColumns

	order, err := scanOrder(tx.QueryRow(ctx, query, status, now, id))
	if err != nil {
		return nil, storeError("failed to update order status", err)
	}

	logQuery := `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, logQuery, id, status, changedBy, now); err != nil {
		return nil, storeError("failed to log status", err)
	}

	if err := r.loadItems(ctx, tx, []*domain.Order{order}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeError("failed to commit status update", err)
	}
	return order, nil
}

func (r *orderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *orderRepository) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, status)
}

func (r *orderRepository) GetStatusHistory(ctx context.Context, orderID string) ([]*domain.StatusLog, error) {
	query := `
		SELECT id, order_id, status, changed_by, changed_at
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, storeError("failed to query status history", err)
	}
	defer rows.Close()

	logs := []*domain.StatusLog{}
	for rows.Next() {
		var log domain.StatusLog
		if err := rows.Scan(&log.ID, &log.OrderID, &log.Status, &log.ChangedBy, &log.ChangedAt); err != nil {
			return nil, storeError("failed to scan status log", err)
		}
		logs = append(logs, &log)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("failed to read status history", err)
	}

	return logs, nil
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("failed to query orders", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, storeError("failed to scan order", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("failed to read orders", err)
	}
	rows.Close()

	if err := r.loadItems(ctx, r.db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// loadItems fills the line items of orders with a single query.
func (r *orderRepository) loadItems(ctx context.Context, q querier, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
		o.Items = []domain.OrderItem{}
	}

	query := `
		SELECT order_id, menu_item_id, name, price_cents, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return storeError("failed to query order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID    string
			item       domain.OrderItem
			priceCents int64
		)
		if err := rows.Scan(&orderID, &item.MenuItemID, &item.Name, &priceCents, &item.Quantity); err != nil {
			return storeError("failed to scan order item", err)
		}
		item.Price = fromCents(priceCents)
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return storeError("failed to read order items", err)
	}
	return nil
}

func scanOrder(row Row) (*domain.Order, error) {
	var (
		order      domain.Order
		totalCents int64
	)
	err := row.Scan(
		&order.ID, &order.Customer.Name, &order.Customer.Address, &order.Customer.Phone,
		&totalCents, &order.Status, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Total = fromCents(totalCents)
	return &order, nil
}

package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/adapter/memory"
	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, svc *Service, id string, at time.Time) {
	t.Helper()
	order, err := domain.NewOrder(
		domain.Customer{Name: "Ann", Address: "2 Side St", Phone: "5551234"},
		[]domain.OrderItem{{MenuItemID: "m", Name: "Cake", Price: decimal.RequireFromString("7.99"), Quantity: 1}},
		at,
	)
	require.NoError(t, err)
	order.ID = id
	require.NoError(t, svc.orderRepo.Create(context.Background(), order))
}

func TestService_ListOrders(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewOrderRepository(), logger.Nop())
	now := time.Now()

	seed(t, svc, "first", now.Add(-time.Minute))
	seed(t, svc, "second", now)
	_, err := svc.orderRepo.UpdateStatus(ctx, "first", domain.StatusPreparing, "scheduler")
	require.NoError(t, err)

	all, err := svc.ListOrders(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].ID)

	preparing := domain.StatusPreparing
	filtered, err := svc.ListOrders(ctx, &preparing)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "first", filtered[0].ID)
}

func TestService_GetOrderAndHistory(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewOrderRepository(), logger.Nop())
	seed(t, svc, "o1", time.Now())

	order, err := svc.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReceived, order.Status)

	_, err = svc.orderRepo.UpdateStatus(ctx, "o1", domain.StatusPreparing, "scheduler")
	require.NoError(t, err)

	history, err := svc.GetOrderHistory(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.StatusReceived, history[0].Status)
	assert.Equal(t, domain.StatusPreparing, history[1].Status)

	_, err = svc.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetOrderHistory(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/adapter/memory"
	"github.com/YelzhanWeb/food-delivery/internal/app/catalog"
	"github.com/YelzhanWeb/food-delivery/internal/app/order"
	"github.com/YelzhanWeb/food-delivery/internal/app/tracking"
	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type noopScheduler struct {
	mu    sync.Mutex
	armed []string
}

func (s *noopScheduler) Arm(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed = append(s.armed, orderID)
}

type testServer struct {
	handler http.Handler
	orders  interfaces.OrderRepository
	menu    []*domain.MenuItem
	sched   *noopScheduler
}

func newTestServer(t *testing.T, limiter *rate.Limiter) *testServer {
	t.Helper()
	ctx := context.Background()

	menuRepo := memory.NewMenuRepository()
	orderRepo := memory.NewOrderRepository()
	cat := catalog.NewService(menuRepo, logger.Nop())
	_, err := cat.Seed(ctx)
	require.NoError(t, err)
	items, err := cat.ListMenu(ctx)
	require.NoError(t, err)

	sched := &noopScheduler{}
	h := NewRouter(RouterDeps{
		Orders:        order.NewService(orderRepo, menuRepo, sched, logger.Nop()),
		Tracking:      tracking.NewService(orderRepo, logger.Nop()),
		Catalog:       cat,
		Logger:        logger.Nop(),
		Environment:   "test",
		Pending:       func() int { return 3 },
		CreateLimiter: limiter,
	})

	return &testServer{handler: h, orders: orderRepo, menu: items, sched: sched}
}

func (s *testServer) menuItem(t *testing.T, name string) *domain.MenuItem {
	t.Helper()
	for _, m := range s.menu {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("menu item %q not seeded", name)
	return nil
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func orderBody(items ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"customer": map[string]interface{}{
			"name":    "John Doe",
			"address": "123 Main St",
			"phone":   "+1234567890",
		},
		"items": items,
	}
}

func item(id string, qty int) map[string]interface{} {
	return map[string]interface{}{"menuItemId": id, "quantity": qty}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "test", body["environment"])
	assert.Equal(t, float64(3), body["pendingProgressions"])
}

func TestCreateOrder(t *testing.T) {
	s := newTestServer(t, nil)
	pizza := s.menuItem(t, "Margherita Pizza")
	burger := s.menuItem(t, "Chicken Burger")

	rec := s.do(t, http.MethodPost, "/api/orders", orderBody(item(pizza.ID, 2), item(burger.ID, 1)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"total":44.97`)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Order Received", data["status"])

	orderID := data["orderId"].(string)
	assert.Equal(t, []string{orderID}, s.sched.armed)

	rec = s.do(t, http.MethodGet, "/api/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, orderID, got["id"])
	assert.Len(t, got["items"], 2)
	assert.Equal(t, "John Doe", got["customer"].(map[string]interface{})["name"])
}

func TestCreateOrder_ValidationErrors(t *testing.T) {
	s := newTestServer(t, nil)
	pizza := s.menuItem(t, "Margherita Pizza")

	body := orderBody(item(pizza.ID, 1))
	body["customer"].(map[string]interface{})["phone"] = "abc"

	rec := s.do(t, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Validation error", resp.Message)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "customer.phone", resp.Errors[0].Field)

	all, err := s.orders.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateOrder_UnknownMenuItem(t *testing.T) {
	s := newTestServer(t, nil)
	pizza := s.menuItem(t, "Margherita Pizza")

	rec := s.do(t, http.MethodPost, "/api/orders", orderBody(item(pizza.ID, 1), item(uuid.NewString(), 1)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Some menu items not found", decode(t, rec)["message"])
	assert.Empty(t, s.sched.armed)
}

func TestCreateOrder_MalformedBody(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/orders", `{"customer":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode(t, rec)["message"])
}

func TestCreateOrder_RateLimited(t *testing.T) {
	s := newTestServer(t, rate.NewLimiter(0, 1))
	pizza := s.menuItem(t, "Margherita Pizza")

	rec := s.do(t, http.MethodPost, "/api/orders", orderBody(item(pizza.ID, 1)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/orders", orderBody(item(pizza.ID, 1)))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// чтение не ограничено
	rec = s.do(t, http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetOrder_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/orders/not-an-id", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid ID format", decode(t, rec)["message"])

	rec = s.do(t, http.MethodGet, "/api/orders/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", decode(t, rec)["message"])

	rec = s.do(t, http.MethodGet, "/api/orders/"+uuid.NewString()+"/history", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrdersAndHistory(t *testing.T) {
	s := newTestServer(t, nil)
	pizza := s.menuItem(t, "Margherita Pizza")

	var ids []string
	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/api/orders", orderBody(item(pizza.ID, 1)))
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, decode(t, rec)["data"].(map[string]interface{})["orderId"].(string))
	}
	_, err := s.orders.UpdateStatus(context.Background(), ids[0], domain.StatusPreparing, "scheduler")
	require.NoError(t, err)

	rec := s.do(t, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 2)

	rec = s.do(t, http.MethodGet, "/api/orders?status=Preparing", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, ids[0], data[0].(map[string]interface{})["id"])

	rec = s.do(t, http.MethodGet, "/api/orders?status=Cooking", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/orders/"+ids[0]+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode(t, rec)["data"].([]interface{})
	require.Len(t, history, 2)
	assert.Equal(t, "Order Received", history[0].(map[string]interface{})["status"])
	assert.Equal(t, "scheduler", history[1].(map[string]interface{})["changedBy"])
}

func TestMenuEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/menu", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 8)

	cake := s.menuItem(t, "Chocolate Cake")
	rec = s.do(t, http.MethodGet, "/api/menu/"+cake.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price":7.99`)

	rec = s.do(t, http.MethodGet, "/api/menu/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Menu item not found", decode(t, rec)["message"])

	rec = s.do(t, http.MethodGet, "/api/menu/123", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/menu/"+strings.ToUpper(cake.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid ID format", decode(t, rec)["message"])

	rec = s.do(t, http.MethodPost, "/api/menu", `{"name":"Ramen","description":"Pork broth","price":13.5,"image":"ramen.jpg"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"price":13.50`)

	rec = s.do(t, http.MethodPost, "/api/menu", `{"name":"Ramen","description":"Pork broth","image":"ramen.jpg"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"field":"price"`))

	rec = s.do(t, http.MethodPatch, "/api/menu/"+cake.ID, `{"price":8.25}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"price":8.25`)
	assert.Contains(t, rec.Body.String(), `"name":"Chocolate Cake"`)

	rec = s.do(t, http.MethodPatch, "/api/menu/"+uuid.NewString(), `{"price":8.25}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/menu/"+cake.ID, `{"price":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/menu/"+cake.ID, `{"price":1.005}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"price"`)

	rec = s.do(t, http.MethodPost, "/api/menu", `{"name":"Tea","description":"Black tea","price":1.005,"image":"tea.jpg"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"price"`)

	rec = s.do(t, http.MethodGet, "/api/menu/"+cake.ID, nil)
	assert.Contains(t, rec.Body.String(), `"price":8.25`)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

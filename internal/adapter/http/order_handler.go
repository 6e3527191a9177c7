package http

import (
	"encoding/json"
	"net/http"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
	"github.com/go-chi/chi/v5/middleware"
)

type OrderHandler struct {
	service interfaces.OrderService
	logger  logger.Logger
}

func NewOrderHandler(service interfaces.OrderService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	cmd := interfaces.CreateOrderCommand{
		Customer: domain.Customer{
			Name:    req.Customer.Name,
			Address: req.Customer.Address,
			Phone:   req.Customer.Phone,
		},
		Items: make([]interfaces.CreateOrderItemCommand, len(req.Items)),
	}
	for i, item := range req.Items {
		cmd.Items[i] = interfaces.CreateOrderItemCommand{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
		}
	}

	result, err := h.service.CreateOrder(r.Context(), cmd)
	if err != nil {
		h.logger.Debug("order_creation_failed", "Failed to create order", middleware.GetReqID(r.Context()), map[string]interface{}{
			"error": err.Error(),
		})
		respondServiceError(w, r, h.logger, err, "Order not found")
		return
	}

	respondJSON(w, http.StatusCreated, CreateOrderResponse{
		OrderID: result.OrderID,
		Status:  result.Status,
		Total:   money(result.Total),
	})
}

package http

import (
	"net/http"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
	"github.com/go-chi/chi/v5"
)

type TrackingHandler struct {
	service interfaces.TrackingService
	logger  logger.Logger
}

func NewTrackingHandler(service interfaces.TrackingService, logger logger.Logger) *TrackingHandler {
	return &TrackingHandler{
		service: service,
		logger:  logger,
	}
}

// ListOrders handles GET /api/orders with an optional ?status= filter.
func (h *TrackingHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var filter *domain.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			respondError(w, "Validation error", http.StatusBadRequest, []domain.FieldError{
				{Field: "status", Message: "unknown order status"},
			})
			return
		}
		filter = &status
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Order not found")
		return
	}

	resp := make([]OrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *TrackingHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Order not found")
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *TrackingHandler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.GetOrderHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Order not found")
		return
	}

	resp := make([]StatusLogResponse, len(history))
	for i, entry := range history {
		resp[i] = StatusLogResponse{
			Status:    entry.Status,
			ChangedBy: entry.ChangedBy,
			ChangedAt: entry.ChangedAt,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

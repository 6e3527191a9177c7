package http

import (
	"encoding/json"
	"net/http"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type MenuHandler struct {
	service interfaces.CatalogService
	logger  logger.Logger
}

func NewMenuHandler(service interfaces.CatalogService, logger logger.Logger) *MenuHandler {
	return &MenuHandler{
		service: service,
		logger:  logger,
	}
}

func (h *MenuHandler) ListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMenu(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Menu item not found")
		return
	}

	resp := make([]MenuItemResponse, len(items))
	for i, item := range items {
		resp[i] = toMenuItemResponse(item)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *MenuHandler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetMenuItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Menu item not found")
		return
	}
	respondJSON(w, http.StatusOK, toMenuItemResponse(item))
}

func (h *MenuHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req CreateMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if req.Price == "" {
		respondError(w, "Validation error", http.StatusBadRequest, []domain.FieldError{
			{Field: "price", Message: "price is required"},
		})
		return
	}
	price, err := decimal.NewFromString(req.Price.String())
	if err != nil {
		respondError(w, "Validation error", http.StatusBadRequest, []domain.FieldError{
			{Field: "price", Message: "price must be a number"},
		})
		return
	}

	item, err := h.service.CreateMenuItem(r.Context(), interfaces.CreateMenuItemCommand{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Image:       req.Image,
	})
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Menu item not found")
		return
	}
	respondJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

func (h *MenuHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	cmd := interfaces.UpdateMenuItemCommand{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(req.Price.String())
		if err != nil {
			respondError(w, "Validation error", http.StatusBadRequest, []domain.FieldError{
				{Field: "price", Message: "price must be a number"},
			})
			return
		}
		cmd.Price = &price
	}

	item, err := h.service.UpdateMenuItem(r.Context(), chi.URLParam(r, "id"), cmd)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Menu item not found")
		return
	}
	respondJSON(w, http.StatusOK, toMenuItemResponse(item))
}

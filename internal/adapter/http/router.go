package http

import (
	"net/http"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/adapter/metrics"
	"github.com/YelzhanWeb/food-delivery/internal/interfaces"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

type RouterDeps struct {
	Orders   interfaces.OrderService
	Tracking interfaces.TrackingService
	Catalog  interfaces.CatalogService
	Logger   logger.Logger

	// WebSocket endpoint, mounted at /ws when set.
	WebSocket http.Handler

	Environment string
	// Pending reports scheduled progressions for /health.
	Pending func() int
	// CreateLimiter throttles POST /api/orders; nil disables it.
	CreateLimiter *rate.Limiter
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RecoveryMiddleware(deps.Logger))
	r.Use(metrics.InstrumentHandler)
	r.Use(LoggingMiddleware(deps.Logger))

	health := NewHealthHandler(deps.Environment, deps.Pending)
	orders := NewOrderHandler(deps.Orders, deps.Logger)
	tracking := NewTrackingHandler(deps.Tracking, deps.Logger)
	menu := NewMenuHandler(deps.Catalog, deps.Logger)

	r.Get("/health", health.Health)
	r.Handle("/metrics", metrics.Handler())
	if deps.WebSocket != nil {
		r.Handle("/ws", deps.WebSocket)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/menu", func(r chi.Router) {
			r.Get("/", menu.ListMenu)
			r.Post("/", menu.CreateMenuItem)
			r.With(ValidateIDMiddleware).Get("/{id}", menu.GetMenuItem)
			r.With(ValidateIDMiddleware).Patch("/{id}", menu.UpdateMenuItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(RateLimitMiddleware(deps.CreateLimiter)).Post("/", orders.CreateOrder)
			r.Get("/", tracking.ListOrders)
			r.With(ValidateIDMiddleware).Get("/{id}", tracking.GetOrder)
			r.With(ValidateIDMiddleware).Get("/{id}/history", tracking.GetOrderHistory)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, "Route not found", http.StatusNotFound, nil)
	})

	return r
}

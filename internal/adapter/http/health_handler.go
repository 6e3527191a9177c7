package http

import (
	"encoding/json"
	"net/http"
	"time"
)

type HealthHandler struct {
	environment string
	pending     func() int
}

// NewHealthHandler reports liveness. pending may be nil.
func NewHealthHandler(environment string, pending func() int) *HealthHandler {
	return &HealthHandler{environment: environment, pending: pending}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":      "OK",
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
		"environment": h.environment,
	}
	if h.pending != nil {
		resp["pendingProgressions"] = h.pending()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

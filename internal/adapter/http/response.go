package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/YelzhanWeb/food-delivery/internal/adapter/logger"
	"github.com/YelzhanWeb/food-delivery/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
)

type successResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type ErrorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(successResponse{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, message string, statusCode int, fieldErrors []domain.FieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Message: message,
		Errors:  fieldErrors,
	})
}

// respondServiceError maps domain errors onto HTTP statuses. notFound is the
// message used for domain.ErrNotFound.
func respondServiceError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error, notFound string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, "Validation error", http.StatusBadRequest, ve.Errors)
	case errors.Is(err, domain.ErrReferenceNotFound):
		respondError(w, "Some menu items not found", http.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, notFound, http.StatusNotFound, nil)
	default:
		log.Error("request_failed", "Request failed", middleware.GetReqID(r.Context()), map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		}, err)
		respondError(w, "Internal server error", http.StatusInternalServerError, nil)
	}
}

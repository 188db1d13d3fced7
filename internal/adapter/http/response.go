package http

import (
	"encoding/json"
	"net/http"

	"github.com/YelzhanWeb/storefront/internal/domain"
)

type ErrorResponse struct {
	Error    string                   `json:"error"`
	Errors   []domain.ValidationError `json:"errors,omitempty"`
	Checkout *CheckoutResponse        `json:"checkout,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, message string, statusCode int, validationErrors []domain.ValidationError) {
	respondJSON(w, statusCode, ErrorResponse{
		Error:  message,
		Errors: validationErrors,
	})
}

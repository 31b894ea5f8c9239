package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/estate-manager/property-service/internal/property/domain"
)

// FieldError is one entry of the field-level error list returned for
// rejected write payloads.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// envelope is the uniform response body: {success, data?, message?,
// error?, errors?, pagination?}.
type envelope struct {
	Success    bool             `json:"success"`
	Data       interface{}      `json:"data,omitempty"`
	Message    string           `json:"message,omitempty"`
	Error      string           `json:"error,omitempty"`
	Errors     []FieldError     `json:"errors,omitempty"`
	Pagination *domain.PageInfo `json:"pagination,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondPage(w http.ResponseWriter, data interface{}, page domain.PageInfo) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Pagination: &page})
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	body := envelope{Success: false, Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	writeJSON(w, status, body)
}

func respondValidationErrors(w http.ResponseWriter, message string, errs []FieldError) {
	writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: message, Errors: errs})
}

// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/photoshare/service/internal/apperr"
)

// Envelope is the standard API response envelope.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 response with data.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with data.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Error writes an error response with the given status and message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Error: message})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden writes a 403 response.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Conflict writes a 409 response.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, message)
}

// InternalError writes a 500 response with a generic message.
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "internal server error")
}

// FromError maps a kinded application error to its HTTP status and message.
// Errors without a kind, and kinds that indicate a backend failure, are
// logged and rendered as a generic 500 so internal causes never leak.
func FromError(w http.ResponseWriter, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		log.Printf("response: unclassified error: %v", err)
		InternalError(w)
		return
	}

	switch e.Kind {
	case apperr.KindUnsupportedMediaType:
		Error(w, http.StatusUnsupportedMediaType, e.Message)
	case apperr.KindPayloadTooLarge:
		Error(w, http.StatusRequestEntityTooLarge, e.Message)
	case apperr.KindInvalidMetadata:
		BadRequest(w, e.Message)
	case apperr.KindStorageConflict:
		Conflict(w, e.Message)
	case apperr.KindNoSuchProfile:
		NotFound(w, e.Message)
	case apperr.KindNotOwner:
		Forbidden(w, e.Message)
	default:
		log.Printf("response: %v", e)
		InternalError(w)
	}
}

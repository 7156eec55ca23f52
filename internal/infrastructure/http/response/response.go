package response

import (
	"encoding/json"
	"net/http"
)

// Messages sent for errors that are not tied to a resource
const (
	MsgNotFound      = "Not found"
	MsgInternalError = "Internal server error"
)

// ErrorResponse is the body of a single-error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationResponse is the body of a 400 response
type ValidationResponse struct {
	Errors []string `json:"errors"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends {"error": msg}
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorResponse{Error: msg})
}

// ValidationErrors sends 400 with every validation message
func ValidationErrors(w http.ResponseWriter, messages []string) {
	if messages == nil {
		messages = []string{}
	}
	JSON(w, http.StatusBadRequest, ValidationResponse{Errors: messages})
}

// InternalError sends 500 without exposing the cause
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, MsgInternalError)
}

// NoContent sends 204 with an empty body
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// RouteNotFound answers unknown routes and unsupported methods
func RouteNotFound(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusNotFound, MsgNotFound)
}

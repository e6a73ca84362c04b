package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error sends an error response
func Error(w http.ResponseWriter, code int, message string) {
	JSON(w, code, ErrorBody{Error: message})
}

// ErrorWithCode sends an error response carrying a machine-readable code
func ErrorWithCode(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Error: message, Code: code})
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// NoContent sends a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// OK sends a 200 OK response with JSON body
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Accepted sends a 202 Accepted response with JSON body
func Accepted(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusAccepted, data)
}

// BadRequest sends a 400 Bad Request error
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// NotFound sends a 404 Not Found error
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Conflict sends a 409 Conflict error
func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, message)
}

// UnprocessableEntity sends a 422 Unprocessable Entity error
func UnprocessableEntity(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnprocessableEntity, message)
}

// BadGateway sends a 502 Bad Gateway error
func BadGateway(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadGateway, message)
}

// InternalError sends a 500 Internal Server Error
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}

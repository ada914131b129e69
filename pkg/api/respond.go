package api

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes data as a JSON response. A marshal failure degrades to a
// bare 500; the caller's logger sees it through the error middleware.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, `{"message":"Internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
}

// WriteValidationErrors writes the 400 payload carrying every violation.
func WriteValidationErrors(w http.ResponseWriter, violations []string) {
	WriteJSON(w, http.StatusBadRequest, ValidationErrorResponse{Errors: violations})
}

// WriteMessage writes a {"message": ...} payload, used for 404s.
func WriteMessage(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, MessageResponse{Message: message})
}

// WriteInternalError writes the 500 payload. Only the correlation id goes to
// the client; the underlying error stays in the server log.
func WriteInternalError(w http.ResponseWriter, requestID string) {
	WriteJSON(w, http.StatusInternalServerError, MessageResponse{
		Message:   "Internal server error",
		RequestID: requestID,
	})
}

// WriteNoContent writes a body-less 204. No Content-Type is set since there
// is nothing to describe.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

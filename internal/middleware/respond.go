package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hrmslite/hrmslite/internal/handler/dto"
)

// writeError writes the failure envelope with an empty errors object.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.Fail(message, nil))
}

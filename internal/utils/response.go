package utils

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// JSONError writes an error under the "message" key, the shape the focus
// frontend expects for every failure.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// Package handlers provides shared HTTP response helpers for JSON APIs.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as {"error": "<message>"} with the
// given status code.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("request failed", "status", status, "error", err)
	RespondJSON(w, status, errorResponse{Error: err.Error()})
}

package errors

import (
	"encoding/json"
	"net/http"
)

// APIError is the JSON body every failed request carries.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RateLimitError extends APIError with the wait hint for 429 responses.
type RateLimitError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RetryAfterSec int64  `json:"retry_after_sec"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/http/middleware"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
)

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// writeJSON renders payload. Tracker state changes every poll, so responses
// are never cached.
func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error(logger, "failed to encode response", err, slog.Int(logging.FieldStatusCode, status))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	writeJSON(w, status, errorBody{Error: message, RequestID: requestID(r)}, logger)
}

// requestID prefers the sanitized ID set by the middleware over the raw header.
func requestID(r *http.Request) string {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

// decodeBody reads at most limit bytes of JSON into dest.
func decodeBody(w http.ResponseWriter, r *http.Request, dest any, limit int64) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(dest)
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string, logger *slog.Logger) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", logger)
	return false
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}

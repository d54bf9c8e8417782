package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// clientIP extracts the client IP, considering proxies.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if i := strings.IndexByte(ip, ','); i >= 0 {
			return strings.TrimSpace(ip[:i])
		}
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// writeJSON renders v as the response body.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", "error", err, "url", r.URL.Path)
	}
}

// reportError logs err and answers 500; report failures are atomic, so
// there is never a partial payload to salvage.
func reportError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Report computation failed", "error", err, "url", r.URL.Path)
	http.Error(w, "report computation failed", http.StatusInternalServerError)
}

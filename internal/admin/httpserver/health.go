package httpserver

import (
	"net/http"
	"time"

	"finitefield.org/tours-admin/internal/platform/httpx"
)

// healthHandler responds with a simple status payload for readiness checks.
func healthHandler(started time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"uptime":    time.Since(started).Round(time.Second).String(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

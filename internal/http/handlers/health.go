package handlers

import (
	"net/http"

	"graphgen/internal/middleware"
	"graphgen/internal/view"
)

// Health reports liveness. The server is live even when the backend is not
// configured; see Ready.
func (a *App) Health(w http.ResponseWriter, _ *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "mode": a.Mode})
}

// Ready answers 503 while submissions would be rejected for missing backend
// configuration.
func (a *App) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.Controller.Ready(); err != nil {
		a.json(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"mode":    a.Mode,
			"error":   errorCode(err),
			"message": view.ErrorMessage(err, middleware.LocaleFromContext(r.Context())),
		})
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ready", "mode": a.Mode})
}

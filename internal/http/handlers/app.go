package handlers

import (
	"encoding/json"
	"net/http"

	"graphgen/internal/generation"
	"graphgen/internal/infra"
)

// App carries the dependencies shared by the HTTP handlers. One controller
// backs the whole server: it is the single generation session.
type App struct {
	Controller *generation.Controller
	Mode       string
	Logger     *infra.Logger
}

func NewApp(ctrl *generation.Controller, mode string, logger *infra.Logger) *App {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &App{Controller: ctrl, Mode: mode, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.Logger.Warn().Err(err).Msg("handlers: encode response")
	}
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

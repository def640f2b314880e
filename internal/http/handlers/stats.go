package handlers

import (
	"net/http"
)

func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	s := a.Controller.Stats()
	a.json(w, http.StatusOK, map[string]any{
		"mode":             a.Mode,
		"submitted":        s.Submitted,
		"rejected":         s.Rejected,
		"conflicts":        s.Conflicts,
		"succeeded":        s.Succeeded,
		"failed":           s.Failed,
		"last_duration_ms": s.LastDuration.Milliseconds(),
	})
}

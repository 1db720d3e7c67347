package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"projects": len(a.Registry.Projects()),
		"journal":  a.Journal != nil,
	})
}

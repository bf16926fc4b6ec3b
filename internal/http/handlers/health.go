package handlers

import (
	"net/http"

	"fitroom/internal/providers/tryon"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	mode := a.Config.TryOnMode
	if mode == "" {
		mode = tryon.ModeStub
	}
	a.json(w, http.StatusOK, map[string]string{
		"status": "ok",
		"mode":   mode,
	})
}

package api

import (
	"net/http"

	"github.com/vytor/flashdeck/internal/models"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.SettingsService.GetSettings(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var update models.UserSettingsUpdate
	if err := decodeJSON(r, &update); err != nil {
		handleError(w, r, err)
		return
	}
	settings, err := s.SettingsService.UpdateSettings(r.Context(), userFromContext(r.Context()), update)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

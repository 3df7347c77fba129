package api

import (
	"net/http"
	"strconv"

	"github.com/vytor/flashdeck/internal/errors"
)

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.StatsService.UserStats(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.StatsService.Dashboard(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleUpcomingReviews(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			handleError(w, r, errors.NewBadRequestError("invalid limit: "+raw))
			return
		}
		limit = v
	}
	upcoming, err := s.StatsService.UpcomingReviews(r.Context(), userFromContext(r.Context()), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, upcoming)
}

func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	if err := s.StatsService.ResetProgress(r.Context(), userFromContext(r.Context())); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.StatsService.DeleteAccount(r.Context(), userFromContext(r.Context())); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

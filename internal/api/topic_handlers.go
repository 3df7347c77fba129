package api

import (
	"net/http"

	"github.com/vytor/flashdeck/internal/services"
)

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.TopicService.ListTopics(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	var input services.TopicInput
	if err := decodeJSON(r, &input); err != nil {
		handleError(w, r, err)
		return
	}
	topic, err := s.TopicService.CreateTopic(r.Context(), userFromContext(r.Context()), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

func (s *Server) handleTopicsWithStats(w http.ResponseWriter, r *http.Request) {
	topics, err := s.StatsService.TopicsWithStats(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	topic, err := s.TopicService.GetTopic(r.Context(), userFromContext(r.Context()), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func (s *Server) handleUpdateTopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var input services.TopicInput
	if err := decodeJSON(r, &input); err != nil {
		handleError(w, r, err)
		return
	}
	topic, err := s.TopicService.UpdateTopic(r.Context(), userFromContext(r.Context()), id, input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func (s *Server) handleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.TopicService.DeleteTopic(r.Context(), userFromContext(r.Context()), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSubtopics(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	subs, err := s.TopicService.ListSubtopics(r.Context(), userFromContext(r.Context()), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleCreateSubtopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		handleError(w, r, err)
		return
	}
	sub, err := s.TopicService.CreateSubtopic(r.Context(), userFromContext(r.Context()), id, body.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleTopicStatistics(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	stats, err := s.StatsService.TopicStatistics(r.Context(), userFromContext(r.Context()), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleReviewHistogram(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	buckets, err := s.StatsService.ReviewHistogram(r.Context(), userFromContext(r.Context()), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handlePerformanceBreakdown(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	breakdown, err := s.StatsService.PerformanceBreakdown(r.Context(), userFromContext(r.Context()), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

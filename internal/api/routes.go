package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		if s.RequestTimeout > 0 {
			r.Use(timeoutMiddleware(s.RequestTimeout))
		}
		r.Use(userMiddleware)

		r.Get("/topics", s.handleListTopics)
		r.Post("/topics", s.handleCreateTopic)
		r.Get("/topics-with-stats", s.handleTopicsWithStats)
		r.Route("/topics/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetTopic)
			r.Put("/", s.handleUpdateTopic)
			r.Delete("/", s.handleDeleteTopic)
			r.Get("/subtopics", s.handleListSubtopics)
			r.Post("/subtopics", s.handleCreateSubtopic)
			r.Get("/statistics", s.handleTopicStatistics)
			r.Get("/review-histogram", s.handleReviewHistogram)
			r.Get("/performance-breakdown", s.handlePerformanceBreakdown)
		})

		r.Get("/flashcards", s.handleListFlashcards)
		r.Post("/flashcards", s.handleCreateFlashcard)
		r.Get("/flashcards/due", s.handleDueFlashcards)
		r.Put("/flashcards/{id}", s.handleUpdateFlashcard)
		r.Delete("/flashcards/{id}", s.handleDeleteFlashcard)
		r.Post("/flashcards/{id}/reset", s.handleResetFlashcard)

		r.Post("/study-sessions", s.handleSubmitRating)
		r.Get("/study/queue", s.handleStudyQueue)

		r.Get("/user-stats", s.handleUserStats)
		r.Get("/analytics/dashboard", s.handleDashboard)
		r.Get("/analytics/upcoming-reviews", s.handleUpcomingReviews)
		r.Get("/settings", s.handleGetSettings)
		r.Patch("/settings", s.handleUpdateSettings)
		r.Post("/settings/reset-progress", s.handleResetProgress)
		r.Delete("/account", s.handleDeleteAccount)
	})
	return r
}

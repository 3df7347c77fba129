package api

import (
	"net/http"
	"strconv"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/services"
)

func (s *Server) handleListFlashcards(w http.ResponseWriter, r *http.Request) {
	topicID, err := queryInt64(r, "topic_id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	subtopicID, err := queryInt64(r, "subtopic_id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	cards, err := s.FlashcardService.ListFlashcards(r.Context(), userFromContext(r.Context()), deref(topicID), deref(subtopicID))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleCreateFlashcard(w http.ResponseWriter, r *http.Request) {
	var input services.NewFlashcard
	if err := decodeJSON(r, &input); err != nil {
		handleError(w, r, err)
		return
	}
	card, err := s.FlashcardService.CreateFlashcard(r.Context(), userFromContext(r.Context()), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) handleDueFlashcards(w http.ResponseWriter, r *http.Request) {
	var filter flashcard.DueFilter
	var err error
	if filter.TopicID, err = queryInt64(r, "topic_id"); err != nil {
		handleError(w, r, err)
		return
	}
	if filter.SubtopicID, err = queryInt64(r, "subtopic_id"); err != nil {
		handleError(w, r, err)
		return
	}

	cards, err := s.FlashcardService.DueFlashcards(r.Context(), userFromContext(r.Context()), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleUpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var update models.FlashcardUpdate
	if err := decodeJSON(r, &update); err != nil {
		handleError(w, r, err)
		return
	}
	card, err := s.FlashcardService.UpdateFlashcard(r.Context(), userFromContext(r.Context()), id, update)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.FlashcardService.DeleteFlashcard(r.Context(), userFromContext(r.Context()), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetFlashcard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	card, err := s.FlashcardService.ResetFlashcard(r.Context(), userFromContext(r.Context()), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	var input services.RatingInput
	if err := decodeJSON(r, &input); err != nil {
		handleError(w, r, err)
		return
	}
	log := logger.FromContext(r.Context())
	log.Debug("rating submitted: card_id=%d, rating=%d", input.CardID, input.Rating)

	result, err := s.StudyService.SubmitRating(r.Context(), userFromContext(r.Context()), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// maxStudyMinutes is the longest study session a queue request may ask for.
const maxStudyMinutes = 24 * 60

func (s *Server) handleStudyQueue(w http.ResponseWriter, r *http.Request) {
	minutes := 0
	if raw := r.URL.Query().Get("minutes"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > maxStudyMinutes {
			handleError(w, r, errors.NewBadRequestError("invalid minutes: "+raw))
			return
		}
		minutes = v
	}
	queue, err := s.FlashcardService.StudyQueue(r.Context(), userFromContext(r.Context()), minutes)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, queue)
}

package services

import (
	"context"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

// RatingInput is one submitted review.
type RatingInput struct {
	CardID         int64         `json:"card_id"`
	Rating         models.Rating `json:"rating"`
	ResponseTimeMs int64         `json:"response_time_ms"`
}

// StudyService applies ratings to cards and user statistics
type StudyService interface {
	SubmitRating(ctx context.Context, userID string, input RatingInput) (*models.RatingResult, error)
}

type studyService struct {
	store    repository.Store
	settings Settings
}

// NewStudyService creates a new StudyService
func NewStudyService(store repository.Store, settings Settings) StudyService {
	return &studyService{store: store, settings: settings}
}

// SubmitRating records one rating atomically: the card's schedule, the user's
// stats and the rating log entry are written in one transaction. Losing a
// version check reruns the whole read-compute-write cycle.
func (s *studyService) SubmitRating(ctx context.Context, userID string, input RatingInput) (*models.RatingResult, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"card_id": input.CardID, "rating": int(input.Rating)})
	log.Debug("submitting rating")

	if err := flashcard.ValidateRating(input.Rating); err != nil {
		return nil, errors.NewValidationError("rating", "must be 1 (Again), 2 (Hard), 3 (Good) or 4 (Easy)")
	}
	if input.ResponseTimeMs < 0 {
		return nil, errors.NewValidationError("response_time_ms", "cannot be negative")
	}

	var result *models.RatingResult
	err := withRetry(ctx, s.store, s.settings.retries(), func(tx repository.Store) error {
		now := s.settings.now()

		card, err := tx.Flashcards().Get(ctx, userID, input.CardID)
		if err != nil {
			return err
		}
		if card == nil {
			return errors.NewNotFoundError("flashcard", input.CardID)
		}

		stats, err := tx.Stats().Get(ctx, userID)
		if err != nil {
			return err
		}
		if stats == nil {
			stats = &models.UserStats{UserID: userID}
		}

		event := models.RatingEvent{
			UserID:         userID,
			CardID:         card.ID,
			Rating:         input.Rating,
			ResponseTimeMs: input.ResponseTimeMs,
			OccurredAt:     now,
		}
		schedule, updatedStats, err := flashcard.RecordRating(event, card.CardSchedule, *stats)
		if err != nil {
			return errors.NewValidationError("rating", err.Error())
		}

		card.CardSchedule = schedule
		if card.Version, err = tx.Flashcards().UpdateSchedule(ctx, *card); err != nil {
			return err
		}
		if updatedStats.Version, err = tx.Stats().Upsert(ctx, updatedStats, now); err != nil {
			return err
		}
		if event.ID, err = tx.Ratings().Insert(ctx, event); err != nil {
			return err
		}

		result = &models.RatingResult{Event: event, Schedule: schedule, Stats: updatedStats}
		return nil
	})
	if err != nil {
		return nil, asAppError(ctx, "failed to submit rating", err)
	}

	log.Info("rating recorded: interval=%d, ease=%.2f, streak=%d",
		result.Schedule.IntervalDays, result.Schedule.EaseFactor, result.Stats.StudyStreak)
	return result, nil
}

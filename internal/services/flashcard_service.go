package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

// NewFlashcard is the payload for creating a card.
type NewFlashcard struct {
	TopicID    int64  `json:"topic_id"`
	SubtopicID *int64 `json:"subtopic_id"`
	FrontText  string `json:"front_text"`
	BackText   string `json:"back_text"`
	FrontImage string `json:"front_image"`
	BackImage  string `json:"back_image"`
}

// FlashcardService handles flashcard-related business logic
type FlashcardService interface {
	ListFlashcards(ctx context.Context, userID string, topicID, subtopicID int64) ([]models.FlashcardWithTopic, error)
	CreateFlashcard(ctx context.Context, userID string, input NewFlashcard) (*models.Flashcard, error)
	DueFlashcards(ctx context.Context, userID string, filter flashcard.DueFilter) ([]models.Flashcard, error)
	StudyQueue(ctx context.Context, userID string, minutes int) ([]models.FlashcardWithTopic, error)
	UpdateFlashcard(ctx context.Context, userID string, id int64, update models.FlashcardUpdate) (*models.Flashcard, error)
	ResetFlashcard(ctx context.Context, userID string, id int64) (*models.Flashcard, error)
	DeleteFlashcard(ctx context.Context, userID string, id int64) error
}

type flashcardService struct {
	store    repository.Store
	settings Settings
}

// NewFlashcardService creates a new FlashcardService
func NewFlashcardService(store repository.Store, settings Settings) FlashcardService {
	return &flashcardService{store: store, settings: settings}
}

func (s *flashcardService) ListFlashcards(ctx context.Context, userID string, topicID, subtopicID int64) ([]models.FlashcardWithTopic, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing flashcards: user_id=%s, topic_id=%d, subtopic_id=%d", userID, topicID, subtopicID)

	cards, err := s.store.Flashcards().ListWithTopics(ctx, models.FlashcardFilter{UserID: userID, TopicID: topicID, SubtopicID: subtopicID})
	if err != nil {
		log.Error("failed to list flashcards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if cards == nil {
		cards = []models.FlashcardWithTopic{}
	}
	return cards, nil
}

// checkPlacement verifies that topicID (and subtopicID, if set) belong to the user
// and that the subtopic sits under the topic.
func checkPlacement(ctx context.Context, store repository.Store, userID string, topicID int64, subtopicID *int64) error {
	topic, err := store.Topics().Get(ctx, userID, topicID)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if topic == nil {
		return errors.NewValidationError("topic_id", "unknown topic")
	}
	if subtopicID == nil {
		return nil
	}
	sub, err := store.Topics().GetSubtopic(ctx, userID, *subtopicID)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if sub == nil || sub.TopicID != topicID {
		return errors.NewValidationError("subtopic_id", "subtopic does not belong to topic")
	}
	return nil
}

func (s *flashcardService) CreateFlashcard(ctx context.Context, userID string, input NewFlashcard) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating flashcard: user_id=%s, topic_id=%d", userID, input.TopicID)

	input.FrontText = strings.TrimSpace(input.FrontText)
	input.BackText = strings.TrimSpace(input.BackText)
	if input.FrontText == "" {
		return nil, errors.NewValidationError("front_text", "cannot be empty")
	}
	if input.BackText == "" {
		return nil, errors.NewValidationError("back_text", "cannot be empty")
	}
	if err := checkPlacement(ctx, s.store, userID, input.TopicID, input.SubtopicID); err != nil {
		return nil, err
	}

	now := s.settings.now()
	card := models.Flashcard{
		UserID:       userID,
		TopicID:      input.TopicID,
		SubtopicID:   input.SubtopicID,
		FrontText:    input.FrontText,
		BackText:     input.BackText,
		FrontImage:   input.FrontImage,
		BackImage:    input.BackImage,
		IsActive:     true,
		Version:      1,
		CreatedAt:    now,
		CardSchedule: flashcard.NewSchedule(now),
	}

	id, err := s.store.Flashcards().Insert(ctx, card)
	if err != nil {
		log.Error("failed to insert flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	card.ID = id

	log.Info("flashcard created: id=%d", id)
	return &card, nil
}

func (s *flashcardService) DueFlashcards(ctx context.Context, userID string, filter flashcard.DueFilter) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx)
	now := s.settings.now()

	query := models.FlashcardFilter{UserID: userID, ActiveOnly: true, DueBefore: &now}
	if filter.TopicID != nil {
		query.TopicID = *filter.TopicID
	}
	if filter.SubtopicID != nil {
		query.SubtopicID = *filter.SubtopicID
	}

	candidates, err := s.store.Flashcards().List(ctx, query)
	if err != nil {
		log.Error("failed to list due candidates: %v", err)
		return nil, errors.NewInternalError(err)
	}

	due := flashcard.SelectDue(candidates, now, filter)
	log.Debug("due flashcards: user_id=%s, count=%d", userID, len(due))
	return due, nil
}

func (s *flashcardService) StudyQueue(ctx context.Context, userID string, minutes int) ([]models.FlashcardWithTopic, error) {
	log := logger.FromContext(ctx)
	if minutes <= 0 {
		minutes = s.settings.sessionMinutes()
	}
	prefs, err := preferences(ctx, s.store, userID)
	if err != nil {
		log.Error("failed to load settings for study queue: %v", err)
		return nil, errors.NewInternalError(err)
	}
	maxCards := s.settings.maxSessionCards()
	if prefs.DailyGoal > 0 && prefs.DailyGoal < maxCards {
		maxCards = prefs.DailyGoal
	}
	size := flashcard.SessionSize(minutes, 0, maxCards)

	now := s.settings.now()
	cards, err := s.store.Flashcards().ListWithTopics(ctx, models.FlashcardFilter{UserID: userID, ActiveOnly: true, DueBefore: &now})
	if err != nil {
		log.Error("failed to build study queue: %v", err)
		return nil, errors.NewInternalError(err)
	}

	queue := make([]models.FlashcardWithTopic, 0, size)
	for _, c := range cards {
		if len(queue) == size {
			break
		}
		if flashcard.IsDue(c.Flashcard, now) {
			queue = append(queue, c)
		}
	}
	log.Debug("study queue: minutes=%d, cap=%d, size=%d, due=%d", minutes, size, len(queue), len(cards))
	return queue, nil
}

func (s *flashcardService) getOwned(ctx context.Context, store repository.Store, userID string, id int64) (*models.Flashcard, error) {
	card, err := store.Flashcards().Get(ctx, userID, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("flashcard", id)
	}
	return card, nil
}

// withRetry reruns fn in a fresh transaction while it loses optimistic version
// checks, up to the configured number of attempts.
func withRetry(ctx context.Context, store repository.Store, attempts int, fn func(tx repository.Store) error) error {
	log := logger.FromContext(ctx)
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = store.WithinTx(ctx, fn)
		if !stderrors.Is(err, repository.ErrConcurrentUpdate) {
			return err
		}
		log.Warn("concurrent update detected, retrying: attempt=%d/%d", attempt, attempts)
	}
	return errors.NewConflictError("the record was modified concurrently, please retry", err)
}

func (s *flashcardService) UpdateFlashcard(ctx context.Context, userID string, id int64, update models.FlashcardUpdate) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)

	var result *models.Flashcard
	err := withRetry(ctx, s.store, s.settings.retries(), func(tx repository.Store) error {
		card, err := s.getOwned(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		if update.FrontText != nil {
			card.FrontText = strings.TrimSpace(*update.FrontText)
			if card.FrontText == "" {
				return errors.NewValidationError("front_text", "cannot be empty")
			}
		}
		if update.BackText != nil {
			card.BackText = strings.TrimSpace(*update.BackText)
			if card.BackText == "" {
				return errors.NewValidationError("back_text", "cannot be empty")
			}
		}
		if update.FrontImage != nil {
			card.FrontImage = *update.FrontImage
		}
		if update.BackImage != nil {
			card.BackImage = *update.BackImage
		}
		if update.IsActive != nil {
			card.IsActive = *update.IsActive
		}
		if update.SubtopicID != nil {
			if *update.SubtopicID == 0 {
				card.SubtopicID = nil
			} else {
				if err := checkPlacement(ctx, tx, userID, card.TopicID, update.SubtopicID); err != nil {
					return err
				}
				card.SubtopicID = update.SubtopicID
			}
		}

		version, err := tx.Flashcards().UpdateContent(ctx, *card)
		if err != nil {
			return err
		}
		card.Version = version
		result = card
		return nil
	})
	if err != nil {
		return nil, asAppError(ctx, "failed to update flashcard", err)
	}

	log.Debug("flashcard updated: id=%d, version=%d", id, result.Version)
	return result, nil
}

func (s *flashcardService) ResetFlashcard(ctx context.Context, userID string, id int64) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)

	var result *models.Flashcard
	err := withRetry(ctx, s.store, s.settings.retries(), func(tx repository.Store) error {
		card, err := s.getOwned(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		card.CardSchedule = flashcard.NewSchedule(s.settings.now())
		version, err := tx.Flashcards().UpdateSchedule(ctx, *card)
		if err != nil {
			return err
		}
		card.Version = version
		result = card
		return nil
	})
	if err != nil {
		return nil, asAppError(ctx, "failed to reset flashcard", err)
	}

	log.Info("flashcard reset to review pile: id=%d", id)
	return result, nil
}

func (s *flashcardService) DeleteFlashcard(ctx context.Context, userID string, id int64) error {
	log := logger.FromContext(ctx)

	ok, err := s.store.Flashcards().Delete(ctx, userID, id)
	if err != nil {
		log.Error("failed to delete flashcard: %v", err)
		return errors.NewInternalError(err)
	}
	if !ok {
		return errors.NewNotFoundError("flashcard", id)
	}
	log.Info("flashcard deleted: id=%d", id)
	return nil
}

// asAppError passes AppErrors through and wraps anything else as internal.
func asAppError(ctx context.Context, msg string, err error) error {
	if appErr, ok := errors.As(err); ok {
		return appErr
	}
	logger.FromContext(ctx).Error("%s: %v", msg, err)
	return errors.NewInternalError(err)
}

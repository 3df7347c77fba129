package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

// TopicInput is the editable part of a topic.
type TopicInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

// TopicService handles topic and subtopic management
type TopicService interface {
	ListTopics(ctx context.Context, userID string) ([]models.Topic, error)
	GetTopic(ctx context.Context, userID string, id int64) (*models.Topic, error)
	CreateTopic(ctx context.Context, userID string, input TopicInput) (*models.Topic, error)
	UpdateTopic(ctx context.Context, userID string, id int64, input TopicInput) (*models.Topic, error)
	DeleteTopic(ctx context.Context, userID string, id int64) error
	ListSubtopics(ctx context.Context, userID string, topicID int64) ([]models.SubtopicWithCount, error)
	CreateSubtopic(ctx context.Context, userID string, topicID int64, name string) (*models.Subtopic, error)
}

type topicService struct {
	store    repository.Store
	settings Settings
}

// NewTopicService creates a new TopicService
func NewTopicService(store repository.Store, settings Settings) TopicService {
	return &topicService{store: store, settings: settings}
}

func (s *topicService) ListTopics(ctx context.Context, userID string) ([]models.Topic, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing topics: user_id=%s", userID)

	topics, err := s.store.Topics().List(ctx, userID)
	if err != nil {
		log.Error("failed to list topics: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if topics == nil {
		topics = []models.Topic{}
	}
	return topics, nil
}

func (s *topicService) GetTopic(ctx context.Context, userID string, id int64) (*models.Topic, error) {
	topic, err := s.store.Topics().Get(ctx, userID, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get topic: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if topic == nil {
		return nil, errors.NewNotFoundError("topic", id)
	}
	return topic, nil
}

func validateTopicInput(input TopicInput) (TopicInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return input, errors.NewValidationError("name", "cannot be empty")
	}
	if len(input.Name) > 100 {
		return input, errors.NewValidationError("name", "must be at most 100 characters")
	}
	return input, nil
}

func (s *topicService) CreateTopic(ctx context.Context, userID string, input TopicInput) (*models.Topic, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating topic: user_id=%s, name=%s", userID, input.Name)

	input, err := validateTopicInput(input)
	if err != nil {
		return nil, err
	}

	topic := models.Topic{UserID: userID, Name: input.Name, Description: input.Description, Color: input.Color, Icon: input.Icon}
	id, err := s.store.Topics().Insert(ctx, topic)
	if stderrors.Is(err, repository.ErrDuplicate) {
		return nil, errors.NewValidationError("name", "a topic with this name already exists")
	}
	if err != nil {
		log.Error("failed to create topic: %v", err)
		return nil, errors.NewInternalError(err)
	}
	topic.ID = id

	log.Info("topic created: id=%d", id)
	return &topic, nil
}

func (s *topicService) UpdateTopic(ctx context.Context, userID string, id int64, input TopicInput) (*models.Topic, error) {
	log := logger.FromContext(ctx)

	input, err := validateTopicInput(input)
	if err != nil {
		return nil, err
	}

	topic := models.Topic{ID: id, UserID: userID, Name: input.Name, Description: input.Description, Color: input.Color, Icon: input.Icon}
	ok, err := s.store.Topics().Update(ctx, topic)
	if stderrors.Is(err, repository.ErrDuplicate) {
		return nil, errors.NewValidationError("name", "a topic with this name already exists")
	}
	if err != nil {
		log.Error("failed to update topic: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if !ok {
		return nil, errors.NewNotFoundError("topic", id)
	}
	return &topic, nil
}

func (s *topicService) DeleteTopic(ctx context.Context, userID string, id int64) error {
	log := logger.FromContext(ctx)

	ok, err := s.store.Topics().Delete(ctx, userID, id)
	if err != nil {
		log.Error("failed to delete topic: %v", err)
		return errors.NewInternalError(err)
	}
	if !ok {
		return errors.NewNotFoundError("topic", id)
	}
	log.Info("topic deleted: id=%d", id)
	return nil
}

func (s *topicService) ListSubtopics(ctx context.Context, userID string, topicID int64) ([]models.SubtopicWithCount, error) {
	if _, err := s.GetTopic(ctx, userID, topicID); err != nil {
		return nil, err
	}

	subs, err := s.store.Topics().ListSubtopics(ctx, userID, topicID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list subtopics: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if subs == nil {
		subs = []models.SubtopicWithCount{}
	}
	return subs, nil
}

func (s *topicService) CreateSubtopic(ctx context.Context, userID string, topicID int64, name string) (*models.Subtopic, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}
	if _, err := s.GetTopic(ctx, userID, topicID); err != nil {
		return nil, err
	}

	sub := models.Subtopic{TopicID: topicID, UserID: userID, Name: name, CreatedAt: s.settings.now()}
	id, err := s.store.Topics().InsertSubtopic(ctx, sub)
	if stderrors.Is(err, repository.ErrDuplicate) {
		return nil, errors.NewValidationError("name", "a subtopic with this name already exists")
	}
	if err != nil {
		log.Error("failed to create subtopic: %v", err)
		return nil, errors.NewInternalError(err)
	}
	sub.ID = id
	return &sub, nil
}

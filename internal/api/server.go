package api

import (
	"time"

	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/services"
)

const defaultRequestTimeout = 30 * time.Second

type Server struct {
	Store            repository.Store
	TopicService     services.TopicService
	FlashcardService services.FlashcardService
	StudyService     services.StudyService
	StatsService     services.StatsService
	SettingsService  services.UserSettingsService
	RequestTimeout   time.Duration
}

// NewServer wires every service against one store.
func NewServer(store repository.Store, settings services.Settings) *Server {
	return &Server{
		Store:            store,
		TopicService:     services.NewTopicService(store, settings),
		FlashcardService: services.NewFlashcardService(store, settings),
		StudyService:     services.NewStudyService(store, settings),
		StatsService:     services.NewStatsService(store, settings),
		SettingsService:  services.NewUserSettingsService(store, settings),
		RequestTimeout:   defaultRequestTimeout,
	}
}

package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

const (
	DefaultDailyGoal = 25
	MaxDailyGoal     = 1000
	maxDisplayName   = 255
)

var validThemes = map[string]bool{"light": true, "dark": true, "system": true}

// UserSettingsService handles per-user preferences
type UserSettingsService interface {
	// GetSettings returns the user's settings, creating the defaults on first read.
	GetSettings(ctx context.Context, userID string) (*models.UserSettings, error)
	UpdateSettings(ctx context.Context, userID string, update models.UserSettingsUpdate) (*models.UserSettings, error)
}

type userSettingsService struct {
	store    repository.Store
	settings Settings
}

// NewUserSettingsService creates a new UserSettingsService
func NewUserSettingsService(store repository.Store, settings Settings) UserSettingsService {
	return &userSettingsService{store: store, settings: settings}
}

// DefaultUserSettings returns the preferences a user starts with.
func DefaultUserSettings(userID string) models.UserSettings {
	return models.UserSettings{
		UserID:               userID,
		DailyGoal:            DefaultDailyGoal,
		AutoAdvance:          true,
		Algorithm:            "sm2",
		NotificationsEnabled: true,
		StudyReminders:       true,
		DailyStreakReminder:  true,
		PerformanceAlerts:    true,
		ReminderTime:         "18:00",
		Theme:                "light",
		CardAnimations:       true,
	}
}

// preferences reads the stored settings without creating a row; users who
// never saved any get the defaults.
func preferences(ctx context.Context, store repository.Store, userID string) (models.UserSettings, error) {
	stored, err := store.Settings().Get(ctx, userID)
	if err != nil {
		return models.UserSettings{}, err
	}
	if stored == nil {
		return DefaultUserSettings(userID), nil
	}
	return *stored, nil
}

func (s *userSettingsService) loadOrCreate(ctx context.Context, tx repository.Store, userID string, now time.Time) (*models.UserSettings, error) {
	stored, err := tx.Settings().Get(ctx, userID)
	if err != nil || stored != nil {
		return stored, err
	}
	if err := tx.Settings().Insert(ctx, DefaultUserSettings(userID), now); err != nil {
		return nil, err
	}
	stored, err = tx.Settings().Get(ctx, userID)
	if err == nil && stored == nil {
		err = stderrors.New("settings row missing after insert")
	}
	return stored, err
}

func (s *userSettingsService) GetSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	var result *models.UserSettings
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		result, err = s.loadOrCreate(ctx, tx, userID, s.settings.now())
		return err
	})
	if err != nil {
		return nil, asAppError(ctx, "failed to get settings", err)
	}
	return result, nil
}

func applySettingsUpdate(cur models.UserSettings, u models.UserSettingsUpdate) (models.UserSettings, error) {
	if u.DisplayName != nil {
		name := strings.TrimSpace(*u.DisplayName)
		if len(name) > maxDisplayName {
			return cur, errors.NewValidationError("display_name", "must be at most 255 characters")
		}
		if name == "" {
			cur.DisplayName = nil
		} else {
			cur.DisplayName = &name
		}
	}
	if u.DailyGoal != nil {
		if *u.DailyGoal < 1 || *u.DailyGoal > MaxDailyGoal {
			return cur, errors.NewValidationError("daily_goal", "must be between 1 and 1000")
		}
		cur.DailyGoal = *u.DailyGoal
	}
	if u.Algorithm != nil {
		if *u.Algorithm != "sm2" {
			return cur, errors.NewValidationError("algorithm", "only sm2 is supported")
		}
		cur.Algorithm = *u.Algorithm
	}
	if u.ReminderTime != nil {
		if _, err := time.Parse("15:04", *u.ReminderTime); err != nil || len(*u.ReminderTime) != 5 {
			return cur, errors.NewValidationError("reminder_time", "must be HH:MM")
		}
		cur.ReminderTime = *u.ReminderTime
	}
	if u.Theme != nil {
		if !validThemes[*u.Theme] {
			return cur, errors.NewValidationError("theme", "must be light, dark or system")
		}
		cur.Theme = *u.Theme
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setBool(&cur.AutoAdvance, u.AutoAdvance)
	setBool(&cur.ShowAnswerImmediately, u.ShowAnswerImmediately)
	setBool(&cur.NotificationsEnabled, u.NotificationsEnabled)
	setBool(&cur.StudyReminders, u.StudyReminders)
	setBool(&cur.DailyStreakReminder, u.DailyStreakReminder)
	setBool(&cur.PerformanceAlerts, u.PerformanceAlerts)
	setBool(&cur.CardAnimations, u.CardAnimations)
	return cur, nil
}

func (s *userSettingsService) UpdateSettings(ctx context.Context, userID string, update models.UserSettingsUpdate) (*models.UserSettings, error) {
	log := logger.FromContext(ctx)

	var result *models.UserSettings
	err := withRetry(ctx, s.store, s.settings.retries(), func(tx repository.Store) error {
		now := s.settings.now()
		current, err := s.loadOrCreate(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		next, err := applySettingsUpdate(*current, update)
		if err != nil {
			return err
		}
		version, err := tx.Settings().Update(ctx, next, now)
		if err != nil {
			return err
		}
		next.Version = version
		next.UpdatedAt = now
		result = &next
		return nil
	})
	if err != nil {
		return nil, asAppError(ctx, "failed to update settings", err)
	}

	log.Info("settings updated: user_id=%s, version=%d", userID, result.Version)
	return result, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

var settingsColumns = []string{
	"user_id", "display_name", "daily_goal", "auto_advance", "show_answer_immediately", "algorithm",
	"notifications_enabled", "study_reminders", "daily_streak_reminder", "performance_alerts",
	"reminder_time", "theme", "card_animations", "version", "created_at", "updated_at",
}

type settingsRepository struct {
	db repository.DBTX
}

// NewSettingsRepository creates a new SettingsRepository implementation
func NewSettingsRepository(db repository.DBTX) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, userID string) (*models.UserSettings, error) {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")

	var s models.UserSettings
	var displayName sql.NullString
	query := `SELECT ` + strings.Join(settingsColumns, ", ") + ` FROM user_settings WHERE user_id = ?`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &displayName, &s.DailyGoal, &s.AutoAdvance, &s.ShowAnswerImmediately, &s.Algorithm,
		&s.NotificationsEnabled, &s.StudyReminders, &s.DailyStreakReminder, &s.PerformanceAlerts,
		&s.ReminderTime, &s.Theme, &s.CardAnimations, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no settings yet: user_id=%s", userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get user settings: %v", err)
		return nil, err
	}
	if displayName.Valid {
		name := displayName.String
		s.DisplayName = &name
	}
	return &s, nil
}

func settingsValues(s models.UserSettings) map[string]any {
	var displayName sql.NullString
	if s.DisplayName != nil {
		displayName = sql.NullString{String: *s.DisplayName, Valid: true}
	}
	return map[string]any{
		"display_name":            displayName,
		"daily_goal":              s.DailyGoal,
		"auto_advance":            s.AutoAdvance,
		"show_answer_immediately": s.ShowAnswerImmediately,
		"algorithm":               s.Algorithm,
		"notifications_enabled":   s.NotificationsEnabled,
		"study_reminders":         s.StudyReminders,
		"daily_streak_reminder":   s.DailyStreakReminder,
		"performance_alerts":      s.PerformanceAlerts,
		"reminder_time":           s.ReminderTime,
		"theme":                   s.Theme,
		"card_animations":         s.CardAnimations,
	}
}

// Insert creates the row unless one already exists; a racing insert is a no-op.
func (r *settingsRepository) Insert(ctx context.Context, s models.UserSettings, now time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")
	log.Debug("creating default settings: user_id=%s", s.UserID)

	values := settingsValues(s)
	values["user_id"] = s.UserID
	values["version"] = 1
	values["created_at"] = utc(now)
	values["updated_at"] = utc(now)

	query, args, err := sqlBuilder.Insert("user_settings").
		SetMap(values).
		Suffix("ON CONFLICT(user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert user settings: %v", err)
		return err
	}
	return nil
}

func (r *settingsRepository) Update(ctx context.Context, s models.UserSettings, now time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")
	log.Debug("updating settings: user_id=%s, version=%d", s.UserID, s.Version)

	query, args, err := sqlBuilder.Update("user_settings").
		SetMap(settingsValues(s)).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", utc(now)).
		Where(squirrel.Eq{"user_id": s.UserID, "version": s.Version}).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update user settings: %v", err)
		return 0, err
	}
	return versionBump(res, s.Version)
}

func (r *settingsRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_settings WHERE user_id = ?`, userID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("settings_repo").Error("failed to delete user settings: %v", err)
	}
	return err
}

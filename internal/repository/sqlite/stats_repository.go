package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type statsRepository struct {
	db repository.DBTX
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db repository.DBTX) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Get(ctx context.Context, userID string) (*models.UserStats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	var s models.UserStats
	var last sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT user_id, cards_reviewed, correct_count, study_streak, personal_best_streak, last_study_date,
       total_study_time_minutes, average_accuracy, version
FROM user_stats WHERE user_id = ?
`, userID).Scan(&s.UserID, &s.CardsReviewed, &s.CorrectCount, &s.StudyStreak, &s.PersonalBestStreak, &last,
		&s.TotalStudyTimeMinutes, &s.AverageAccuracy, &s.Version)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no stats yet: user_id=%s", userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get user stats: %v", err)
		return nil, err
	}
	if last.Valid {
		t := last.Time
		s.LastStudyDate = &t
	}
	return &s, nil
}

func (r *statsRepository) Upsert(ctx context.Context, s models.UserStats, now time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("writing user stats: user_id=%s, version=%d, streak=%d", s.UserID, s.Version, s.StudyStreak)

	if s.Version == 0 {
		// ON CONFLICT DO NOTHING turns a racing first insert into a zero-row result.
		res, err := r.db.ExecContext(ctx, `
INSERT INTO user_stats (user_id, cards_reviewed, correct_count, study_streak, personal_best_streak, last_study_date,
    total_study_time_minutes, average_accuracy, version, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
ON CONFLICT(user_id) DO NOTHING
`, s.UserID, s.CardsReviewed, s.CorrectCount, s.StudyStreak, s.PersonalBestStreak, nullTime(s.LastStudyDate),
			s.TotalStudyTimeMinutes, s.AverageAccuracy, utc(now))
		if err != nil {
			log.Error("failed to insert user stats: %v", err)
			return 0, err
		}
		return versionBump(res, 0)
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE user_stats
SET cards_reviewed = ?, correct_count = ?, study_streak = ?, personal_best_streak = ?, last_study_date = ?,
    total_study_time_minutes = ?, average_accuracy = ?, version = version + 1, updated_at = ?
WHERE user_id = ? AND version = ?
`, s.CardsReviewed, s.CorrectCount, s.StudyStreak, s.PersonalBestStreak, nullTime(s.LastStudyDate),
		s.TotalStudyTimeMinutes, s.AverageAccuracy, utc(now), s.UserID, s.Version)
	if err != nil {
		log.Error("failed to update user stats: %v", err)
		return 0, err
	}
	return versionBump(res, s.Version)
}

func (r *statsRepository) Reset(ctx context.Context, userID string, now time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Info("resetting user stats: user_id=%s", userID)

	_, err := r.db.ExecContext(ctx, `
UPDATE user_stats
SET cards_reviewed = 0, correct_count = 0, study_streak = 0, last_study_date = NULL,
    total_study_time_minutes = 0, average_accuracy = 0, version = version + 1, updated_at = ?
WHERE user_id = ?
`, utc(now), userID)
	if err != nil {
		log.Error("failed to reset user stats: %v", err)
	}
	return err
}

func (r *statsRepository) ResetLapsedStreaks(ctx context.Context, cutoff, now time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	res, err := r.db.ExecContext(ctx, `
UPDATE user_stats
SET study_streak = 0, version = version + 1, updated_at = ?
WHERE study_streak > 0 AND (last_study_date IS NULL OR last_study_date < ?)
`, utc(now), utc(cutoff))
	if err != nil {
		log.Error("failed to reset lapsed streaks: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err == nil {
		log.Debug("lapsed streaks reset: %d", n)
	}
	return n, err
}

func (r *statsRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_stats WHERE user_id = ?`, userID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("stats_repo").Error("failed to delete user stats: %v", err)
	}
	return err
}

package services

import (
	"context"
	"math"
	"time"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	defaultUpcomingLimit = 10
	// maxConcurrentDashboards bounds how many dashboard builds may load a
	// user's full card set at once.
	//
	// The analytics reads fan out through errgroup, but the SQLite store holds
	// a single connection, so against it the queries run one after another.
	// The group still cancels the remaining reads on the first failure.
	maxConcurrentDashboards = 4
)

// StatsService handles analytics and account-wide progress operations
type StatsService interface {
	UserStats(ctx context.Context, userID string) (*models.UserStats, error)
	Dashboard(ctx context.Context, userID string) (*models.Dashboard, error)
	TopicsWithStats(ctx context.Context, userID string) ([]models.TopicWithStats, error)
	TopicStatistics(ctx context.Context, userID string, topicID int64) (*models.TopicStatistics, error)
	ReviewHistogram(ctx context.Context, userID string, topicID int64) ([]models.HistogramBucket, error)
	PerformanceBreakdown(ctx context.Context, userID string, topicID int64) ([]models.RatingBreakdown, error)
	UpcomingReviews(ctx context.Context, userID string, limit int) ([]models.UpcomingReview, error)
	ResetProgress(ctx context.Context, userID string) error
	DeleteAccount(ctx context.Context, userID string) error
	SweepLapsedStreaks(ctx context.Context) (int64, error)
}

type statsService struct {
	store    repository.Store
	settings Settings
	sem      *semaphore.Weighted
}

// NewStatsService creates a new StatsService
func NewStatsService(store repository.Store, settings Settings) StatsService {
	return &statsService{
		store:    store,
		settings: settings,
		sem:      semaphore.NewWeighted(maxConcurrentDashboards),
	}
}

// effectiveStats fills in a zero record for new users and lapses stale streaks.
func effectiveStats(stored *models.UserStats, userID string, now time.Time) models.UserStats {
	stats := models.UserStats{UserID: userID}
	if stored != nil {
		stats = *stored
	}
	stats.StudyStreak = flashcard.EffectiveStreak(stats.LastStudyDate, now, stats.StudyStreak)
	return stats
}

func (s *statsService) UserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	log := logger.FromContext(ctx)

	stored, err := s.store.Stats().Get(ctx, userID)
	if err != nil {
		log.Error("failed to load user stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	stats := effectiveStats(stored, userID, s.settings.now())
	return &stats, nil
}

// reviewedAccuracy is the mean success rate over cards that have been reviewed.
func reviewedAccuracy(cards []models.Flashcard) (float64, bool) {
	reviewed := make([]models.Flashcard, 0, len(cards))
	for _, c := range cards {
		if c.ReviewCount > 0 {
			reviewed = append(reviewed, c)
		}
	}
	if len(reviewed) == 0 {
		return 0, false
	}
	return flashcard.TopicAccuracy(reviewed), true
}

func buildTopicStats(topics []models.Topic, cards []models.Flashcard, subCounts map[int64]int, now time.Time) []models.TopicWithStats {
	byTopic := make(map[int64][]models.Flashcard, len(topics))
	for _, c := range cards {
		byTopic[c.TopicID] = append(byTopic[c.TopicID], c)
	}

	out := make([]models.TopicWithStats, 0, len(topics))
	for _, t := range topics {
		tc := byTopic[t.ID]
		mastery := flashcard.TopicMastery(tc)
		acc, _ := reviewedAccuracy(tc)
		out = append(out, models.TopicWithStats{
			Topic:             t,
			CardCount:         len(tc),
			DueCount:          len(flashcard.SelectDue(tc, now, flashcard.DueFilter{})),
			Accuracy:          acc,
			MasteryPercentage: mastery.MasteryPercentage,
			Mastered:          mastery.Mastered,
			SubtopicCount:     subCounts[t.ID],
		})
	}
	return out
}

func (s *statsService) TopicsWithStats(ctx context.Context, userID string) ([]models.TopicWithStats, error) {
	log := logger.FromContext(ctx)
	now := s.settings.now()

	var (
		topics    []models.Topic
		cards     []models.Flashcard
		subCounts map[int64]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		topics, err = s.store.Topics().List(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		cards, err = s.store.Flashcards().List(gctx, models.FlashcardFilter{UserID: userID})
		return err
	})
	g.Go(func() (err error) {
		subCounts, err = s.store.Topics().CountSubtopics(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to load topic stats: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return buildTopicStats(topics, cards, subCounts, now), nil
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func (s *statsService) Dashboard(ctx context.Context, userID string) (*models.Dashboard, error) {
	log := logger.FromContext(ctx)

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.NewInternalError(err)
	}
	defer s.sem.Release(1)

	now := s.settings.now()
	monthStart := startOfMonth(now)
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	var (
		stored    *models.UserStats
		cards     []models.Flashcard
		topics    []models.Topic
		subCounts map[int64]int
		events    []models.RatingEvent
		prefs     models.UserSettings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stored, err = s.store.Stats().Get(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		prefs, err = preferences(gctx, s.store, userID)
		return err
	})
	g.Go(func() (err error) {
		cards, err = s.store.Flashcards().List(gctx, models.FlashcardFilter{UserID: userID})
		return err
	})
	g.Go(func() (err error) {
		topics, err = s.store.Topics().List(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		subCounts, err = s.store.Topics().CountSubtopics(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		events, err = s.store.Ratings().List(gctx, models.RatingFilter{UserID: userID, Since: &prevMonthStart})
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to load dashboard: %v", err)
		return nil, errors.NewInternalError(err)
	}

	stats := effectiveStats(stored, userID, now)
	topicStats := buildTopicStats(topics, cards, subCounts, now)

	d := &models.Dashboard{
		Stats:      models.DashboardStats{UserStats: stats},
		TotalCards: len(cards),
		Topics:     topicStats,
	}

	active := make([]models.Flashcard, 0, len(cards))
	reviewedTopics := make(map[int64]bool)
	weekAgo := now.AddDate(0, 0, -7)
	for _, c := range cards {
		if c.IsActive {
			active = append(active, c)
		}
		if c.ReviewCount > 0 {
			reviewedTopics[c.TopicID] = true
		}
		if !c.CreatedAt.Before(weekAgo) {
			d.CardsAddedThisWeek++
		}
	}
	d.DueToday = len(flashcard.SelectDue(cards, now, flashcard.DueFilter{}))
	d.Timeline = flashcard.ReviewTimeline(active, now)

	today := flashcard.StartOfDay(now)
	var thisMonth, lastMonth []models.RatingEvent
	for _, e := range events {
		if !e.OccurredAt.Before(today) {
			d.Stats.CardsReviewedToday++
		}
		if e.OccurredAt.Before(monthStart) {
			lastMonth = append(lastMonth, e)
		} else {
			thisMonth = append(thisMonth, e)
		}
	}
	// A month without reviews compares as the overall average accuracy.
	current, ok := flashcard.AccuracyOf(thisMonth)
	if !ok {
		current = stats.AverageAccuracy
	}
	previous, ok := flashcard.AccuracyOf(lastMonth)
	if !ok {
		previous = stats.AverageAccuracy
	}
	d.AccuracyChangeThisMonth = math.Round((current-previous)*1000) / 10
	d.DailyGoal = prefs.DailyGoal

	for i := range topicStats {
		t := &topicStats[i]
		if t.Mastered {
			d.Stats.TopicsMastered++
		}
		if !prefs.PerformanceAlerts || !reviewedTopics[t.ID] || !flashcard.PerformanceAlert(t.Accuracy) {
			continue
		}
		if d.PerformanceAlert == nil || t.Accuracy < d.PerformanceAlert.Accuracy {
			alert := *t
			d.PerformanceAlert = &alert
		}
	}

	accuracy := 1.0
	if stats.CardsReviewed > 0 {
		accuracy = stats.AverageAccuracy
	}
	d.NewCardWarning = flashcard.ShouldWarnAboutNewCards(accuracy, d.DueToday)

	log.Debug("dashboard built: cards=%d, due=%d, topics=%d", d.TotalCards, d.DueToday, len(topicStats))
	return d, nil
}

func (s *statsService) requireTopic(ctx context.Context, userID string, topicID int64) error {
	topic, err := s.store.Topics().Get(ctx, userID, topicID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get topic: %v", err)
		return errors.NewInternalError(err)
	}
	if topic == nil {
		return errors.NewNotFoundError("topic", topicID)
	}
	return nil
}

func (s *statsService) TopicStatistics(ctx context.Context, userID string, topicID int64) (*models.TopicStatistics, error) {
	log := logger.FromContext(ctx)
	if err := s.requireTopic(ctx, userID, topicID); err != nil {
		return nil, err
	}
	now := s.settings.now()

	var (
		cards  []models.Flashcard
		events []models.RatingEvent
		subs   []models.SubtopicWithCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cards, err = s.store.Flashcards().List(gctx, models.FlashcardFilter{UserID: userID, TopicID: topicID})
		return err
	})
	g.Go(func() (err error) {
		events, err = s.store.Ratings().List(gctx, models.RatingFilter{UserID: userID, TopicID: topicID})
		return err
	})
	g.Go(func() (err error) {
		subs, err = s.store.Topics().ListSubtopics(gctx, userID, topicID)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to load topic statistics: %v", err)
		return nil, errors.NewInternalError(err)
	}

	stats := &models.TopicStatistics{
		TotalReviews:         len(events),
		ReviewHistogram:      flashcard.ReviewHistogram(activeOnly(cards), now),
		PerformanceBreakdown: flashcard.PerformanceBreakdown(events),
		Subtopics:            subs,
	}
	if stats.Subtopics == nil {
		stats.Subtopics = []models.SubtopicWithCount{}
	}

	if len(events) > 0 {
		var totalMs int64
		dates := make([]time.Time, 0, len(events))
		for _, e := range events {
			totalMs += e.ResponseTimeMs
			dates = append(dates, e.OccurredAt)
		}
		stats.AverageResponseTimeMs = float64(totalMs) / float64(len(events))
		stats.StreakDays = flashcard.StreakFromDates(dates, now)
		last := events[len(events)-1].OccurredAt
		stats.LastReviewDate = &last
	}
	return stats, nil
}

func activeOnly(cards []models.Flashcard) []models.Flashcard {
	out := make([]models.Flashcard, 0, len(cards))
	for _, c := range cards {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

func (s *statsService) ReviewHistogram(ctx context.Context, userID string, topicID int64) ([]models.HistogramBucket, error) {
	if err := s.requireTopic(ctx, userID, topicID); err != nil {
		return nil, err
	}
	cards, err := s.store.Flashcards().List(ctx, models.FlashcardFilter{UserID: userID, TopicID: topicID, ActiveOnly: true})
	if err != nil {
		logger.FromContext(ctx).Error("failed to list flashcards for histogram: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return flashcard.ReviewHistogram(cards, s.settings.now()), nil
}

func (s *statsService) PerformanceBreakdown(ctx context.Context, userID string, topicID int64) ([]models.RatingBreakdown, error) {
	if err := s.requireTopic(ctx, userID, topicID); err != nil {
		return nil, err
	}
	events, err := s.store.Ratings().List(ctx, models.RatingFilter{UserID: userID, TopicID: topicID})
	if err != nil {
		logger.FromContext(ctx).Error("failed to list ratings for breakdown: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return flashcard.PerformanceBreakdown(events), nil
}

func (s *statsService) UpcomingReviews(ctx context.Context, userID string, limit int) ([]models.UpcomingReview, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	now := s.settings.now()

	cards, err := s.store.Flashcards().ListWithTopics(ctx, models.FlashcardFilter{UserID: userID, ActiveOnly: true})
	if err != nil {
		logger.FromContext(ctx).Error("failed to list upcoming reviews: %v", err)
		return nil, errors.NewInternalError(err)
	}

	out := make([]models.UpcomingReview, 0, limit)
	for _, c := range cards {
		if len(out) == limit {
			break
		}
		if !c.NextReviewAt.After(now) {
			continue
		}
		out = append(out, models.UpcomingReview{
			CardID:          c.ID,
			TopicID:         c.TopicID,
			TopicName:       c.TopicName,
			FrontText:       c.FrontText,
			NextReviewAt:    c.NextReviewAt,
			TimeUntilDue:    flashcard.DescribeTimeUntil(c.NextReviewAt, now),
			DifficultyLevel: c.DifficultyLevel,
		})
	}
	return out, nil
}

func (s *statsService) ResetProgress(ctx context.Context, userID string) error {
	log := logger.FromContext(ctx)
	now := s.settings.now()

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		n, err := tx.Flashcards().ResetAll(ctx, userID, flashcard.NewSchedule(now))
		if err != nil {
			return err
		}
		if err := tx.Ratings().DeleteAll(ctx, userID); err != nil {
			return err
		}
		if err := tx.Stats().Reset(ctx, userID, now); err != nil {
			return err
		}
		log.Info("progress reset: user_id=%s, cards=%d", userID, n)
		return nil
	})
	if err != nil {
		log.Error("failed to reset progress: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *statsService) DeleteAccount(ctx context.Context, userID string) error {
	log := logger.FromContext(ctx)

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Ratings().DeleteAll(ctx, userID); err != nil {
			return err
		}
		if err := tx.Flashcards().DeleteAll(ctx, userID); err != nil {
			return err
		}
		if err := tx.Topics().DeleteAll(ctx, userID); err != nil {
			return err
		}
		if err := tx.Stats().Delete(ctx, userID); err != nil {
			return err
		}
		return tx.Settings().Delete(ctx, userID)
	})
	if err != nil {
		log.Error("failed to delete account: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("account deleted: user_id=%s", userID)
	return nil
}

// SweepLapsedStreaks zeroes stored streaks whose last study day is before
// yesterday in the configured zone.
func (s *statsService) SweepLapsedStreaks(ctx context.Context) (int64, error) {
	now := s.settings.now()
	cutoff := flashcard.StartOfDay(now).AddDate(0, 0, -1)

	n, err := s.store.Stats().ResetLapsedStreaks(ctx, cutoff, now)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sweep lapsed streaks: %v", err)
		return 0, errors.NewInternalError(err)
	}
	return n, nil
}

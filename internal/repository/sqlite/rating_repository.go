package sqlite

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type ratingRepository struct {
	db repository.DBTX
}

// NewRatingRepository creates a new RatingRepository implementation
func NewRatingRepository(db repository.DBTX) repository.RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Insert(ctx context.Context, e models.RatingEvent) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("rating_repo")
	log.Debug("inserting rating event: card_id=%d, rating=%d, response_ms=%d", e.CardID, e.Rating, e.ResponseTimeMs)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO rating_events (user_id, card_id, rating, response_time_ms, occurred_at)
VALUES (?, ?, ?, ?, ?)
`, e.UserID, e.CardID, int(e.Rating), e.ResponseTimeMs, utc(e.OccurredAt))
	if err != nil {
		log.Error("failed to insert rating event: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *ratingRepository) List(ctx context.Context, filter models.RatingFilter) ([]models.RatingEvent, error) {
	log := logger.FromContext(ctx).WithPrefix("rating_repo")
	log.Debug("listing rating events: user_id=%s, card_id=%d, topic_id=%d", filter.UserID, filter.CardID, filter.TopicID)

	q := sqlBuilder.Select("e.id", "e.user_id", "e.card_id", "e.rating", "e.response_time_ms", "e.occurred_at").
		From("rating_events e")
	if filter.TopicID != 0 {
		q = q.Join("flashcards f ON f.id = e.card_id").Where(squirrel.Eq{"f.topic_id": filter.TopicID})
	}
	if filter.UserID != "" {
		q = q.Where(squirrel.Eq{"e.user_id": filter.UserID})
	}
	if filter.CardID != 0 {
		q = q.Where(squirrel.Eq{"e.card_id": filter.CardID})
	}
	if filter.Since != nil {
		q = q.Where(squirrel.GtOrEq{"e.occurred_at": utc(*filter.Since)})
	}

	query, args, err := q.OrderBy("e.occurred_at ASC", "e.id ASC").ToSql()
	if err != nil {
		log.Error("failed to build rating query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query rating events: %v", err)
		return nil, err
	}
	defer rows.Close()

	var events []models.RatingEvent
	for rows.Next() {
		var e models.RatingEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.CardID, &e.Rating, &e.ResponseTimeMs, &e.OccurredAt); err != nil {
			log.Error("failed to scan rating row: %v", err)
			return nil, err
		}
		events = append(events, e)
	}
	log.Debug("found %d rating events", len(events))
	return events, rows.Err()
}

func (r *ratingRepository) DeleteAll(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rating_events WHERE user_id = ?`, userID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("rating_repo").Error("failed to delete rating events: %v", err)
	}
	return err
}

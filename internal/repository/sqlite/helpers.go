package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Times are written in UTC so that lexical comparison in SQLite matches
// chronological order.
func utc(t time.Time) time.Time {
	return t.UTC()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// translateConstraint maps unique-constraint violations to repository.ErrDuplicate.
func translateConstraint(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	return err
}

func tx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	log.Debug("transaction committed")
	return nil
}

type store struct {
	db *sql.DB
	q  repository.DBTX
}

// NewStore returns a Store whose repositories run directly against db.
func NewStore(db *sql.DB) repository.Store {
	return &store{db: db, q: db}
}

func (s *store) Flashcards() repository.FlashcardRepository { return NewFlashcardRepository(s.q) }
func (s *store) Topics() repository.TopicRepository         { return NewTopicRepository(s.q) }
func (s *store) Ratings() repository.RatingRepository       { return NewRatingRepository(s.q) }
func (s *store) Stats() repository.StatsRepository          { return NewStatsRepository(s.q) }
func (s *store) Settings() repository.SettingsRepository    { return NewSettingsRepository(s.q) }

func (s *store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	if _, inTx := s.q.(*sql.Tx); inTx {
		return fn(s)
	}
	return tx(ctx, s.db, func(t *sql.Tx) error {
		return fn(&store{db: s.db, q: t})
	})
}

func (s *store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

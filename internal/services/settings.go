package services

import (
	"time"

	"github.com/vytor/flashdeck/internal/config"
)

// Settings carries the knobs services share. Zero values fall back to the
// documented defaults.
type Settings struct {
	Location              *time.Location
	MaxUpdateRetries      int
	DefaultSessionMinutes int
	MaxSessionCards       int
	// Now is the clock; tests pin it.
	Now func() time.Time
}

func SettingsFromConfig(cfg config.Config) Settings {
	return Settings{
		Location:              cfg.Location(),
		MaxUpdateRetries:      cfg.MaxUpdateRetries,
		DefaultSessionMinutes: cfg.DefaultSessionMinutes,
		MaxSessionCards:       cfg.MaxSessionCards,
	}
}

// now returns the current instant in the configured zone, so calendar-day
// math (streaks, "today") follows the user's day rather than the server's.
func (s Settings) now() time.Time {
	clock := s.Now
	if clock == nil {
		clock = time.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return clock().In(loc)
}

func (s Settings) retries() int {
	if s.MaxUpdateRetries < 1 {
		return 3
	}
	return s.MaxUpdateRetries
}

func (s Settings) sessionMinutes() int {
	if s.DefaultSessionMinutes < 1 {
		return 15
	}
	return s.DefaultSessionMinutes
}

func (s Settings) maxSessionCards() int {
	if s.MaxSessionCards < 1 {
		return 50
	}
	return s.MaxSessionCards
}

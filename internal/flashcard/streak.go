package flashcard

import (
	"sort"
	"time"
)

type StreakState struct {
	Streak        int
	PersonalBest  int
	LastStudyDate time.Time
}

// UpdateStreak advances a study streak for one rating made at now.
// Calendar days are taken in now's location.
func UpdateStreak(lastStudyDate *time.Time, now time.Time, currentStreak, personalBest int) StreakState {
	streak := 1
	if lastStudyDate != nil {
		switch gap := DaysBetween(*lastStudyDate, now); {
		case gap <= 0:
			// Same day (or a last date from the future): no double counting.
			streak = currentStreak
			if streak < 1 {
				streak = 1
			}
		case gap == 1:
			streak = currentStreak + 1
		default:
			streak = 1
		}
	}

	if personalBest < streak {
		personalBest = streak
	}
	return StreakState{
		Streak:        streak,
		PersonalBest:  personalBest,
		LastStudyDate: now,
	}
}

// EffectiveStreak is the stored streak as it reads at now: a streak whose last
// study day is before yesterday has lapsed.
func EffectiveStreak(lastStudyDate *time.Time, now time.Time, storedStreak int) int {
	if lastStudyDate == nil || DaysBetween(*lastStudyDate, now) > 1 {
		return 0
	}
	return storedStreak
}

// DaysBetween counts calendar days from a to b in b's location.
func DaysBetween(a, b time.Time) int {
	return int(civilDay(b).Sub(civilDay(a.In(b.Location()))) / day)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// civilDay maps a date onto UTC midnight so subtraction ignores DST shifts.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StreakFromDates counts consecutive study days ending today.
func StreakFromDates(dates []time.Time, now time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	days := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		days[civilDay(d.In(now.Location()))] = struct{}{}
	}
	unique := make([]time.Time, 0, len(days))
	for d := range days {
		unique = append(unique, d)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].After(unique[j]) })

	today := civilDay(now)
	streak := 0
	for i, d := range unique {
		if !d.Equal(today.AddDate(0, 0, -i)) {
			break
		}
		streak++
	}
	return streak
}

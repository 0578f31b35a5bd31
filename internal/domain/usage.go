package domain

import (
	"math"
	"time"
)

type Application struct {
	ID             int64
	Name           string
	CategoryID     string
	FirstSeen      time.Time
	LastSeen       time.Time
	TotalTimeSpent time.Duration
	VisitCount     int
}

type Window struct {
	ID             int64
	AppID          int64
	Title          string
	FirstSeen      time.Time
	LastSeen       time.Time
	TotalTimeSpent time.Duration
	VisitCount     int
}

// Session is one contiguous interval of focus on a Window. EndTime is nil
// while the session is open.
type Session struct {
	ID        int64
	WindowID  int64
	StartTime time.Time
	EndTime   *time.Time
	Duration  time.Duration
}

// IsOpen reports whether the session has not been closed yet.
func (s *Session) IsOpen() bool {
	return s.EndTime == nil
}

// CategoryStat aggregates application totals for one category.
type CategoryStat struct {
	Category  Category
	TotalTime time.Duration
	AppCount  int
}

// CategoryApplications groups applications under their category.
type CategoryApplications struct {
	Category     Category
	Applications []*Application
}

// DayCategoryTotals holds closed-session time per category ID for one day.
type DayCategoryTotals struct {
	Day    time.Time
	Totals map[string]time.Duration
}

// Total sums all categories for the day.
func (d DayCategoryTotals) Total() time.Duration {
	var sum time.Duration
	for _, v := range d.Totals {
		sum += v
	}
	return sum
}

// ToEpoch converts t to floating-point Unix seconds, the storage format of
// every time column.
func ToEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// FromEpoch is the inverse of ToEpoch.
func FromEpoch(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(math.Round(frac*float64(time.Second))))
}

// Seconds converts a duration to the float seconds stored in duration and
// total_time_spent columns.
func Seconds(d time.Duration) float64 {
	return d.Seconds()
}

// FromSeconds converts stored float seconds back to a duration.
func FromSeconds(sec float64) time.Duration {
	return time.Duration(math.Round(sec * float64(time.Second)))
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

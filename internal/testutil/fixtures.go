package testutil

import (
	"time"

	"github.com/alexanderramin/focustrack/internal/domain"
	"github.com/google/uuid"
)

// Epoch is a fixed reference instant used by fixtures so stored times
// round-trip without depending on the wall clock.
var Epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

// Application options
type ApplicationOption func(*domain.Application)

func WithCategoryID(id string) ApplicationOption {
	return func(a *domain.Application) {
		a.CategoryID = id
	}
}

func WithLastSeen(t time.Time) ApplicationOption {
	return func(a *domain.Application) {
		a.LastSeen = t
	}
}

func WithAppTime(d time.Duration) ApplicationOption {
	return func(a *domain.Application) {
		a.TotalTimeSpent = d
	}
}

func NewTestApplication(name string, opts ...ApplicationOption) *domain.Application {
	a := &domain.Application{
		Name:       name,
		CategoryID: domain.UncategorizedID,
		FirstSeen:  Epoch,
		LastSeen:   Epoch,
		VisitCount: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func NewTestWindow(appID int64, title string) *domain.Window {
	return &domain.Window{
		AppID:      appID,
		Title:      title,
		FirstSeen:  Epoch,
		LastSeen:   Epoch,
		VisitCount: 1,
	}
}

// Session options
type SessionOption func(*domain.Session)

func WithStartTime(t time.Time) SessionOption {
	return func(s *domain.Session) {
		s.StartTime = t
	}
}

// WithClosed marks the session closed after d.
func WithClosed(d time.Duration) SessionOption {
	return func(s *domain.Session) {
		end := s.StartTime.Add(d)
		s.EndTime = &end
		s.Duration = d
	}
}

// NewTestSession builds an open session on windowID starting at Epoch.
// Options apply in order, so WithStartTime must precede WithClosed.
func NewTestSession(windowID int64, opts ...SessionOption) *domain.Session {
	s := &domain.Session{
		WindowID:  windowID,
		StartTime: Epoch,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func NewTestCategory(name string) *domain.Category {
	return &domain.Category{
		ID:        uuid.New().String(),
		Name:      name,
		Icon:      "",
		Color:     "#ffffff",
		SortOrder: 100,
	}
}

package store

import (
	"context"
	"time"

	"github.com/alexanderramin/focustrack/internal/domain"
)

func (s *Store) GetAllApplications(ctx context.Context) ([]*domain.Application, error) {
	var out []*domain.Application
	err := s.call(ctx, "get_all_applications", func(ctx context.Context) error {
		var err error
		out, err = s.applications.List(ctx)
		return err
	})
	return out, err
}

// GetApplication returns repository.ErrNotFound for unknown names.
func (s *Store) GetApplication(ctx context.Context, name string) (*domain.Application, error) {
	var out *domain.Application
	err := s.call(ctx, "get_application", func(ctx context.Context) error {
		var err error
		out, err = s.applications.GetByName(ctx, name)
		return err
	})
	return out, err
}

// GetRecentApplications lists applications by last_seen, most recent first.
func (s *Store) GetRecentApplications(ctx context.Context, limit int) ([]*domain.Application, error) {
	var out []*domain.Application
	err := s.call(ctx, "get_recent_applications", func(ctx context.Context) error {
		var err error
		out, err = s.applications.ListRecent(ctx, limit)
		return err
	})
	return out, err
}

// GetApplicationsByCategory groups every application under its category, in
// category sort order. Categories without applications are included.
func (s *Store) GetApplicationsByCategory(ctx context.Context) ([]domain.CategoryApplications, error) {
	var out []domain.CategoryApplications
	err := s.call(ctx, "get_applications_by_category", func(ctx context.Context) error {
		cats, err := s.categories.List(ctx)
		if err != nil {
			return err
		}
		for _, c := range cats {
			apps, err := s.applications.ListByCategory(ctx, c.ID)
			if err != nil {
				return err
			}
			out = append(out, domain.CategoryApplications{Category: *c, Applications: apps})
		}
		return nil
	})
	return out, err
}

func (s *Store) GetWindows(ctx context.Context, appID int64) ([]*domain.Window, error) {
	var out []*domain.Window
	err := s.call(ctx, "get_windows", func(ctx context.Context) error {
		var err error
		out, err = s.windows.ListByApp(ctx, appID)
		return err
	})
	return out, err
}

// GetTodayTime sums the application's closed sessions that started today.
func (s *Store) GetTodayTime(ctx context.Context, appID int64) (time.Duration, error) {
	from := domain.StartOfDay(s.clock.Now())
	var out time.Duration
	err := s.call(ctx, "get_today_time", func(ctx context.Context) error {
		var err error
		out, err = s.sessions.TotalForApp(ctx, appID, from, from.AddDate(0, 0, 1))
		return err
	})
	return out, err
}

// GetTime sums all closed sessions that started on date's calendar day.
func (s *Store) GetTime(ctx context.Context, date time.Time) (time.Duration, error) {
	from := domain.StartOfDay(date)
	var out time.Duration
	err := s.call(ctx, "get_time", func(ctx context.Context) error {
		var err error
		out, err = s.sessions.Total(ctx, from, from.AddDate(0, 0, 1))
		return err
	})
	return out, err
}

func (s *Store) GetCategoryStats(ctx context.Context) ([]domain.CategoryStat, error) {
	var out []domain.CategoryStat
	err := s.call(ctx, "get_category_stats", func(ctx context.Context) error {
		var err error
		out, err = s.categories.Stats(ctx)
		return err
	})
	return out, err
}

// GetCategoryTotalsForWeek returns seven daily buckets starting at the local
// midnight of start.
func (s *Store) GetCategoryTotalsForWeek(ctx context.Context, start time.Time) ([]domain.DayCategoryTotals, error) {
	first := domain.StartOfDay(start)
	var out []domain.DayCategoryTotals
	err := s.call(ctx, "get_category_totals_for_week", func(ctx context.Context) error {
		out = make([]domain.DayCategoryTotals, 0, 7)
		for i := 0; i < 7; i++ {
			day := first.AddDate(0, 0, i)
			totals, err := s.sessions.CategoryTotals(ctx, day, day.AddDate(0, 0, 1))
			if err != nil {
				return err
			}
			out = append(out, domain.DayCategoryTotals{Day: day, Totals: totals})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetSessions lists a window's sessions in start order.
func (s *Store) GetSessions(ctx context.Context, windowID int64) ([]*domain.Session, error) {
	var out []*domain.Session
	err := s.call(ctx, "get_sessions", func(ctx context.Context) error {
		var err error
		out, err = s.sessions.ListByWindow(ctx, windowID)
		return err
	})
	return out, err
}

func (s *Store) GetOpenSessions(ctx context.Context) ([]*domain.Session, error) {
	var out []*domain.Session
	err := s.call(ctx, "get_open_sessions", func(ctx context.Context) error {
		var err error
		out, err = s.sessions.ListOpen(ctx)
		return err
	})
	return out, err
}

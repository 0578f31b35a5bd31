package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/focustrack/internal/db"
	"github.com/alexanderramin/focustrack/internal/domain"
	"github.com/alexanderramin/focustrack/internal/repository"
)

// GetOrCreateApplication returns the application called name, inserting it
// when absent with one visit and a category chosen by the rule table.
// created reports whether the row was inserted by this call.
func (s *Store) GetOrCreateApplication(ctx context.Context, name string) (app *domain.Application, created bool, err error) {
	now := s.clock.Now()
	err = s.call(ctx, "get_or_create_application", func(ctx context.Context) error {
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			apps := repository.NewSQLiteApplicationRepo(tx)
			existing, err := apps.GetByName(ctx, name)
			if err == nil {
				app = existing
				return nil
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}

			categoryID, err := s.categoryFor(ctx, repository.NewSQLiteCategoryRepo(tx), name)
			if err != nil {
				return err
			}
			a := &domain.Application{
				Name:       name,
				CategoryID: categoryID,
				FirstSeen:  now,
				LastSeen:   now,
				VisitCount: 1,
			}
			if err := apps.Create(ctx, a); err != nil {
				return err
			}
			app, created = a, true
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return app, created, nil
}

func (s *Store) categoryFor(ctx context.Context, categories repository.CategoryRepo, appName string) (string, error) {
	name := domain.Categorize(s.rules, appName)
	if name == domain.CategoryUncategorized {
		return domain.UncategorizedID, nil
	}
	c, err := categories.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		// The user renamed or removed the rule's category.
		return domain.UncategorizedID, nil
	}
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// GetOrCreateWindow is GetOrCreateApplication for the (appID, title) pair.
func (s *Store) GetOrCreateWindow(ctx context.Context, appID int64, title string) (win *domain.Window, created bool, err error) {
	now := s.clock.Now()
	err = s.call(ctx, "get_or_create_window", func(ctx context.Context) error {
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			windows := repository.NewSQLiteWindowRepo(tx)
			existing, err := windows.GetByAppAndTitle(ctx, appID, title)
			if err == nil {
				win = existing
				return nil
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			w := &domain.Window{
				AppID:      appID,
				Title:      title,
				FirstSeen:  now,
				LastSeen:   now,
				VisitCount: 1,
			}
			if err := windows.Create(ctx, w); err != nil {
				return err
			}
			win, created = w, true
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return win, created, nil
}

// IncrementAppVisits bumps the visit counter of the named application. Missing
// applications are ignored.
func (s *Store) IncrementAppVisits(ctx context.Context, name string) {
	now := s.clock.Now()
	s.write(ctx, "increment_app_visits", func(ctx context.Context) error {
		ok, err := s.applications.IncrementVisits(ctx, name, now)
		if err == nil && !ok {
			s.logger.Debug().Str("app", name).Msg("Visit for unknown application ignored")
		}
		return err
	})
}

// IncrementWindowVisits bumps the visit counter of a window. Missing windows
// are ignored.
func (s *Store) IncrementWindowVisits(ctx context.Context, windowID int64) {
	now := s.clock.Now()
	s.write(ctx, "increment_window_visits", func(ctx context.Context) error {
		ok, err := s.windows.IncrementVisits(ctx, windowID, now)
		if err == nil && !ok {
			s.logger.Debug().Int64("window_id", windowID).Msg("Visit for unknown window ignored")
		}
		return err
	})
}

// CreateSession opens a session on windowID starting now. It returns a nil
// session and no error when the window does not exist.
func (s *Store) CreateSession(ctx context.Context, windowID int64) (*domain.Session, error) {
	now := s.clock.Now()
	var sess *domain.Session
	err := s.call(ctx, "create_session", func(ctx context.Context) error {
		if _, err := s.windows.GetByID(ctx, windowID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.logger.Debug().Int64("window_id", windowID).Msg("Session for unknown window not created")
				return nil
			}
			return err
		}
		ns := &domain.Session{WindowID: windowID, StartTime: now}
		if err := s.sessions.Create(ctx, ns); err != nil {
			return err
		}
		sess = ns
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// EndSession closes the session now with duration end-start. Closed or
// missing sessions are left alone.
func (s *Store) EndSession(ctx context.Context, id int64) {
	now := s.clock.Now()
	s.write(ctx, "end_session", func(ctx context.Context) error {
		return s.closeSession(ctx, id, now, nil)
	})
}

// CloseSession closes the session at endedAt with an explicit active
// duration, which excludes paused time. The stored value is clamped to the
// session's wall-clock span.
func (s *Store) CloseSession(ctx context.Context, id int64, endedAt time.Time, active time.Duration) {
	s.write(ctx, "close_session", func(ctx context.Context) error {
		return s.closeSession(ctx, id, endedAt, &active)
	})
}

func (s *Store) closeSession(ctx context.Context, id int64, endedAt time.Time, active *time.Duration) error {
	ok, err := s.sessions.Close(ctx, id, endedAt, active)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Debug().Int64("session_id", id).Msg("End of closed or unknown session ignored")
	}
	return nil
}

// UpdateWindowTime adds delta to the window's total. Negative deltas count as
// zero.
func (s *Store) UpdateWindowTime(ctx context.Context, windowID int64, delta time.Duration) {
	now := s.clock.Now()
	s.write(ctx, "update_window_time", func(ctx context.Context) error {
		_, err := s.windows.AddTime(ctx, windowID, delta, now)
		return err
	})
}

// UpdateAppTime adds delta to the application's total. Negative deltas count
// as zero.
func (s *Store) UpdateAppTime(ctx context.Context, appID int64, delta time.Duration) {
	now := s.clock.Now()
	s.write(ctx, "update_app_time", func(ctx context.Context) error {
		_, err := s.applications.AddTime(ctx, appID, delta, now)
		return err
	})
}

// ReconcileOrphans closes sessions left open by a previous process with a
// zero duration. beforeID <= 0 closes every open session.
func (s *Store) ReconcileOrphans(ctx context.Context, beforeID int64) (int64, error) {
	var n int64
	err := s.call(ctx, "reconcile_orphans", func(ctx context.Context) error {
		closed, err := s.sessions.CloseAbandoned(ctx, beforeID)
		if err != nil {
			return fmt.Errorf("reconciling orphaned sessions: %w", err)
		}
		n = closed
		return nil
	})
	return n, err
}

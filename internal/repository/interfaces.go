package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/focustrack/internal/domain"
)

type CategoryRepo interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) ([]domain.CategoryStat, error)
}

type ApplicationRepo interface {
	Create(ctx context.Context, a *domain.Application) error
	GetByID(ctx context.Context, id int64) (*domain.Application, error)
	GetByName(ctx context.Context, name string) (*domain.Application, error)
	List(ctx context.Context) ([]*domain.Application, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Application, error)
	ListByCategory(ctx context.Context, categoryID string) ([]*domain.Application, error)
	IncrementVisits(ctx context.Context, name string, at time.Time) (bool, error)
	AddTime(ctx context.Context, id int64, delta time.Duration, at time.Time) (bool, error)
	SetCategory(ctx context.Context, id int64, categoryID string) error
	ReassignCategory(ctx context.Context, fromID, toID string) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type WindowRepo interface {
	Create(ctx context.Context, w *domain.Window) error
	GetByID(ctx context.Context, id int64) (*domain.Window, error)
	GetByAppAndTitle(ctx context.Context, appID int64, title string) (*domain.Window, error)
	ListByApp(ctx context.Context, appID int64) ([]*domain.Window, error)
	IncrementVisits(ctx context.Context, id int64, at time.Time) (bool, error)
	AddTime(ctx context.Context, id int64, delta time.Duration, at time.Time) (bool, error)
}

type SessionRepo interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByID(ctx context.Context, id int64) (*domain.Session, error)
	ListByWindow(ctx context.Context, windowID int64) ([]*domain.Session, error)
	ListOpen(ctx context.Context) ([]*domain.Session, error)
	Close(ctx context.Context, id int64, endedAt time.Time, duration *time.Duration) (bool, error)
	CloseAbandoned(ctx context.Context, beforeID int64) (int64, error)
	Total(ctx context.Context, from, to time.Time) (time.Duration, error)
	TotalForApp(ctx context.Context, appID int64, from, to time.Time) (time.Duration, error)
	CategoryTotals(ctx context.Context, from, to time.Time) (map[string]time.Duration, error)
}

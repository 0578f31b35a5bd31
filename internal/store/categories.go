package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/focustrack/internal/db"
	"github.com/alexanderramin/focustrack/internal/domain"
	"github.com/alexanderramin/focustrack/internal/repository"
	"github.com/google/uuid"
)

func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var out []*domain.Category
	err := s.call(ctx, "list_categories", func(ctx context.Context) error {
		var err error
		out, err = s.categories.List(ctx)
		return err
	})
	return out, err
}

func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var out *domain.Category
	err := s.call(ctx, "get_category", func(ctx context.Context) error {
		var err error
		out, err = s.categories.GetByID(ctx, id)
		return err
	})
	return out, err
}

func (s *Store) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	var out *domain.Category
	err := s.call(ctx, "get_category_by_name", func(ctx context.Context) error {
		var err error
		out, err = s.categories.GetByName(ctx, name)
		return err
	})
	return out, err
}

// CreateCategory assigns a fresh id and appends the category after the
// existing ones.
func (s *Store) CreateCategory(ctx context.Context, name, icon, color string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}
	c := &domain.Category{
		ID:    uuid.New().String(),
		Name:  name,
		Icon:  icon,
		Color: domain.CoalesceStr(color, "#928374"),
	}
	err := s.call(ctx, "create_category", func(ctx context.Context) error {
		existing, err := s.categories.List(ctx)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if e.SortOrder >= c.SortOrder {
				c.SortOrder = e.SortOrder + 1
			}
		}
		return s.categories.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *domain.Category) error {
	return s.call(ctx, "update_category", func(ctx context.Context) error {
		return s.categories.Update(ctx, c)
	})
}

// DeleteCategory removes a non-default category. Its applications move to
// reassignTo when set, otherwise to the default category. Both steps commit
// together.
func (s *Store) DeleteCategory(ctx context.Context, id, reassignTo string) error {
	return s.call(ctx, "delete_category", func(ctx context.Context) error {
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			categories := repository.NewSQLiteCategoryRepo(tx)
			if reassignTo != "" && reassignTo != id {
				if _, err := categories.GetByID(ctx, reassignTo); err != nil {
					return err
				}
				if _, err := repository.NewSQLiteApplicationRepo(tx).ReassignCategory(ctx, id, reassignTo); err != nil {
					return err
				}
			}
			return categories.Delete(ctx, id)
		})
	})
}

func (s *Store) SetApplicationCategory(ctx context.Context, appID int64, categoryID string) error {
	return s.call(ctx, "set_application_category", func(ctx context.Context) error {
		return s.applications.SetCategory(ctx, appID, categoryID)
	})
}

// DeleteApplication removes an application with its windows and sessions.
func (s *Store) DeleteApplication(ctx context.Context, appID int64) error {
	return s.call(ctx, "delete_application", func(ctx context.Context) error {
		return s.applications.Delete(ctx, appID)
	})
}

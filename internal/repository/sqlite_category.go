package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/focustrack/internal/db"
	"github.com/alexanderramin/focustrack/internal/domain"
)

// SQLiteCategoryRepo implements CategoryRepo using a SQLite database.
type SQLiteCategoryRepo struct {
	db db.DBTX
}

func NewSQLiteCategoryRepo(db db.DBTX) *SQLiteCategoryRepo {
	return &SQLiteCategoryRepo{db: db}
}

const categoryColumns = `id, name, icon, color, sort_order, is_default`

func (r *SQLiteCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	query := `INSERT INTO categories (` + categoryColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Icon, c.Color, c.SortOrder, boolToInt(c.IsDefault),
	)
	if err != nil {
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}

func (r *SQLiteCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

func (r *SQLiteCategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = ?`, name)
	return scanCategory(row)
}

func (r *SQLiteCategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var out []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return out, nil
}

// Update changes everything except the default flag, which is fixed at seed time.
func (r *SQLiteCategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, icon = ?, color = ?, sort_order = ? WHERE id = ?`,
		c.Name, c.Icon, c.Color, c.SortOrder, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}
	changed, err := rowsChanged(res)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}
	if !changed {
		return fmt.Errorf("category %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a category. Applications referencing it fall back to the
// default category through ON DELETE SET DEFAULT.
func (r *SQLiteCategoryRepo) Delete(ctx context.Context, id string) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsDefault {
		return fmt.Errorf("category %q: %w", existing.Name, ErrDefaultCategory)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return nil
}

// Stats returns per-category application totals, including categories
// without applications.
func (r *SQLiteCategoryRepo) Stats(ctx context.Context) ([]domain.CategoryStat, error) {
	query := `SELECT c.id, c.name, c.icon, c.color, c.sort_order, c.is_default,
			COALESCE(SUM(a.total_time_spent), 0), COUNT(a.id)
		FROM categories c
		LEFT JOIN applications a ON a.category_id = c.id
		GROUP BY c.id
		ORDER BY c.sort_order, c.name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying category stats: %w", err)
	}
	defer rows.Close()

	var out []domain.CategoryStat
	for rows.Next() {
		var s domain.CategoryStat
		var isDefault int
		var total float64
		if err := rows.Scan(&s.Category.ID, &s.Category.Name, &s.Category.Icon, &s.Category.Color,
			&s.Category.SortOrder, &isDefault, &total, &s.AppCount); err != nil {
			return nil, fmt.Errorf("scanning category stat: %w", err)
		}
		s.Category.IsDefault = intToBool(isDefault)
		s.TotalTime = domain.FromSeconds(total)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category stats: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var c domain.Category
	var isDefault int
	if err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.SortOrder, &isDefault); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning category: %w", err)
	}
	c.IsDefault = intToBool(isDefault)
	return &c, nil
}

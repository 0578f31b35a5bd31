package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/focustrack/internal/db"
	"github.com/alexanderramin/focustrack/internal/domain"
)

// SQLiteApplicationRepo implements ApplicationRepo using a SQLite database.
type SQLiteApplicationRepo struct {
	db db.DBTX
}

func NewSQLiteApplicationRepo(db db.DBTX) *SQLiteApplicationRepo {
	return &SQLiteApplicationRepo{db: db}
}

const applicationColumns = `id, name, category_id, first_seen, last_seen, total_time_spent, visit_count`

// Create inserts a and sets a.ID to the generated row id.
func (r *SQLiteApplicationRepo) Create(ctx context.Context, a *domain.Application) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO applications (name, category_id, first_seen, last_seen, total_time_spent, visit_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.Name,
		domain.CoalesceStr(a.CategoryID, domain.UncategorizedID),
		domain.ToEpoch(a.FirstSeen),
		domain.ToEpoch(a.LastSeen),
		domain.Seconds(clampDelta(a.TotalTimeSpent)),
		a.VisitCount,
	)
	if err != nil {
		return fmt.Errorf("inserting application: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading application id: %w", err)
	}
	a.ID = id
	return nil
}

func (r *SQLiteApplicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	return scanApplication(row)
}

func (r *SQLiteApplicationRepo) GetByName(ctx context.Context, name string) (*domain.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE name = ?`, name)
	return scanApplication(row)
}

func (r *SQLiteApplicationRepo) List(ctx context.Context) ([]*domain.Application, error) {
	return r.query(ctx, "listing applications",
		`SELECT `+applicationColumns+` FROM applications ORDER BY total_time_spent DESC, name`)
}

func (r *SQLiteApplicationRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Application, error) {
	return r.query(ctx, "listing recent applications",
		`SELECT `+applicationColumns+` FROM applications ORDER BY last_seen DESC, id DESC LIMIT ?`, limit)
}

func (r *SQLiteApplicationRepo) ListByCategory(ctx context.Context, categoryID string) ([]*domain.Application, error) {
	return r.query(ctx, "listing applications by category",
		`SELECT `+applicationColumns+` FROM applications WHERE category_id = ? ORDER BY total_time_spent DESC, name`, categoryID)
}

// IncrementVisits bumps visit_count and last_seen. It reports false when no
// application has that name.
func (r *SQLiteApplicationRepo) IncrementVisits(ctx context.Context, name string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE applications SET visit_count = visit_count + 1, last_seen = MAX(last_seen, ?) WHERE name = ?`,
		domain.ToEpoch(at), name)
	if err != nil {
		return false, fmt.Errorf("incrementing application visits: %w", err)
	}
	return rowsChanged(res)
}

// AddTime accumulates delta into total_time_spent. Negative deltas count as zero.
func (r *SQLiteApplicationRepo) AddTime(ctx context.Context, id int64, delta time.Duration, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE applications SET total_time_spent = total_time_spent + ?, last_seen = MAX(last_seen, ?) WHERE id = ?`,
		domain.Seconds(clampDelta(delta)), domain.ToEpoch(at), id)
	if err != nil {
		return false, fmt.Errorf("adding application time: %w", err)
	}
	return rowsChanged(res)
}

func (r *SQLiteApplicationRepo) SetCategory(ctx context.Context, id int64, categoryID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE applications SET category_id = ? WHERE id = ?`, categoryID, id)
	if err != nil {
		return fmt.Errorf("setting application category: %w", err)
	}
	changed, err := rowsChanged(res)
	if err != nil {
		return fmt.Errorf("setting application category: %w", err)
	}
	if !changed {
		return fmt.Errorf("application %d: %w", id, ErrNotFound)
	}
	return nil
}

// ReassignCategory moves every application in fromID to toID and returns how
// many rows moved.
func (r *SQLiteApplicationRepo) ReassignCategory(ctx context.Context, fromID, toID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE applications SET category_id = ? WHERE category_id = ?`, toID, fromID)
	if err != nil {
		return 0, fmt.Errorf("reassigning applications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reassigning applications: %w", err)
	}
	return n, nil
}

// Delete removes the application; its windows and their sessions cascade.
func (r *SQLiteApplicationRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting application: %w", err)
	}
	return nil
}

func (r *SQLiteApplicationRepo) query(ctx context.Context, op, query string, args ...any) ([]*domain.Application, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func scanApplication(row rowScanner) (*domain.Application, error) {
	var a domain.Application
	var firstSeen, lastSeen, total float64
	err := row.Scan(&a.ID, &a.Name, &a.CategoryID, &firstSeen, &lastSeen, &total, &a.VisitCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("application: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning application: %w", err)
	}
	a.FirstSeen = domain.FromEpoch(firstSeen)
	a.LastSeen = domain.FromEpoch(lastSeen)
	a.TotalTimeSpent = domain.FromSeconds(total)
	return &a, nil
}

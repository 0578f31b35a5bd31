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

// SQLiteWindowRepo implements WindowRepo using a SQLite database.
type SQLiteWindowRepo struct {
	db db.DBTX
}

func NewSQLiteWindowRepo(db db.DBTX) *SQLiteWindowRepo {
	return &SQLiteWindowRepo{db: db}
}

const windowColumns = `id, app_id, title, first_seen, last_seen, total_time_spent, visit_count`

// Create inserts w and sets w.ID to the generated row id.
func (r *SQLiteWindowRepo) Create(ctx context.Context, w *domain.Window) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO windows (app_id, title, first_seen, last_seen, total_time_spent, visit_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		w.AppID,
		w.Title,
		domain.ToEpoch(w.FirstSeen),
		domain.ToEpoch(w.LastSeen),
		domain.Seconds(clampDelta(w.TotalTimeSpent)),
		w.VisitCount,
	)
	if err != nil {
		return fmt.Errorf("inserting window: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading window id: %w", err)
	}
	w.ID = id
	return nil
}

func (r *SQLiteWindowRepo) GetByID(ctx context.Context, id int64) (*domain.Window, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+windowColumns+` FROM windows WHERE id = ?`, id)
	return scanWindow(row)
}

func (r *SQLiteWindowRepo) GetByAppAndTitle(ctx context.Context, appID int64, title string) (*domain.Window, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+windowColumns+` FROM windows WHERE app_id = ? AND title = ?`, appID, title)
	return scanWindow(row)
}

func (r *SQLiteWindowRepo) ListByApp(ctx context.Context, appID int64) ([]*domain.Window, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+windowColumns+` FROM windows WHERE app_id = ? ORDER BY total_time_spent DESC, title`, appID)
	if err != nil {
		return nil, fmt.Errorf("listing windows: %w", err)
	}
	defer rows.Close()

	var out []*domain.Window
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating windows: %w", err)
	}
	return out, nil
}

func (r *SQLiteWindowRepo) IncrementVisits(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE windows SET visit_count = visit_count + 1, last_seen = MAX(last_seen, ?) WHERE id = ?`,
		domain.ToEpoch(at), id)
	if err != nil {
		return false, fmt.Errorf("incrementing window visits: %w", err)
	}
	return rowsChanged(res)
}

func (r *SQLiteWindowRepo) AddTime(ctx context.Context, id int64, delta time.Duration, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE windows SET total_time_spent = total_time_spent + ?, last_seen = MAX(last_seen, ?) WHERE id = ?`,
		domain.Seconds(clampDelta(delta)), domain.ToEpoch(at), id)
	if err != nil {
		return false, fmt.Errorf("adding window time: %w", err)
	}
	return rowsChanged(res)
}

func scanWindow(row rowScanner) (*domain.Window, error) {
	var w domain.Window
	var firstSeen, lastSeen, total float64
	err := row.Scan(&w.ID, &w.AppID, &w.Title, &firstSeen, &lastSeen, &total, &w.VisitCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("window: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning window: %w", err)
	}
	w.FirstSeen = domain.FromEpoch(firstSeen)
	w.LastSeen = domain.FromEpoch(lastSeen)
	w.TotalTimeSpent = domain.FromSeconds(total)
	return &w, nil
}

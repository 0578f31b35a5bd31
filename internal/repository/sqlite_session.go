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

// SQLiteSessionRepo implements SessionRepo using a SQLite database.
type SQLiteSessionRepo struct {
	db db.DBTX
}

// NewSQLiteSessionRepo creates a new SQLiteSessionRepo.
func NewSQLiteSessionRepo(db db.DBTX) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: db}
}

const sessionColumns = `id, window_id, start_time, end_time, duration`

// Create inserts s and sets s.ID. Sessions are normally created open, with a
// nil EndTime.
func (r *SQLiteSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (window_id, start_time, end_time, duration) VALUES (?, ?, ?, ?)`,
		s.WindowID,
		domain.ToEpoch(s.StartTime),
		nullableEpoch(s.EndTime),
		domain.Seconds(clampDelta(s.Duration)),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading session id: %w", err)
	}
	s.ID = id
	return nil
}

func (r *SQLiteSessionRepo) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

func (r *SQLiteSessionRepo) ListByWindow(ctx context.Context, windowID int64) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE window_id = ? ORDER BY start_time, id`, windowID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions by window: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

func (r *SQLiteSessionRepo) ListOpen(ctx context.Context) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE end_time IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing open sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

// Close sets end_time and duration on an open session. A nil duration means
// the full wall-clock span. The stored duration is clamped to
// [0, endedAt-start_time]. Returns false when the session does not exist or is
// already closed.
func (r *SQLiteSessionRepo) Close(ctx context.Context, id int64, endedAt time.Time, duration *time.Duration) (bool, error) {
	end := domain.ToEpoch(endedAt)
	var res sql.Result
	var err error
	if duration == nil {
		res, err = r.db.ExecContext(ctx,
			`UPDATE sessions SET end_time = ?, duration = MAX(0, ? - start_time)
			WHERE id = ? AND end_time IS NULL`,
			end, end, id)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE sessions SET end_time = ?, duration = MAX(0, MIN(?, ? - start_time))
			WHERE id = ? AND end_time IS NULL`,
			end, domain.Seconds(*duration), end, id)
	}
	if err != nil {
		return false, fmt.Errorf("closing session: %w", err)
	}
	return rowsChanged(res)
}

// CloseAbandoned closes open sessions left behind by a previous run with a zero
// duration. When beforeID is positive only sessions with a smaller id are
// touched.
func (r *SQLiteSessionRepo) CloseAbandoned(ctx context.Context, beforeID int64) (int64, error) {
	query := `UPDATE sessions SET end_time = start_time, duration = 0 WHERE end_time IS NULL`
	args := []any{}
	if beforeID > 0 {
		query += ` AND id < ?`
		args = append(args, beforeID)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("closing abandoned sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("closing abandoned sessions: %w", err)
	}
	return n, nil
}

// Total sums closed-session durations whose start falls in [from, to).
func (r *SQLiteSessionRepo) Total(ctx context.Context, from, to time.Time) (time.Duration, error) {
	var sum float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(duration), 0) FROM sessions
		WHERE end_time IS NOT NULL AND start_time >= ? AND start_time < ?`,
		domain.ToEpoch(from), domain.ToEpoch(to)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("summing session time: %w", err)
	}
	return domain.FromSeconds(sum), nil
}

// TotalForApp is Total restricted to the windows of one application.
func (r *SQLiteSessionRepo) TotalForApp(ctx context.Context, appID int64, from, to time.Time) (time.Duration, error) {
	var sum float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(s.duration), 0) FROM sessions s
		JOIN windows w ON w.id = s.window_id
		WHERE w.app_id = ? AND s.end_time IS NOT NULL AND s.start_time >= ? AND s.start_time < ?`,
		appID, domain.ToEpoch(from), domain.ToEpoch(to)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("summing application session time: %w", err)
	}
	return domain.FromSeconds(sum), nil
}

// CategoryTotals groups closed-session time in [from, to) by the owning
// application's category id.
func (r *SQLiteSessionRepo) CategoryTotals(ctx context.Context, from, to time.Time) (map[string]time.Duration, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.category_id, COALESCE(SUM(s.duration), 0) FROM sessions s
		JOIN windows w ON w.id = s.window_id
		JOIN applications a ON a.id = w.app_id
		WHERE s.end_time IS NOT NULL AND s.start_time >= ? AND s.start_time < ?
		GROUP BY a.category_id`,
		domain.ToEpoch(from), domain.ToEpoch(to))
	if err != nil {
		return nil, fmt.Errorf("summing category time: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Duration)
	for rows.Next() {
		var id string
		var sum float64
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("scanning category total: %w", err)
		}
		out[id] = domain.FromSeconds(sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category totals: %w", err)
	}
	return out, nil
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	var start, dur float64
	var end sql.NullFloat64
	if err := row.Scan(&s.ID, &s.WindowID, &start, &end, &dur); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	s.StartTime = domain.FromEpoch(start)
	s.EndTime = parseNullableEpoch(end)
	s.Duration = domain.FromSeconds(dur)
	return &s, nil
}

func scanSessions(rows *sql.Rows) ([]*domain.Session, error) {
	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return out, nil
}

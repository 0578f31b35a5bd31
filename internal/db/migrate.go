package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/alexanderramin/focustrack/internal/domain"
	"github.com/google/uuid"
)

// Migrate runs all schema migrations and seeds the default categories.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := seedCategories(db); err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}
	return nil
}

// seedCategories inserts the default categories that are not present yet.
// Existing rows, including user edits to them, are left alone.
func seedCategories(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range domain.DefaultCategories() {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		isDefault := 0
		if c.IsDefault {
			isDefault = 1
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO categories (id, name, icon, color, sort_order, is_default)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, c.Name, c.Icon, c.Color, c.SortOrder, isDefault); err != nil {
			return fmt.Errorf("inserting category %q: %w", c.Name, err)
		}
	}
	return tx.Commit()
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		icon       TEXT NOT NULL DEFAULT '',
		color      TEXT NOT NULL DEFAULT '#928374',
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_default INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS applications (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		name             TEXT NOT NULL UNIQUE,
		category_id      TEXT NOT NULL DEFAULT '00000000-0000-0000-0000-000000000000'
		                 REFERENCES categories(id) ON DELETE SET DEFAULT,
		first_seen       REAL NOT NULL,
		last_seen        REAL NOT NULL,
		total_time_spent REAL NOT NULL DEFAULT 0 CHECK(total_time_spent >= 0),
		visit_count      INTEGER NOT NULL DEFAULT 1
	)`,

	`CREATE INDEX IF NOT EXISTS idx_applications_category ON applications(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_last_seen ON applications(last_seen)`,

	`CREATE TABLE IF NOT EXISTS windows (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		app_id           INTEGER NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
		title            TEXT NOT NULL,
		first_seen       REAL NOT NULL,
		last_seen        REAL NOT NULL,
		total_time_spent REAL NOT NULL DEFAULT 0 CHECK(total_time_spent >= 0),
		visit_count      INTEGER NOT NULL DEFAULT 1,
		UNIQUE(app_id, title)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_windows_app ON windows(app_id)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		window_id  INTEGER NOT NULL REFERENCES windows(id) ON DELETE CASCADE,
		start_time REAL NOT NULL,
		end_time   REAL,
		duration   REAL NOT NULL DEFAULT 0 CHECK(duration >= 0)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_window ON sessions(window_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_open ON sessions(id) WHERE end_time IS NULL`,

	`CREATE TRIGGER IF NOT EXISTS trg_categories_keep_default
		BEFORE DELETE ON categories
		WHEN OLD.is_default = 1
		BEGIN
			SELECT RAISE(ABORT, 'default category cannot be deleted');
		END`,
}

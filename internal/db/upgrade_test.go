package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpenDB_ReopenPreservesData verifies that reopening an existing file
// database re-runs migrations without touching stored rows or user edits to
// seeded categories.
func TestOpenDB_ReopenPreservesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "focustrack.db")

	first, err := OpenDB(path)
	require.NoError(t, err)

	_, err = first.Exec(`UPDATE categories SET color = '#000000' WHERE name = 'Work'`)
	require.NoError(t, err)
	_, err = first.Exec(`INSERT INTO applications (name, first_seen, last_seen, total_time_spent) VALUES ('Editor', 100, 200, 65)`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	var color string
	require.NoError(t, second.QueryRow(`SELECT color FROM categories WHERE name = 'Work'`).Scan(&color))
	assert.Equal(t, "#000000", color)

	var total float64
	require.NoError(t, second.QueryRow(`SELECT total_time_spent FROM applications WHERE name = 'Editor'`).Scan(&total))
	assert.InDelta(t, 65.0, total, 1e-9)

	var mode string
	require.NoError(t, second.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

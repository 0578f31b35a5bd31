package repository

import (
	"database/sql"
	"time"

	"github.com/alexanderramin/focustrack/internal/domain"
)

// parseNullableEpoch converts a nullable REAL epoch column into a *time.Time.
// Returns nil for SQL NULL.
func parseNullableEpoch(v sql.NullFloat64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := domain.FromEpoch(v.Float64)
	return &t
}

// nullableEpoch converts a *time.Time into a value suitable for a nullable
// REAL column.
func nullableEpoch(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return domain.ToEpoch(*t)
}

// clampDelta treats negative time deltas as zero.
func clampDelta(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}

// rowsChanged reports whether an Exec affected at least one row.
func rowsChanged(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

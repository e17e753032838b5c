package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/praxislab/praxis-api/internal/store"
)

// IsNotFound checks if the given error represents a "not found" scenario,
// covering both sql.ErrNoRows and errors wrapping store.ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, store.ErrNotFound)
}

// nullJSON converts a possibly-empty JSON payload into a driver value:
// NULL for empty input, the raw bytes otherwise.
func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

// nullTime converts a possibly-zero time into a driver value: NULL for the
// zero time, the time otherwise.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// timeOrZero unwraps a nullable timestamp column.
func timeOrZero(t sql.NullTime) time.Time {
	if t.Valid {
		return t.Time
	}
	return time.Time{}
}

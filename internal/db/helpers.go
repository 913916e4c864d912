package db

import (
	"database/sql"
	"time"
)

// NullIfEmpty helps store optional strings without wiping existing data.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NullableTime converts an optional time for driver args.
func NullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// NullableInt converts an optional int for driver args.
func NullableInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

// TimePtr turns a scanned NullTime back into an optional time.
func TimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// IntPtr turns a scanned NullInt64 back into an optional int.
func IntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

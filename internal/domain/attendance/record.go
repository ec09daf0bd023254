package attendance

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Record is one persisted attendance fact for a member on a duty date.
// Corresponds to the 'attendance_records' table.
type Record struct {
	ID        uuid.UUID
	MemberID  int64
	Date      time.Time // calendar day, midnight in the configured location
	RawStatus string    // status as stored; normalized through ParseStatus on read
	CheckIn   sql.NullTime
	CheckOut  sql.NullTime
	CreatedAt time.Time // last-modified stamp, used for latest-wins resolution
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists attendance records.
type Repository interface {
	// Upsert writes the record for (MemberID, Date). An existing current record is
	// updated in place with a refreshed CreatedAt; otherwise a new row is inserted.
	// The returned id is the id of the row that now holds the status.
	Upsert(ctx context.Context, rec *Record) (uuid.UUID, error)

	// ListByDate returns every raw row dated on the given day for the given members.
	// Several rows may exist per member; callers reduce them with Resolve.
	ListByDate(ctx context.Context, date time.Time, memberIDs []int64) ([]*Record, error)

	// ListByMemberAndDate returns every raw row for one (member, date) pair.
	ListByMemberAndDate(ctx context.Context, memberID int64, date time.Time) ([]*Record, error)
}

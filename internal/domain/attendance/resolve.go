package attendance

import (
	"database/sql"

	"github.com/google/uuid"
)

// Resolution is the effective attendance of a member on a date.
type Resolution struct {
	MemberID int64
	RecordID uuid.UUID // uuid.Nil when Unmarked because no row exists
	Status   Status
	CheckIn  sql.NullTime
	CheckOut sql.NullTime
	// Unknown is set when the latest row carries a raw status outside the
	// vocabulary. Status is then StatusUnmarked and RawStatus holds the value.
	Unknown   bool
	RawStatus string
}

// Resolve reduces the raw rows of a single (member, date) pair to one effective status.
// The row with the greatest CreatedAt wins; on equal stamps the later row in the slice wins.
func Resolve(memberID int64, rows []*Record) Resolution {
	var latest *Record
	for _, r := range rows {
		if r == nil || r.MemberID != memberID {
			continue
		}
		if latest == nil || !r.CreatedAt.Before(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return Resolution{MemberID: memberID, Status: StatusUnmarked}
	}

	res := Resolution{
		MemberID:  memberID,
		RecordID:  latest.ID,
		CheckIn:   latest.CheckIn,
		CheckOut:  latest.CheckOut,
		RawStatus: latest.RawStatus,
	}
	status, err := ParseStatus(latest.RawStatus)
	if err != nil {
		res.Status = StatusUnmarked
		res.Unknown = true
		return res
	}
	res.Status = status
	return res
}

// ResolveAll resolves every member in memberIDs against a mixed set of rows.
// Members without rows resolve to StatusUnmarked. Rows for members outside
// memberIDs are ignored.
func ResolveAll(memberIDs []int64, rows []*Record) map[int64]Resolution {
	byMember := make(map[int64][]*Record, len(memberIDs))
	for _, r := range rows {
		if r == nil {
			continue
		}
		byMember[r.MemberID] = append(byMember[r.MemberID], r)
	}
	out := make(map[int64]Resolution, len(memberIDs))
	for _, id := range memberIDs {
		out[id] = Resolve(id, byMember[id])
	}
	return out
}

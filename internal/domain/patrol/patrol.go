// internal/domain/patrol/patrol.go
package patrol

import "database/sql"

// DutyGroup is a cohort of volunteer members sharing a recurring night-patrol schedule.
// ScheduleSpec is persisted upstream and parsed by the schedule package only.
type DutyGroup struct {
	ID           int64
	Name         string
	ScheduleSpec string
}

// Member is a patrol officer. GroupID is a weak reference and may be null
// or point at a group that no longer exists.
type Member struct {
	ID       int64
	Name     string
	Position string
	GroupID  sql.NullInt64
}

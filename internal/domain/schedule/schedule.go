// internal/domain/schedule/schedule.go
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a day ordinal in the patrol week. Senin (Monday) is 0, Minggu (Sunday) is 6.
type Weekday int

const (
	Senin Weekday = iota
	Selasa
	Rabu
	Kamis
	Jumat
	Sabtu
	Minggu
)

// DaysInWeek is the size of the ordinal ring used for wrap-around ranges.
const DaysInWeek = 7

// RangeSeparator is the persisted separator between the start and end day of a range.
const RangeSeparator = " - "

var weekdayNames = [DaysInWeek]string{"Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu", "Minggu"}

func (d Weekday) String() string {
	if d < 0 || d >= DaysInWeek {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// WeekdayOf returns the patrol-week ordinal of a calendar date.
func WeekdayOf(date time.Time) Weekday {
	// time.Weekday counts from Sunday.
	return Weekday((int(date.Weekday()) + 6) % DaysInWeek)
}

// ParseWeekday maps a canonical day name to its ordinal. Matching ignores case and surrounding space.
func ParseWeekday(name string) (Weekday, bool) {
	name = strings.TrimSpace(name)
	for i, n := range weekdayNames {
		if strings.EqualFold(n, name) {
			return Weekday(i), true
		}
	}
	return 0, false
}

// InconsistentScheduleError reports a schedule spec that cannot be parsed.
// It is never fatal: a group with such a spec is simply never on duty.
type InconsistentScheduleError struct {
	Spec   string
	Reason string
}

func (e *InconsistentScheduleError) Error() string {
	return fmt.Sprintf("inconsistent schedule spec %q: %s", e.Spec, e.Reason)
}

// Spec is a parsed schedule: either a single day (Start == End) or an inclusive,
// possibly wrap-around range.
type Spec struct {
	Start Weekday
	End   Weekday
	Range bool
	empty bool
}

// Parse reads a persisted schedule spec. An empty spec parses into an empty Spec
// that matches no date; it is not an error.
func Parse(raw string) (Spec, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Spec{empty: true}, nil
	}

	if !strings.Contains(raw, RangeSeparator) {
		day, ok := ParseWeekday(trimmed)
		if !ok {
			return Spec{empty: true}, &InconsistentScheduleError{Spec: raw, Reason: "unknown weekday name"}
		}
		return Spec{Start: day, End: day}, nil
	}

	parts := strings.Split(raw, RangeSeparator)
	if len(parts) != 2 {
		return Spec{empty: true}, &InconsistentScheduleError{Spec: raw, Reason: "range must have exactly one separator"}
	}
	start, ok := ParseWeekday(parts[0])
	if !ok {
		return Spec{empty: true}, &InconsistentScheduleError{Spec: raw, Reason: "unknown start weekday"}
	}
	end, ok := ParseWeekday(parts[1])
	if !ok {
		return Spec{empty: true}, &InconsistentScheduleError{Spec: raw, Reason: "unknown end weekday"}
	}
	return Spec{Start: start, End: end, Range: true}, nil
}

// IsEmpty reports whether the spec matches no day at all.
func (s Spec) IsEmpty() bool { return s.empty }

// Wraps reports whether a range crosses the end of the week.
func (s Spec) Wraps() bool { return s.Range && s.Start > s.End }

// Matches reports whether the given ordinal falls inside the spec.
func (s Spec) Matches(day Weekday) bool {
	if s.empty {
		return false
	}
	if s.Start <= s.End {
		return day >= s.Start && day <= s.End
	}
	return day >= s.Start || day <= s.End
}

// MatchesDate reports whether the spec puts a group on duty on the given date.
func (s Spec) MatchesDate(date time.Time) bool {
	return s.Matches(WeekdayOf(date))
}

// Days lists the ordinals covered by the spec in patrol-week order.
func (s Spec) Days() []Weekday {
	days := make([]Weekday, 0, DaysInWeek)
	for d := Senin; d <= Minggu; d++ {
		if s.Matches(d) {
			days = append(days, d)
		}
	}
	return days
}

// String renders the spec in its persisted form.
func (s Spec) String() string {
	switch {
	case s.empty:
		return ""
	case s.Range:
		return s.Start.String() + RangeSeparator + s.End.String()
	default:
		return s.Start.String()
	}
}

// IsScheduled reports whether a raw schedule spec matches the date.
// Empty and unparseable specs never match; callers that need to observe the
// parse failure should call Parse directly.
func IsScheduled(raw string, date time.Time) bool {
	spec, err := Parse(raw)
	if err != nil {
		return false
	}
	return spec.MatchesDate(date)
}

package fund

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidPeriod = errors.New("invalid period")

// Period is an inclusive range of calendar days.
type Period struct {
	Start time.Time
	End   time.Time
}

// MonthPeriod covers every day of the given month.
func MonthPeriod(year int, month time.Month, loc *time.Location) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Period{Start: start, End: start.AddDate(0, 1, -1)}
}

// Contains reports whether t falls on a day inside the period.
func (p Period) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.Start.Location())
	return !day.Before(p.Start) && !day.After(p.End)
}

// EndExclusive is the first instant after the period, for half-open SQL filters.
func (p Period) EndExclusive() time.Time {
	return p.End.AddDate(0, 0, 1)
}

func (p Period) String() string {
	if p.Start.Day() == 1 && p.EndExclusive().Day() == 1 && p.Start.Month() == p.End.Month() && p.Start.Year() == p.End.Year() {
		return p.Start.Format("2006-01")
	}
	return p.Start.Format("2006-01-02") + ".." + p.End.Format("2006-01-02")
}

// ParsePeriod accepts a month ("2026-10") or a day range ("2026-10-01..2026-10-15").
func ParsePeriod(raw string, loc *time.Location) (Period, error) {
	raw = strings.TrimSpace(raw)
	if from, to, ok := strings.Cut(raw, ".."); ok {
		start, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(from), loc)
		if err != nil {
			return Period{}, fmt.Errorf("%w: start %q: %v", ErrInvalidPeriod, from, err)
		}
		end, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(to), loc)
		if err != nil {
			return Period{}, fmt.Errorf("%w: end %q: %v", ErrInvalidPeriod, to, err)
		}
		if end.Before(start) {
			return Period{}, fmt.Errorf("%w: end before start", ErrInvalidPeriod)
		}
		return Period{Start: start, End: end}, nil
	}

	month, err := time.ParseInLocation("2006-01", raw, loc)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q: %v", ErrInvalidPeriod, raw, err)
	}
	return MonthPeriod(month.Year(), month.Month(), loc), nil
}

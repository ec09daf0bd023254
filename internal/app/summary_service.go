package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"jimpitan_ronda/internal/domain/attendance"
	"jimpitan_ronda/internal/domain/patrol"
	"jimpitan_ronda/internal/domain/schedule"

	"github.com/sirupsen/logrus"
)

// GroupCounts tallies resolved statuses inside one duty group.
type GroupCounts struct {
	Present  int
	Excused  int
	Sick     int
	Absent   int
	Unmarked int
}

func (c *GroupCounts) add(s attendance.Status) {
	switch s {
	case attendance.StatusPresent:
		c.Present++
	case attendance.StatusExcused:
		c.Excused++
	case attendance.StatusSick:
		c.Sick++
	case attendance.StatusAbsent:
		c.Absent++
	default:
		c.Unmarked++
	}
}

// GroupSummary is the participation of one scheduled group on a date.
type GroupSummary struct {
	GroupID              int64
	Name                 string
	ScheduleSpec         string
	Counts               GroupCounts
	TotalMembers         int
	ParticipationPercent int
}

// MemberStatus is the resolved attendance of one member of a scheduled group.
type MemberStatus struct {
	MemberID   int64
	MemberName string
	Position   string
	GroupID    int64
	Status     attendance.Status
	CheckIn    sql.NullTime
	CheckOut   sql.NullTime
}

// ScheduleIssue names a group whose schedule spec cannot be parsed.
type ScheduleIssue struct {
	GroupID   int64
	GroupName string
	Err       *schedule.InconsistentScheduleError
}

type SummaryService struct {
	patrolRepo  patrol.Repository
	attendances *AttendanceService
	logger      *logrus.Entry
	observer    Observer
}

func NewSummaryService(pr patrol.Repository, attendances *AttendanceService, observer Observer, logger *logrus.Entry) *SummaryService {
	if observer == nil {
		observer = NopObserver{}
	}
	return &SummaryService{
		patrolRepo:  pr,
		attendances: attendances,
		logger:      logger,
		observer:    observer,
	}
}

type scheduledRoster struct {
	groups  []*patrol.DutyGroup
	members map[int64][]*patrol.Member // by group id
	ids     []int64
}

// roster loads the groups on duty for the date and their members.
// Members with a null or dangling group reference are skipped.
func (s *SummaryService) roster(ctx context.Context, date time.Time) (*scheduledRoster, error) {
	date = s.attendances.dutyDate(date)
	groups, err := s.patrolRepo.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list duty groups: %w", err)
	}

	r := &scheduledRoster{members: make(map[int64][]*patrol.Member)}
	known := make(map[int64]bool, len(groups))
	for _, g := range groups {
		known[g.ID] = true
		spec, err := schedule.Parse(g.ScheduleSpec)
		if err != nil {
			s.observer.ScheduleParseFailed()
			s.logger.WithFields(logrus.Fields{
				"group_id":   g.ID,
				"group_name": g.Name,
			}).WithError(err).Warn("Duty group has an inconsistent schedule, treating as never scheduled")
			continue
		}
		if spec.MatchesDate(date) {
			r.groups = append(r.groups, g)
			r.members[g.ID] = nil
		}
	}
	if len(r.groups) == 0 {
		return r, nil
	}

	members, err := s.patrolRepo.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	for _, m := range members {
		if !m.GroupID.Valid {
			continue
		}
		if _, scheduled := r.members[m.GroupID.Int64]; scheduled {
			r.members[m.GroupID.Int64] = append(r.members[m.GroupID.Int64], m)
			r.ids = append(r.ids, m.ID)
			continue
		}
		if !known[m.GroupID.Int64] {
			s.logger.WithFields(logrus.Fields{
				"member_id": m.ID,
				"group_id":  m.GroupID.Int64,
			}).Debug("Member references a missing duty group, omitted")
		}
	}
	return r, nil
}

// Summarize returns one summary per group on duty at the date, ordered by name.
// An empty result means no group is scheduled that day.
func (s *SummaryService) Summarize(ctx context.Context, date time.Time) ([]GroupSummary, error) {
	start := time.Now()
	defer func() { s.observer.SummaryComputed(time.Since(start)) }()

	r, err := s.roster(ctx, date)
	if err != nil {
		return nil, err
	}
	resolved, err := s.attendances.ResolveStatuses(ctx, r.ids, date)
	if err != nil {
		return nil, err
	}

	summaries := make([]GroupSummary, 0, len(r.groups))
	for _, g := range r.groups {
		sum := GroupSummary{
			GroupID:      g.ID,
			Name:         g.Name,
			ScheduleSpec: g.ScheduleSpec,
			TotalMembers: len(r.members[g.ID]),
		}
		for _, m := range r.members[g.ID] {
			sum.Counts.add(resolved[m.ID].Status)
		}
		sum.ParticipationPercent = roundPercent(sum.Counts.Present, sum.TotalMembers)
		summaries = append(summaries, sum)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Name != summaries[j].Name {
			return summaries[i].Name < summaries[j].Name
		}
		return summaries[i].GroupID < summaries[j].GroupID
	})
	return summaries, nil
}

// MemberStatuses lists the resolved status of every member of a group on duty at
// the date. Members of other groups never appear, whatever rows exist for them.
func (s *SummaryService) MemberStatuses(ctx context.Context, date time.Time) ([]MemberStatus, error) {
	r, err := s.roster(ctx, date)
	if err != nil {
		return nil, err
	}
	resolved, err := s.attendances.ResolveStatuses(ctx, r.ids, date)
	if err != nil {
		return nil, err
	}

	out := make([]MemberStatus, 0, len(r.ids))
	for _, g := range r.groups {
		for _, m := range r.members[g.ID] {
			res := resolved[m.ID]
			out = append(out, MemberStatus{
				MemberID:   m.ID,
				MemberName: m.Name,
				Position:   m.Position,
				GroupID:    g.ID,
				Status:     res.Status,
				CheckIn:    res.CheckIn,
				CheckOut:   res.CheckOut,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].GroupID != out[j].GroupID {
			return out[i].GroupID < out[j].GroupID
		}
		return out[i].MemberName < out[j].MemberName
	})
	return out, nil
}

// AuditSchedules returns every group whose schedule spec cannot be parsed.
func (s *SummaryService) AuditSchedules(ctx context.Context) ([]ScheduleIssue, error) {
	groups, err := s.patrolRepo.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list duty groups: %w", err)
	}
	var issues []ScheduleIssue
	for _, g := range groups {
		if _, err := schedule.Parse(g.ScheduleSpec); err != nil {
			var inconsistent *schedule.InconsistentScheduleError
			if errors.As(err, &inconsistent) {
				issues = append(issues, ScheduleIssue{GroupID: g.ID, GroupName: g.Name, Err: inconsistent})
			}
		}
	}
	return issues, nil
}

// DailyRecap renders the summaries of a date as the plain-text recap posted to admins.
func (s *SummaryService) DailyRecap(ctx context.Context, date time.Time) (string, error) {
	summaries, err := s.Summarize(ctx, date)
	if err != nil {
		return "", err
	}
	return FormatRecap(s.attendances.dutyDate(date), summaries), nil
}

// FormatRecap renders summaries for one date.
func FormatRecap(date time.Time, summaries []GroupSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Rekap ronda %s (%s)\n", date.Format("2006-01-02"), schedule.WeekdayOf(date)))
	if len(summaries) == 0 {
		b.WriteString("Tidak ada jadwal ronda hari ini.")
		return b.String()
	}
	for _, sum := range summaries {
		b.WriteString(fmt.Sprintf("\n%s [%s]\n", sum.Name, sum.ScheduleSpec))
		b.WriteString(fmt.Sprintf("  Hadir: %d, Izin: %d, Sakit: %d, Tidak Hadir: %d, Belum Diabsen: %d\n",
			sum.Counts.Present, sum.Counts.Excused, sum.Counts.Sick, sum.Counts.Absent, sum.Counts.Unmarked))
		b.WriteString(fmt.Sprintf("  Partisipasi: %d%% dari %d anggota\n", sum.ParticipationPercent, sum.TotalMembers))
	}
	return b.String()
}

// roundPercent is part/total*100 rounded half up, or 0 when total is 0.
func roundPercent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (part*100 + total/2) / total
}

package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"jimpitan_ronda/internal/domain/attendance"
	"jimpitan_ronda/internal/domain/patrol"
	idb "jimpitan_ronda/internal/infra/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Mark is a single attendance write request.
type Mark struct {
	MemberID int64
	Date     time.Time
	Status   string // raw status; normalized through attendance.ParseStatus
	CheckIn  *time.Time
	CheckOut *time.Time
}

// MarkOutcome is the per-member result of a batch write.
type MarkOutcome struct {
	MemberID int64
	RecordID uuid.UUID
	Err      error
}

type AttendanceService struct {
	attendanceRepo attendance.Repository
	patrolRepo     patrol.Repository
	logger         *logrus.Entry
	observer       Observer
	location       *time.Location
	now            func() time.Time

	mu        sync.Mutex
	lastStamp time.Time
}

func NewAttendanceService(ar attendance.Repository, pr patrol.Repository, loc *time.Location, observer Observer, logger *logrus.Entry) *AttendanceService {
	if observer == nil {
		observer = NopObserver{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &AttendanceService{
		attendanceRepo: ar,
		patrolRepo:     pr,
		logger:         logger,
		observer:       observer,
		location:       loc,
		now:            time.Now,
	}
}

// Location is the zone every duty date is normalized into.
func (s *AttendanceService) Location() *time.Location { return s.location }

// Today returns the current duty date.
func (s *AttendanceService) Today() time.Time {
	return s.dutyDate(s.now())
}

func (s *AttendanceService) dutyDate(t time.Time) time.Time {
	return attendance.DateOnly(t.In(s.location))
}

// nextStamp returns a strictly increasing last-modified stamp at microsecond
// precision, so two writes to the same pair never share a CreatedAt.
func (s *AttendanceService) nextStamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp := s.now().Truncate(time.Microsecond)
	if !stamp.After(s.lastStamp) {
		stamp = s.lastStamp.Add(time.Microsecond)
	}
	s.lastStamp = stamp
	return stamp
}

func (s *AttendanceService) validate(ctx context.Context, m Mark) (attendance.Status, error) {
	if m.MemberID <= 0 {
		return "", &ValidationError{Field: "member_id", Reason: "is required"}
	}
	if m.Date.IsZero() {
		return "", &ValidationError{Field: "date", Reason: "is required"}
	}
	status, err := attendance.ParseStatus(m.Status)
	if err != nil {
		return "", &ValidationError{Field: "status", Reason: err.Error()}
	}
	if m.CheckIn != nil && m.CheckOut != nil && m.CheckOut.Before(*m.CheckIn) {
		return "", &ValidationError{Field: "check_out", Reason: "is before check_in"}
	}
	if _, err := s.patrolRepo.GetMember(ctx, m.MemberID); err != nil {
		if errors.Is(err, idb.ErrMemberNotFound) {
			return "", &ValidationError{Field: "member_id", Reason: fmt.Sprintf("member %d does not exist", m.MemberID)}
		}
		return "", fmt.Errorf("failed to look up member %d: %w", m.MemberID, err)
	}
	return status, nil
}

// UpsertAttendance writes the status of one member on one date and returns the id
// of the record holding it. Resolving the pair afterwards yields exactly this status.
func (s *AttendanceService) UpsertAttendance(ctx context.Context, m Mark) (uuid.UUID, error) {
	logCtx := s.logger.WithFields(logrus.Fields{
		"member_id":  m.MemberID,
		"raw_status": m.Status,
	})

	status, err := s.validate(ctx, m)
	if err != nil {
		s.observer.AttendanceUpserted(false)
		logCtx.WithError(err).Warn("Attendance write rejected")
		return uuid.Nil, err
	}

	rec := &attendance.Record{
		MemberID:  m.MemberID,
		Date:      s.dutyDate(m.Date),
		RawStatus: string(status),
		CheckIn:   toNullTime(m.CheckIn),
		CheckOut:  toNullTime(m.CheckOut),
		CreatedAt: s.nextStamp(),
	}
	id, err := s.attendanceRepo.Upsert(ctx, rec)
	if err != nil {
		s.observer.AttendanceUpserted(false)
		logCtx.WithError(err).Error("Failed to upsert attendance")
		return uuid.Nil, fmt.Errorf("failed to upsert attendance for member %d: %w", m.MemberID, err)
	}

	s.observer.AttendanceUpserted(true)
	logCtx.WithFields(logrus.Fields{
		"record_id": id,
		"date":      rec.Date.Format("2006-01-02"),
		"status":    status,
	}).Info("Attendance recorded")
	return id, nil
}

// MarkBatch writes each mark independently. A failing mark never prevents or
// rolls back the others; outcomes come back in input order.
func (s *AttendanceService) MarkBatch(ctx context.Context, marks []Mark) []MarkOutcome {
	outcomes := make([]MarkOutcome, 0, len(marks))
	failed := 0
	for _, m := range marks {
		id, err := s.UpsertAttendance(ctx, m)
		if err != nil {
			failed++
		}
		outcomes = append(outcomes, MarkOutcome{MemberID: m.MemberID, RecordID: id, Err: err})
	}
	s.logger.WithFields(logrus.Fields{
		"total":  len(marks),
		"failed": failed,
	}).Info("Batch attendance processed")
	return outcomes
}

// ResolveStatus returns the effective attendance of a member on a date.
func (s *AttendanceService) ResolveStatus(ctx context.Context, memberID int64, date time.Time) (attendance.Resolution, error) {
	day := s.dutyDate(date)
	rows, err := s.attendanceRepo.ListByMemberAndDate(ctx, memberID, day)
	if err != nil {
		return attendance.Resolution{}, fmt.Errorf("failed to list attendance for member %d: %w", memberID, err)
	}
	res := attendance.Resolve(memberID, rows)
	s.reportUnknown(res, day)
	return res, nil
}

// ResolveStatuses resolves a set of members on one date with a single read.
// Every requested member is present in the result; absent rows resolve to Unmarked.
func (s *AttendanceService) ResolveStatuses(ctx context.Context, memberIDs []int64, date time.Time) (map[int64]attendance.Resolution, error) {
	if len(memberIDs) == 0 {
		return map[int64]attendance.Resolution{}, nil
	}
	day := s.dutyDate(date)
	rows, err := s.attendanceRepo.ListByDate(ctx, day, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for %s: %w", day.Format("2006-01-02"), err)
	}
	resolved := attendance.ResolveAll(memberIDs, rows)
	for _, res := range resolved {
		s.reportUnknown(res, day)
	}
	return resolved, nil
}

func (s *AttendanceService) reportUnknown(res attendance.Resolution, day time.Time) {
	if !res.Unknown {
		return
	}
	s.observer.StatusNormalizationFailed()
	s.logger.WithFields(logrus.Fields{
		"member_id":  res.MemberID,
		"record_id":  res.RecordID,
		"date":       day.Format("2006-01-02"),
		"raw_status": res.RawStatus,
	}).Warn("Unknown stored attendance status, reporting member as unmarked")
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

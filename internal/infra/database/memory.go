package database

import (
	"context"
	"sync"
	"time"

	"jimpitan_ronda/internal/domain/attendance"
	"jimpitan_ronda/internal/domain/fund"
	"jimpitan_ronda/internal/domain/patrol"

	"github.com/google/uuid"
)

// MemoryStore implements the patrol, attendance and fund repositories in memory.
// Attendance rows are kept as an append-friendly list, so imported history may hold
// several rows for one (member, date); Upsert always rewrites the latest of them.
type MemoryStore struct {
	mu           sync.RWMutex
	groups       []*patrol.DutyGroup
	members      []*patrol.Member
	households   []*fund.Household
	transactions []*fund.Transaction
	attendance   []*attendance.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// --- Registry seeding ---

func (s *MemoryStore) AddGroup(g patrol.DutyGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, &g)
}

func (s *MemoryStore) AddMember(m patrol.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append(s.members, &m)
}

func (s *MemoryStore) AddHousehold(h fund.Household) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.households = append(s.households, &h)
}

func (s *MemoryStore) AddTransaction(tx fund.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, &tx)
}

// AppendAttendance stores a raw row as-is, without upsert semantics.
// Used to import historical data that may contain several rows per day.
func (s *MemoryStore) AppendAttendance(rec attendance.Record) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	s.attendance = append(s.attendance, &rec)
	return rec.ID
}

// --- patrol.Repository ---

func (s *MemoryStore) ListGroups(_ context.Context) ([]*patrol.DutyGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*patrol.DutyGroup, 0, len(s.groups))
	for _, g := range s.groups {
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) ListMembers(_ context.Context) ([]*patrol.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*patrol.Member, 0, len(s.members))
	for _, m := range s.members {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) GetMember(_ context.Context, id int64) (*patrol.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, ErrMemberNotFound
}

// --- attendance.Repository ---

func (s *MemoryStore) Upsert(_ context.Context, rec *attendance.Record) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current *attendance.Record
	for _, r := range s.attendance {
		if r.MemberID != rec.MemberID || !attendance.SameDay(r.Date, rec.Date) {
			continue
		}
		if current == nil || !r.CreatedAt.Before(current.CreatedAt) {
			current = r
		}
	}

	if current != nil {
		current.RawStatus = rec.RawStatus
		current.CheckIn = rec.CheckIn
		current.CheckOut = rec.CheckOut
		// The rewritten row must stay the latest one for the pair.
		if rec.CreatedAt.After(current.CreatedAt) {
			current.CreatedAt = rec.CreatedAt
		} else {
			current.CreatedAt = current.CreatedAt.Add(time.Microsecond)
		}
		rec.ID = current.ID
		return current.ID, nil
	}

	cp := *rec
	cp.ID = uuid.New()
	s.attendance = append(s.attendance, &cp)
	rec.ID = cp.ID
	return cp.ID, nil
}

func (s *MemoryStore) ListByDate(_ context.Context, date time.Time, memberIDs []int64) ([]*attendance.Record, error) {
	wanted := make(map[int64]bool, len(memberIDs))
	for _, id := range memberIDs {
		wanted[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*attendance.Record, 0)
	for _, r := range s.attendance {
		if wanted[r.MemberID] && attendance.SameDay(r.Date, date) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListByMemberAndDate(ctx context.Context, memberID int64, date time.Time) ([]*attendance.Record, error) {
	return s.ListByDate(ctx, date, []int64{memberID})
}

// --- fund.Repository ---

func (s *MemoryStore) ListHouseholds(_ context.Context) ([]*fund.Household, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*fund.Household, 0, len(s.households))
	for _, h := range s.households {
		cp := *h
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, period fund.Period) ([]*fund.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*fund.Transaction, 0)
	for _, tx := range s.transactions {
		if period.Contains(tx.Date) {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out, nil
}

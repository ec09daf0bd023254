package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"jimpitan_ronda/internal/domain/attendance"
	"jimpitan_ronda/internal/domain/fund"
	"jimpitan_ronda/internal/domain/patrol"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
	day   time.Time
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
	s.day = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s.store.AddMember(patrol.Member{ID: 1, Name: "Budi", GroupID: sql.NullInt64{Int64: 10, Valid: true}})
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) record(status string, at time.Time) *attendance.Record {
	return &attendance.Record{MemberID: 1, Date: s.day, RawStatus: status, CreatedAt: at}
}

func (s *MemoryStoreSuite) TestUpsertInsertsThenUpdatesInPlace() {
	first, err := s.store.Upsert(s.ctx, s.record("PRESENT", s.day.Add(20*time.Hour)))
	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, first)

	second, err := s.store.Upsert(s.ctx, s.record("SICK", s.day.Add(21*time.Hour)))
	s.Require().NoError(err)
	s.Equal(first, second)

	rows, err := s.store.ListByMemberAndDate(s.ctx, 1, s.day)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("SICK", rows[0].RawStatus)
}

func (s *MemoryStoreSuite) TestUpsertRewritesLatestLegacyRow() {
	older := s.store.AppendAttendance(*s.record("PRESENT", s.day.Add(19*time.Hour)))
	newer := s.store.AppendAttendance(*s.record("EXCUSED", s.day.Add(20*time.Hour)))

	id, err := s.store.Upsert(s.ctx, s.record("ABSENT", s.day.Add(22*time.Hour)))
	s.Require().NoError(err)
	s.Equal(newer, id)
	s.NotEqual(older, id)

	rows, err := s.store.ListByMemberAndDate(s.ctx, 1, s.day)
	s.Require().NoError(err)
	s.Len(rows, 2)
	s.Equal(attendance.StatusAbsent, attendance.Resolve(1, rows).Status)
}

func (s *MemoryStoreSuite) TestListByDateFiltersMembersAndDay() {
	s.store.AppendAttendance(*s.record("PRESENT", s.day))
	s.store.AppendAttendance(attendance.Record{MemberID: 2, Date: s.day, RawStatus: "PRESENT", CreatedAt: s.day})
	s.store.AppendAttendance(attendance.Record{MemberID: 1, Date: s.day.AddDate(0, 0, 1), RawStatus: "SICK", CreatedAt: s.day})

	rows, err := s.store.ListByDate(s.ctx, s.day, []int64{1})
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(int64(1), rows[0].MemberID)

	rows, err = s.store.ListByDate(s.ctx, s.day, nil)
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *MemoryStoreSuite) TestGetMember() {
	m, err := s.store.GetMember(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("Budi", m.Name)

	_, err = s.store.GetMember(s.ctx, 42)
	s.ErrorIs(err, ErrMemberNotFound)
}

func (s *MemoryStoreSuite) TestListTransactionsByPeriod() {
	s.store.AddTransaction(fund.Transaction{ID: 1, MemberID: 1, Amount: decimal.NewFromInt(500), Date: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)})
	s.store.AddTransaction(fund.Transaction{ID: 2, MemberID: 1, Amount: decimal.NewFromInt(500), Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)})

	txs, err := s.store.ListTransactions(s.ctx, fund.MonthPeriod(2024, time.January, time.UTC))
	s.Require().NoError(err)
	s.Require().Len(txs, 1)
	s.Equal(int64(1), txs[0].ID)
}

func (s *MemoryStoreSuite) TestLoadSeedFile() {
	path := filepath.Join(s.T().TempDir(), "seed.json")
	content := `{
  "groups": [{"id": 1, "name": "Regu A", "schedule": "Senin - Rabu"}],
  "members": [{"id": 5, "name": "Sari", "position": "Anggota", "group_id": 1}, {"id": 6, "name": "Joko"}],
  "households": [{"id": 9, "address": "Blok C1", "head_member_id": 5}],
  "transactions": [{"id": 3, "member_id": 5, "amount": "1500.50", "date": "2024-01-05"}],
  "attendance": [
    {"member_id": 5, "date": "2024-01-02", "status": "Hadir", "created_at": "2024-01-02T20:00:00Z"},
    {"member_id": 5, "date": "2024-01-02", "status": "Izin", "created_at": "2024-01-02T21:00:00Z"}
  ]
}`
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	store := NewMemoryStore()
	s.Require().NoError(store.LoadSeedFile(path, time.UTC))

	groups, _ := store.ListGroups(s.ctx)
	s.Require().Len(groups, 1)
	s.Equal("Senin - Rabu", groups[0].ScheduleSpec)

	joko, err := store.GetMember(s.ctx, 6)
	s.Require().NoError(err)
	s.False(joko.GroupID.Valid)

	txs, _ := store.ListTransactions(s.ctx, fund.MonthPeriod(2024, time.January, time.UTC))
	s.Require().Len(txs, 1)
	s.True(decimal.RequireFromString("1500.50").Equal(txs[0].Amount))

	rows, err := store.ListByMemberAndDate(s.ctx, 5, s.day)
	s.Require().NoError(err)
	s.Len(rows, 2)
	s.Equal(attendance.StatusExcused, attendance.Resolve(5, rows).Status)
}

func (s *MemoryStoreSuite) TestUpsertStaysLatestAgainstFutureStampedRows() {
	s.store.AppendAttendance(*s.record("PRESENT", s.day.Add(23*time.Hour)))
	s.store.AppendAttendance(*s.record("EXCUSED", s.day.Add(22*time.Hour)))

	_, err := s.store.Upsert(s.ctx, s.record("SICK", s.day.Add(20*time.Hour)))
	s.Require().NoError(err)

	rows, err := s.store.ListByMemberAndDate(s.ctx, 1, s.day)
	s.Require().NoError(err)
	s.Equal(attendance.StatusSick, attendance.Resolve(1, rows).Status)
}

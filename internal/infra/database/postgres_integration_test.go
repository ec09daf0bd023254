//go:build integration

package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"jimpitan_ronda/internal/domain/attendance"
	"jimpitan_ronda/internal/domain/fund"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type PostgresStoreSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgrescontainer.PostgresContainer
	db        *sql.DB
	loc       *time.Location
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	loc, err := time.LoadLocation("Asia/Jakarta")
	s.Require().NoError(err)
	s.loc = loc

	s.container, err = postgrescontainer.Run(s.ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("jimpitan"),
		postgrescontainer.WithUsername("ronda"),
		postgrescontainer.WithPassword("ronda"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)

	connStr, err := s.container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = NewPostgresConnection(connStr)
	s.Require().NoError(err)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	s.Require().NoError(RunMigrations(s.db, logrus.NewEntry(logger)))
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx, `TRUNCATE attendance_records, fund_transactions, households, members, duty_groups RESTART IDENTITY`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestAttendanceUpsertKeepsOneRowPerDay() {
	repo := NewPostgresAttendanceRepository(s.db, s.loc)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, s.loc)
	stamp := time.Date(2024, 1, 2, 21, 0, 0, 0, s.loc)

	first, err := repo.Upsert(s.ctx, &attendance.Record{MemberID: 1, Date: day, RawStatus: "PRESENT", CreatedAt: stamp})
	s.Require().NoError(err)

	second, err := repo.Upsert(s.ctx, &attendance.Record{MemberID: 1, Date: day, RawStatus: "SICK", CreatedAt: stamp.Add(time.Minute)})
	s.Require().NoError(err)
	s.Equal(first, second)

	rows, err := repo.ListByMemberAndDate(s.ctx, 1, day)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("SICK", rows[0].RawStatus)
	s.True(attendance.SameDay(day, rows[0].Date))

	rows, err = repo.ListByDate(s.ctx, day, []int64{1, 2})
	s.Require().NoError(err)
	s.Len(rows, 1)

	rows, err = repo.ListByDate(s.ctx, day.AddDate(0, 0, 1), []int64{1})
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *PostgresStoreSuite) TestRegistriesAndLedger() {
	_, err := s.db.ExecContext(s.ctx, `INSERT INTO duty_groups (name, schedule_spec) VALUES ('Regu A', 'Sabtu - Senin')`)
	s.Require().NoError(err)
	_, err = s.db.ExecContext(s.ctx, `INSERT INTO members (name, position, group_id) VALUES ('Budi', 'Ketua', 1), ('Sari', 'Anggota', NULL)`)
	s.Require().NoError(err)
	_, err = s.db.ExecContext(s.ctx, `INSERT INTO households (address, head_member_id) VALUES ('Blok A1', 1), ('Blok A2', NULL)`)
	s.Require().NoError(err)
	_, err = s.db.ExecContext(s.ctx, `INSERT INTO fund_transactions (member_id, amount, tx_date) VALUES (1, 500, '2024-01-31'), (1, 1000, '2024-02-01')`)
	s.Require().NoError(err)

	patrolRepo := NewPostgresPatrolRepository(s.db)
	groups, err := patrolRepo.ListGroups(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(groups, 1)
	s.Equal("Sabtu - Senin", groups[0].ScheduleSpec)

	sari, err := patrolRepo.GetMember(s.ctx, 2)
	s.Require().NoError(err)
	s.False(sari.GroupID.Valid)

	_, err = patrolRepo.GetMember(s.ctx, 99)
	s.ErrorIs(err, ErrMemberNotFound)

	fundRepo := NewPostgresFundRepository(s.db, s.loc)
	households, err := fundRepo.ListHouseholds(s.ctx)
	s.Require().NoError(err)
	s.Len(households, 2)

	txs, err := fundRepo.ListTransactions(s.ctx, fund.MonthPeriod(2024, time.January, s.loc))
	s.Require().NoError(err)
	s.Require().Len(txs, 1)
	s.Equal("500", txs[0].Amount.String())
	s.Equal(31, txs[0].Date.Day())
}
